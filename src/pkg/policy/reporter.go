package policy

import "fmt"

// Reporter generates policy evaluation reports
type Reporter struct{}

// NewReporter creates a new policy reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// GenerateReport flattens an evaluation into counts and one message per
// violation or error, prefixed with the policy id
func (r *Reporter) GenerateReport(result *EvaluationResult) *ReportData {
	report := &ReportData{
		TotalPolicies:   result.TotalPolicies,
		PassedPolicies:  result.PassedPolicies,
		FailedPolicies:  result.FailedPolicies,
		ErroredPolicies: result.ErroredPolicies,
		Messages:        []string{},
	}

	for _, pr := range result.PolicyResults {
		switch pr.Status {
		case POLICY_STATUS_FAIL:
			for _, v := range pr.Violations {
				report.Messages = append(report.Messages, fmt.Sprintf("%s: %s", pr.PolicyID, v))
			}
		case POLICY_STATUS_ERROR:
			report.Messages = append(report.Messages, fmt.Sprintf("%s: %s", pr.PolicyID, pr.Error))
		}
	}

	return report
}
