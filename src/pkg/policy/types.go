package policy

// Input is the document handed to every push policy as `input`
type Input struct {
	Body        string         `json:"body"`
	FrontMatter map[string]any `json:"frontmatter"`
	Version     string         `json:"version"`
	Conflicts   ConflictCounts `json:"conflicts"`
}

// ConflictCounts summarizes the conflict scan of the document body
type ConflictCounts struct {
	Count     int `json:"count"`
	Malformed int `json:"malformed"`
}

// Policy is one loaded rego module
type Policy struct {
	ID     string // file name, "conflicts.rego" for the built-in policy
	Source string
	Module string
}

// PolicyResult represents the outcome of one policy
type PolicyResult struct {
	PolicyID   string
	Status     string
	Violations []string
	Error      string
}

// EvaluationResult represents the outcome of all policies
type EvaluationResult struct {
	TotalPolicies   int
	PassedPolicies  int
	FailedPolicies  int
	ErroredPolicies int
	PolicyResults   []PolicyResult
}

// EnforcementResult tells the caller whether the push must be refused
type EnforcementResult struct {
	ShouldBlock bool
	Summary     string
}

// ReportData is the flattened view of an evaluation used in summaries
type ReportData struct {
	TotalPolicies   int
	PassedPolicies  int
	FailedPolicies  int
	ErroredPolicies int
	Messages        []string
}
