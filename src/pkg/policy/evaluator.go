package policy

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/rego"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "policy")

const (
	POLICY_STATUS_PASS  = "PASS"
	POLICY_STATUS_FAIL  = "FAIL"
	POLICY_STATUS_ERROR = "ERROR"
)

// Query evaluated against every policy module
const Query = "data.notesync.deny"

const builtinSource = "builtin"

//go:embed policies/*.rego
var builtinPolicies embed.FS

// PolicyEvaluator defines the interface for push policy evaluation
type PolicyEvaluator interface {
	// LoadPolicies returns the built-in policies followed by the user policies
	LoadPolicies() ([]Policy, error)
	// Evaluate evaluates all policies against the input document
	Evaluate(ctx context.Context, input Input) (*EvaluationResult, error)
	// Enforce determines if the evaluation result should block the push
	Enforce(result *EvaluationResult) *EnforcementResult
}

// Evaluator handles policy evaluation
type Evaluator struct {
	policiesPath string
}

// Ensure Evaluator implements PolicyEvaluator
var _ PolicyEvaluator = (*Evaluator)(nil)

// NewEvaluator creates a new policy evaluator. policiesPath may be empty.
func NewEvaluator(policiesPath string) *Evaluator {
	return &Evaluator{policiesPath: policiesPath}
}

// LoadPolicies loads the embedded policies and every .rego file of the
// policies directory, skipping _test.rego files.
func (e *Evaluator) LoadPolicies() ([]Policy, error) {
	var policies []Policy

	err := fs.WalkDir(builtinPolicies, "policies", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtinPolicies.ReadFile(path)
		if err != nil {
			return err
		}
		policies = append(policies, Policy{ID: d.Name(), Source: builtinSource, Module: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in policies: %w", err)
	}

	if e.policiesPath == "" {
		return policies, nil
	}

	entries, err := os.ReadDir(e.policiesPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("policies directory not found: %s", e.policiesPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read policies directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".rego") || strings.HasSuffix(name, "_test.rego") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(e.policiesPath, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy %s: %w", path, err)
		}
		policies = append(policies, Policy{ID: name, Source: path, Module: string(data)})
	}

	logger.WithField("count", len(policies)).Debug("Loaded policies")
	return policies, nil
}

// Evaluate evaluates all policies against the input document
func (e *Evaluator) Evaluate(ctx context.Context, input Input) (*EvaluationResult, error) {
	policies, err := e.LoadPolicies()
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		TotalPolicies: len(policies),
		PolicyResults: make([]PolicyResult, 0, len(policies)),
	}

	for _, p := range policies {
		policyResult := e.evaluatePolicy(ctx, p, input)
		result.PolicyResults = append(result.PolicyResults, policyResult)

		switch policyResult.Status {
		case POLICY_STATUS_PASS:
			result.PassedPolicies++
		case POLICY_STATUS_FAIL:
			result.FailedPolicies++
		case POLICY_STATUS_ERROR:
			result.ErroredPolicies++
		}
	}

	logger.WithField("passed", result.PassedPolicies).
		WithField("failed", result.FailedPolicies).
		WithField("errored", result.ErroredPolicies).
		Info("Evaluated push policies")
	return result, nil
}

// evaluatePolicy evaluates a single policy module
func (e *Evaluator) evaluatePolicy(ctx context.Context, p Policy, input Input) PolicyResult {
	result := PolicyResult{
		PolicyID:   p.ID,
		Status:     POLICY_STATUS_PASS,
		Violations: []string{},
	}

	violations, err := evaluateWithOPA(ctx, p, input)
	if err != nil {
		result.Status = POLICY_STATUS_ERROR
		result.Error = fmt.Sprintf("Policy evaluation failed: %v", err)
		return result
	}

	if len(violations) > 0 {
		result.Status = POLICY_STATUS_FAIL
		result.Violations = violations
	}
	return result
}

// evaluateWithOPA runs the deny query of one module
func evaluateWithOPA(ctx context.Context, p Policy, input Input) ([]string, error) {
	query, err := rego.New(
		rego.Query(Query),
		rego.Module(p.ID, p.Module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare OPA query: %w", err)
	}

	results, err := query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	var violations []string
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if denySet, ok := results[0].Expressions[0].Value.([]interface{}); ok {
			for _, v := range denySet {
				if msg, ok := v.(string); ok {
					violations = append(violations, msg)
				}
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

// Enforce blocks the push when any policy failed or could not be evaluated
func (e *Evaluator) Enforce(result *EvaluationResult) *EnforcementResult {
	enforcement := &EnforcementResult{}

	switch {
	case result.FailedPolicies > 0:
		enforcement.ShouldBlock = true
		enforcement.Summary = fmt.Sprintf("%d push policy failure(s)", result.FailedPolicies)
	case result.ErroredPolicies > 0:
		enforcement.ShouldBlock = true
		enforcement.Summary = fmt.Sprintf("%d push policy error(s)", result.ErroredPolicies)
	default:
		enforcement.Summary = "All checks passed"
	}

	return enforcement
}
