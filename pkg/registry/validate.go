package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog is wrapped by every ValidationError.
var ErrInvalidCatalog = errors.New("invalid catalog")

// IssueCode classifies a validation finding.
type IssueCode string

const (
	IssueDanglingExtends       IssueCode = "dangling-extends"
	IssueUnknownRule           IssueCode = "unknown-rule"
	IssueDuplicateRule         IssueCode = "duplicate-rule"
	IssueDuplicateType         IssueCode = "duplicate-type"
	IssueNameCollision         IssueCode = "name-collision"
	IssueExtendsCycle          IssueCode = "extends-cycle"
	IssueInvalidSeverity       IssueCode = "invalid-severity"
	IssueEmptyName             IssueCode = "empty-name"
	// IssueMissingConstraintRule flags a catalog that lacks a rule injected
	// by key or nullability constraints.
	IssueMissingConstraintRule IssueCode = "missing-constraint-rule"
)

// constraintRules are injected by field constraints rather than by types, so
// every catalog must define them.
var constraintRules = []string{RuleMissingRequired, RuleDuplicatePrimaryKey}

// Issue is a single consistency problem found in a catalog.
type Issue struct {
	Code    IssueCode `json:"code"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// ValidationError carries every issue found by Validate.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	noun := "issues"
	if len(e.Issues) == 1 {
		noun = "issue"
	}
	return fmt.Sprintf("%s: %d %s: %s", ErrInvalidCatalog, len(e.Issues), noun, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// Validate checks referential integrity: every alias extends a known type,
// every referenced rule exists, the constraint rules are defined, names are
// unique, and no extends chain loops.
// It returns a *ValidationError listing all issues, or nil.
func (r *Registry) Validate() error {
	var issues []Issue
	add := func(code IssueCode, subject, format string, args ...any) {
		issues = append(issues, Issue{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	seenRules := make(map[string]bool, len(r.rules))
	for i, rule := range r.rules {
		if strings.TrimSpace(rule.ID) == "" {
			add(IssueEmptyName, "", "rule at index %d has no id", i)
			continue
		}
		if seenRules[rule.ID] {
			add(IssueDuplicateRule, rule.ID, "rule %q is defined more than once", rule.ID)
		}
		seenRules[rule.ID] = true
		if !rule.Severity.Valid() {
			add(IssueInvalidSeverity, rule.ID, "rule %q has invalid severity %q", rule.ID, rule.Severity)
		}
	}
	for _, id := range constraintRules {
		if !r.HasRule(id) {
			add(IssueMissingConstraintRule, id, "constraint rule %q is not defined", id)
		}
	}

	seenTypes := make(map[string]bool, len(r.cores)+len(r.aliases))
	for i, ct := range r.cores {
		if strings.TrimSpace(ct.Name) == "" {
			add(IssueEmptyName, "", "core type at index %d has no name", i)
			continue
		}
		if seenTypes[ct.Name] {
			add(IssueDuplicateType, ct.Name, "core type %q is defined more than once", ct.Name)
		}
		seenTypes[ct.Name] = true
		for _, id := range ct.Rules {
			if !r.HasRule(id) {
				add(IssueUnknownRule, ct.Name, "core type %q references unknown rule %q", ct.Name, id)
			}
		}
	}

	for i, ta := range r.aliases {
		if strings.TrimSpace(ta.Name) == "" {
			add(IssueEmptyName, "", "alias at index %d has no name", i)
			continue
		}
		if _, isCore := r.coreIdx[ta.Name]; isCore {
			add(IssueNameCollision, ta.Name, "alias %q collides with a core type of the same name", ta.Name)
		} else if seenTypes[ta.Name] {
			add(IssueDuplicateType, ta.Name, "alias %q is defined more than once", ta.Name)
		}
		seenTypes[ta.Name] = true

		if r.Kind(ta.Extends) == KindUnknown {
			add(IssueDanglingExtends, ta.Name, "alias %q extends unknown type %q", ta.Name, ta.Extends)
		}
		for _, id := range ta.Rules {
			if !r.HasRule(id) {
				add(IssueUnknownRule, ta.Name, "alias %q references unknown rule %q", ta.Name, id)
			}
		}
		if path, ok := r.cycleFrom(ta.Name); ok {
			add(IssueExtendsCycle, ta.Name, "alias %q is part of an extends cycle: %s", ta.Name, strings.Join(path, " -> "))
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// cycleFrom follows extends links from start and reports the loop when the
// walk comes back to start. Aliases that merely lead into a loop are not
// reported; the loop members are.
func (r *Registry) cycleFrom(start string) ([]string, bool) {
	visited := map[string]bool{}
	path := []string{start}
	cur := start
	for {
		visited[cur] = true
		i, ok := r.aliasIdx[cur]
		if !ok || r.Kind(cur) == KindCore {
			return nil, false
		}
		next := r.aliases[i].Extends
		if next == start {
			return append(path, next), true
		}
		if visited[next] {
			return nil, false
		}
		path = append(path, next)
		cur = next
	}
}
