package validator

import (
	"fmt"
	"strings"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"   // Rule cannot behave as written
	SeverityWarning Severity = "warning" // Rule runs but probably not as intended
)

// Issue is one finding against a rules configuration.
type Issue struct {
	Severity   Severity `json:"severity"`
	RuleID     string   `json:"rule_id,omitempty"`
	Path       string   `json:"path"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// String renders the issue on one line.
func (i Issue) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s", i.Severity, i.Path, i.Message)
	if i.RuleID != "" {
		fmt.Fprintf(&sb, " (rule %q)", i.RuleID)
	}
	if i.Suggestion != "" {
		fmt.Fprintf(&sb, " - %s", i.Suggestion)
	}
	return sb.String()
}

// Report collects the issues of one validation run in discovery order.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, ruleID, path, format string, args ...any) *Issue {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		RuleID:   ruleID,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
	return &r.Issues[len(r.Issues)-1]
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Error implements the error interface.
func (r *Report) Error() string {
	errs := r.Errors()
	if len(errs) == 0 {
		return "no validation errors"
	}
	if len(errs) == 1 {
		return errs[0].String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d validation errors:\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, e.String())
	}
	return sb.String()
}

// ToError returns the report as an error if it holds error-severity issues,
// nil otherwise. With strict set, warnings count as errors.
func (r *Report) ToError(strict bool) error {
	if r.HasErrors() || (strict && len(r.Issues) > 0) {
		return r
	}
	return nil
}
