package manager

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/validator"
)

func rulesYAML(version string, threshold int) string {
	return fmt.Sprintf(`version: %q
rules:
  - id: high-total
    name: High total
    error_message: Order total exceeds limit
    conditions:
      operator: AND
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: %d
  - id: po-box
    name: PO box
    error_message: We cannot ship to PO boxes
    conditions:
      operator: OR
      criteria:
        - field: shipping_address.address1
          operator: REGEX_MATCH
          value: po_box
          is_preset: true
`, version, threshold)
}

// invalidYAML references a field the record does not have.
const invalidYAML = `version: "broken"
rules:
  - id: bad
    error_message: nope
    conditions:
      operator: AND
      criteria:
        - field: cart.bogus
          operator: EQUALS
          value: 1
`

// warningYAML lints with a single warning: the rule has no error message.
const warningYAML = `version: "warn"
rules:
  - id: quiet
    conditions:
      operator: AND
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: 1
`

func newTestValidator() *validator.Validator {
	return validator.New(patterns.MustNew(), nil)
}

func newMemorySource(t *testing.T, body string) *source.MemorySource {
	t.Helper()
	src, err := source.NewMemorySource([]byte(body), source.FormatYAML)
	if err != nil {
		t.Fatalf("NewMemorySource() error = %v", err)
	}
	return src
}

// refreshingSource is a memory source that reports a change once per Set.
type refreshingSource struct {
	*source.MemorySource
	pending   atomic.Bool
	refreshes atomic.Int64
}

func (s *refreshingSource) Refresh(ctx context.Context) (bool, error) {
	s.refreshes.Add(1)
	return s.pending.Swap(false), nil
}

func (s *refreshingSource) Kind() string { return source.KindGit }

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
