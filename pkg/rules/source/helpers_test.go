package source

import (
	"os"
	"path/filepath"
	"testing"
)

const testRulesYAML = `version: "2024-06-01"
rules:
  - id: high-total
    name: High total
    error_message: Order total exceeds limit
    conditions:
      operator: AND
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: 100
`

const testRulesJSON = `{
  "version": "2024-06-01",
  "rules": [
    {
      "id": "po-box",
      "name": "PO box",
      "error_message": "We cannot ship to PO boxes",
      "conditions": {
        "operator": "OR",
        "criteria": [
          {"field": "shipping_address.address1", "operator": "REGEX_MATCH", "value": "po_box", "is_preset": true}
        ]
      }
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
