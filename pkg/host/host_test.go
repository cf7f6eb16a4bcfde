package host

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/telemetry/logging"
)

const rulesJSON = `{
  "version": "1",
  "rules": [
    {
      "id": "high-total",
      "name": "High total",
      "error_message": "Order total exceeds 100",
      "conditions": {"operator": "AND", "criteria": [
        {"field": "cart.total", "operator": "GREATER_THAN", "value": 100}
      ]}
    },
    {
      "id": "po-box",
      "name": "PO box",
      "error_message": "We cannot ship to PO boxes",
      "conditions": {"operator": "OR", "criteria": [
        {"field": "shipping_address.address1", "operator": "REGEX_MATCH", "value": "po_box", "is_preset": true}
      ]}
    }
  ]
}`

func newTestProcessor(t *testing.T) (*Processor, *bytes.Buffer) {
	t.Helper()
	ev, err := engine.NewEvaluator(patterns.MustNew(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "debug", Format: "json", Writer: &logs})
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewProcessor(ev, logger)
	if err != nil {
		t.Fatal(err)
	}
	return p, &logs
}

func strPtr(s string) *string { return &s }

func testInput(total, address1, metafield string) *Input {
	in := &Input{
		Cart: Cart{
			Cost: CartCost{
				TotalAmount:    Money{Amount: total},
				SubtotalAmount: Money{Amount: total},
			},
			Lines: []CartLine{{Quantity: 1}},
			DeliveryGroups: []DeliveryGroup{{DeliveryAddress: &DeliveryAddress{
				Address1:    strPtr(address1),
				CountryCode: strPtr("US"),
			}}},
		},
	}
	if metafield != "" {
		in.Shop.Metafield = &Metafield{Value: metafield}
	}
	return in
}

// TestBuildRecord tests the cart to record mapping.
func TestBuildRecord(t *testing.T) {
	weight := 2.5
	in := &Input{Cart: Cart{
		Cost: CartCost{
			TotalAmount:    Money{Amount: "150.50"},
			SubtotalAmount: Money{Amount: "not-a-number"},
		},
		Lines:         []CartLine{{Quantity: 2}, {Quantity: -4}, {Quantity: 3}},
		BuyerIdentity: &BuyerIdentity{Customer: &Customer{ID: "gid://1", Tags: []string{"VIP"}}},
		DeliveryGroups: []DeliveryGroup{
			{DeliveryAddress: &DeliveryAddress{Address1: strPtr("PO Box 1"), Zip: strPtr("78701")}},
			{DeliveryAddress: &DeliveryAddress{Address1: strPtr("ignored")}},
		},
		TotalWeight: &weight,
	}}

	rec := BuildRecord(in)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"total", rec.Total, 150.5},
		{"unparsable subtotal", rec.Subtotal, 0.0},
		{"quantity skips negatives", rec.Quantity, uint32(5)},
		{"weight", rec.TotalWeight, 2.5},
		{"address from first group", rec.ShippingAddress.Address1, "PO Box 1"},
		{"zip", rec.ShippingAddress.Zip, "78701"},
		{"missing city", rec.ShippingAddress.City, ""},
		{"tags", len(rec.CustomerTags), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// TestBuildRecord_Empty tests a cart with no groups, lines or buyer.
func TestBuildRecord_Empty(t *testing.T) {
	rec := BuildRecord(&Input{})
	if rec.Total != 0 || rec.Quantity != 0 || rec.ShippingAddress.Address1 != "" || rec.CustomerTags != nil {
		t.Errorf("BuildRecord(empty) = %+v", rec)
	}
}

// TestProcess tests metafield handling and error mapping.
func TestProcess(t *testing.T) {
	tests := []struct {
		name       string
		input      *Input
		wantErrors []string
		wantLog    string
	}{
		{
			name:    "no metafield",
			input:   testInput("150", "1 Main St", ""),
			wantLog: "no rules config found",
		},
		{
			name:    "unparsable metafield",
			input:   testInput("150", "1 Main St", "{not json"),
			wantLog: "failed to parse rules config",
		},
		{
			name:    "zero rules",
			input:   testInput("150", "1 Main St", `{"version":"1","rules":[]}`),
			wantLog: "no rules configured",
		},
		{
			name:       "one rule fires",
			input:      testInput("150", "1 Main St", rulesJSON),
			wantErrors: []string{"Order total exceeds 100"},
			wantLog:    "rules evaluated",
		},
		{
			name:       "both rules fire in order",
			input:      testInput("150", "P.O. Box 9", rulesJSON),
			wantErrors: []string{"Order total exceeds 100", "We cannot ship to PO boxes"},
		},
		{
			name:    "nothing fires",
			input:   testInput("50", "1 Main St", rulesJSON),
			wantLog: `"errors":0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, logs := newTestProcessor(t)
			out := p.Process(context.Background(), tt.input)

			if out.Errors == nil {
				t.Fatal("Errors must be an empty slice, not nil")
			}
			if len(out.Errors) != len(tt.wantErrors) {
				t.Fatalf("errors = %+v, want %v", out.Errors, tt.wantErrors)
			}
			for i, e := range out.Errors {
				if e.LocalizedMessage != tt.wantErrors[i] || e.Target != TargetCart {
					t.Errorf("errors[%d] = %+v", i, e)
				}
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("log %q missing from %s", tt.wantLog, logs.String())
			}
		})
	}
}

// TestRun tests the stdin/stdout protocol.
func TestRun(t *testing.T) {
	p, logs := newTestProcessor(t)

	metafield, _ := json.Marshal(rulesJSON)
	input := `{
	  "cart": {
	    "cost": {"totalAmount": {"amount": "250.00"}, "subtotalAmount": {"amount": "240.00"}},
	    "lines": [{"quantity": 2}],
	    "buyerIdentity": {"customer": {"id": "gid://shopify/Customer/1"}},
	    "deliveryGroups": [{"deliveryAddress": {"address1": "10 Elm St", "countryCode": "US"}}]
	  },
	  "shop": {"metafield": {"value": ` + string(metafield) + `}}
	}`

	var stdout bytes.Buffer
	if err := p.Run(context.Background(), strings.NewReader(input), &stdout); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var out struct {
		Errors []map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, stdout.String())
	}
	if len(out.Errors) != 1 {
		t.Fatalf("errors = %v", out.Errors)
	}
	if out.Errors[0]["localizedMessage"] != "Order total exceeds 100" || out.Errors[0]["target"] != "cart" {
		t.Errorf("error = %v", out.Errors[0])
	}
	if !strings.Contains(logs.String(), "invocation_id") || !strings.Contains(logs.String(), `"rules_version":"1"`) {
		t.Errorf("logs lack context fields: %s", logs.String())
	}
}

// TestRun_EmptyOutput tests that no errors encode as an empty array.
func TestRun_EmptyOutput(t *testing.T) {
	p, _ := newTestProcessor(t)

	var stdout bytes.Buffer
	if err := p.Run(context.Background(), strings.NewReader(`{"cart":{"cost":{"totalAmount":{"amount":"1"},"subtotalAmount":{"amount":"1"}},"lines":[],"deliveryGroups":[]},"shop":{}}`), &stdout); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(stdout.String()); got != `{"errors":[]}` {
		t.Errorf("output = %s", got)
	}
}

// TestRun_MalformedInput tests that undecodable input fails.
func TestRun_MalformedInput(t *testing.T) {
	p, _ := newTestProcessor(t)
	var stdout bytes.Buffer
	if err := p.Run(context.Background(), strings.NewReader(`{"cart":`), &stdout); err == nil {
		t.Error("expected error for malformed input")
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be written on failure, got %q", stdout.String())
	}
}

// TestNewProcessor tests constructor validation.
func TestNewProcessor(t *testing.T) {
	if _, err := NewProcessor(nil, nil); err == nil {
		t.Error("expected error for nil evaluator")
	}
	ev, _ := engine.NewEvaluator(patterns.MustNew(), nil)
	if p, err := NewProcessor(ev, nil); err != nil || p.logger == nil {
		t.Errorf("NewProcessor() = %v, %v", p, err)
	}
}
