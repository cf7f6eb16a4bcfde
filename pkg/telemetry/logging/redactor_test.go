package logging

import (
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/gatekeep/pkg/config"
)

func TestNewRedactor(t *testing.T) {
	defaults := len(defaultPatterns)

	tests := []struct {
		name   string
		custom []config.RedactPattern
		want   int
	}{
		{"defaults only", nil, defaults},
		{"with custom", []config.RedactPattern{{Name: "sku", Pattern: `SKU-\d+`, Replacement: "SKU-*"}}, defaults + 1},
		{"invalid custom skipped", []config.RedactPattern{{Name: "bad", Pattern: "[unclosed"}}, defaults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRedactor(tt.custom).Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor([]config.RedactPattern{{Name: "sku", Pattern: `SKU-\d+`, Replacement: "SKU-*"}})

	tests := []struct {
		name   string
		input  string
		leaked string
		keeps  string
	}{
		{"email", "buyer jane@example.com", "jane@example.com", "buyer"},
		{"phone", "phone (512) 555-0100 on file", "555-0100", "on file"},
		{"card", "card 4111 1111 1111 1111", "4111 1111 1111 1111", "card"},
		{"bearer", "Authorization: Bearer abc.def.ghi", "abc.def.ghi", "Bearer ***"},
		{"git token", "token ghp_1234abcd", "ghp_1234abcd", "token"},
		{"password", "password=hunter2", "hunter2", "password=***"},
		{"custom", "item SKU-123", "SKU-123", "SKU-*"},
		{"plain text untouched", "cart total 150.00", "", "cart total 150.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RedactString(tt.input)
			if tt.leaked != "" && strings.Contains(got, tt.leaked) {
				t.Errorf("RedactString(%q) = %q leaks %q", tt.input, got, tt.leaked)
			}
			if !strings.Contains(got, tt.keeps) {
				t.Errorf("RedactString(%q) = %q, want to contain %q", tt.input, got, tt.keeps)
			}
		})
	}
}

func TestRedactor_RedactAttr(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"sensitive key short", slog.String("token", "abc"), "***"},
		{"sensitive key long", slog.String("ssh_key_passphrase", "correct horse"), "co***"},
		{"address key", slog.String("address1", "1 Main St"), "1 ***"},
		{"plain key", slog.String("country_code", "US"), "US"},
		{"sensitive any", slog.Any("authorization", struct{}{}), "***"},
		{"number untouched", slog.Int("rules", 3), "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RedactAttr(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("RedactAttr() = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}

	group := r.RedactAttr(slog.Group("buyer", slog.String("email", "a@b.co")))
	if strings.Contains(group.Value.String(), "a@b.co") {
		t.Errorf("group leaked email: %v", group.Value)
	}
}

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jane@example.com", "j***@example.com"},
		{"@example.com", "***@example.com"},
		{"not-an-email", "not-an-email"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
