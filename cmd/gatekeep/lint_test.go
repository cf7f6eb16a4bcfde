package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/gatekeep/pkg/cli"
)

func setLintFlags(file, dir string, strict bool, format string) {
	lintFlags.file = file
	lintFlags.dir = dir
	lintFlags.strict = strict
	lintFlags.format = format
}

func TestLintRules(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		dir        string
		strict     bool
		wantErr    bool
		wantOutput string
	}{
		{"valid file", "testdata/rules/valid-rules.yaml", "", false, false, "✓ 3 rule(s) valid"},
		{"invalid file", "testdata/rules/invalid-rules.yaml", "", false, true, "✗ Error:"},
		{"warnings pass", "testdata/rules/warning-rules.yaml", "", false, false, "⚠  Warning:"},
		{"warnings fail in strict mode", "testdata/rules/warning-rules.yaml", "", true, true, "Strict mode enabled"},
		{"malformed JSON", "testdata/rules/malformed-rules.json", "", false, true, "✗ Error:"},
		{"nonexistent file", "testdata/rules/nonexistent.yaml", "", false, true, "✗ Error:"},
		{"directory", "", "testdata/rules", false, true, "Summary:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLintFlags(tt.file, tt.dir, tt.strict, "text")
			cmd, out := newTestCommand(nil)

			err := lintRules(cmd, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("lintRules() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *cli.ValidationError
				if !errors.As(err, &verr) || cli.ExitCode(err) != cli.ExitFailure {
					t.Errorf("error = %T %v, want ValidationError", err, err)
				}
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output missing %q:\n%s", tt.wantOutput, out.String())
			}
		})
	}
}

func TestLintRules_Usage(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		dir    string
		format string
	}{
		{"no file or dir", "", "", "text"},
		{"unknown format", "testdata/rules/valid-rules.yaml", "", "xml"},
		{"empty directory", "", t.TempDir(), "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLintFlags(tt.file, tt.dir, false, tt.format)
			cmd, _ := newTestCommand(nil)

			err := lintRules(cmd, nil)
			if cli.ExitCode(err) != cli.ExitUsage {
				t.Errorf("lintRules() error = %v, want usage error", err)
			}
		})
	}
}

func TestLintRules_JSON(t *testing.T) {
	setLintFlags("testdata/rules/invalid-rules.yaml", "", false, "json")
	cmd, out := newTestCommand(nil)

	if err := lintRules(cmd, nil); err == nil {
		t.Fatal("expected error for invalid rules")
	}

	var results []LintResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.Valid || r.Version != "broken" || len(r.Errors) == 0 {
		t.Errorf("result = %+v", r)
	}
	if r.Errors[0].RuleID != "bad" {
		t.Errorf("RuleID = %q, want bad", r.Errors[0].RuleID)
	}
}
