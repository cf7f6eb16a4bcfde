package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mercator-hq/gatekeep/pkg/bench"
	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"
)

func setBenchFlags(rules, regex, iterations int, file, format string) {
	benchFlags.rules = rules
	benchFlags.regex = regex
	benchFlags.iterations = iterations
	benchFlags.file = file
	benchFlags.format = format
}

// benchConfig keeps the time budget out of the way so only the rule limits
// shape the passes.
func benchConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Guardrails.TimeBudget = time.Hour
	withConfig(t, cfg)
}

func TestBench_JSON(t *testing.T) {
	benchConfig(t)

	tests := []struct {
		name          string
		rules, regex  int
		wantEvaluated int
		wantSkipped   int
		wantMaxRules  int
	}{
		{"at the limits", 70, 30, 100, 0, 0},
		{"past the rule limit", 150, 40, 100, 0, 20},
		{"past the regex quota", 40, 35, 70, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBenchFlags(tt.rules, tt.regex, 20, "", "json")
			cmd, out := newTestCommand(nil)

			if err := runBench(cmd, nil); err != nil {
				t.Fatalf("runBench() error = %v", err)
			}

			var report bench.Report
			if err := json.Unmarshal(out.Bytes(), &report); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out.String())
			}
			if report.Rules != tt.rules+tt.regex || report.RegexRules != tt.regex {
				t.Errorf("rules = %d/%d", report.Rules, report.RegexRules)
			}
			if report.RulesEvaluated != tt.wantEvaluated {
				t.Errorf("RulesEvaluated = %d, want %d", report.RulesEvaluated, tt.wantEvaluated)
			}
			if report.RegexSkipped != tt.wantSkipped {
				t.Errorf("RegexSkipped = %d, want %d", report.RegexSkipped, tt.wantSkipped)
			}
			if got := report.Truncations[engine.TruncationMaxRules]; got != tt.wantMaxRules {
				t.Errorf("max_rules truncations = %d, want %d", got, tt.wantMaxRules)
			}
		})
	}
}

func TestBench_Text(t *testing.T) {
	benchConfig(t)
	setBenchFlags(10, 2, 10, "", "text")
	cmd, out := newTestCommand(nil)

	if err := runBench(cmd, nil); err != nil {
		t.Fatalf("runBench() error = %v", err)
	}
	for _, want := range []string{
		"Configuration: synthetic-10-2 (12 rules, 2 regex)",
		"Iterations: 10",
		"p99:",
		"Rules evaluated per pass: 12",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestBench_File(t *testing.T) {
	benchConfig(t)
	setBenchFlags(0, 0, 5, "testdata/rules/valid-rules.yaml", "json")
	cmd, out := newTestCommand(nil)

	if err := runBench(cmd, nil); err != nil {
		t.Fatalf("runBench() error = %v", err)
	}
	var report bench.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Rules != 3 || report.RegexRules != 1 || report.Iterations != 5 {
		t.Errorf("report = %+v", report)
	}
}

func TestBench_Usage(t *testing.T) {
	tests := []struct {
		name                     string
		rules, regex, iterations int
		format                   string
	}{
		{"negative rules", -1, 0, 10, "text"},
		{"zero iterations", 10, 0, 0, "text"},
		{"unknown format", 10, 0, 10, "html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBenchFlags(tt.rules, tt.regex, tt.iterations, "", tt.format)
			cmd, _ := newTestCommand(nil)
			if code := cli.ExitCode(runBench(cmd, nil)); code != cli.ExitUsage {
				t.Errorf("exit code = %d, want %d", code, cli.ExitUsage)
			}
		})
	}
}
