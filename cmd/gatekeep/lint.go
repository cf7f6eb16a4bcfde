package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/internal/app"
	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/validator"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rules files",
	Long: `Validate rules files for syntax and semantic errors.

The lint command parses rules files and checks them against the field
catalogue, the operator table, the preset patterns and the guardrails:
  - JSON/YAML syntax and operator names
  - Field references and operand types
  - Preset names and ad hoc pattern syntax
  - Rules that the guardrails would skip or never reach

Examples:
  # Lint single file
  gatekeep lint --file rules.yaml

  # Lint directory
  gatekeep lint --dir rules/

  # Strict mode (warnings as errors)
  gatekeep lint --file rules.yaml --strict

  # JSON output for CI/CD
  gatekeep lint --file rules.yaml --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rules file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rules files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for a single rules file.
type LintResult struct {
	File     string            `json:"file"`
	Valid    bool              `json:"valid"`
	Version  string            `json:"version,omitempty"`
	Rules    int               `json:"rules"`
	Errors   []validator.Issue `json:"errors,omitempty"`
	Warnings []validator.Issue `json:"warnings,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewUsageError("either --file or --dir must be specified")
	}

	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	files, err := lintTargets(lintFlags.file, lintFlags.dir)
	if err != nil {
		return err
	}

	cfg := config.Get()
	if cfg == nil {
		cfg = config.Default()
	}
	_, _, v, err := app.NewEngine(cfg, nil, nil)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(v, file, lintFlags.strict))
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		if err := cli.WriteJSON(out, results); err != nil {
			return err
		}
	} else {
		printLintResults(out, results, lintFlags.strict)
	}

	problems := 0
	for _, r := range results {
		problems += len(r.Errors)
		if lintFlags.strict {
			problems += len(r.Warnings)
		}
	}
	if problems > 0 {
		return &cli.ValidationError{Command: "lint", Errors: problems}
	}
	return nil
}

func lintTargets(file, dir string) ([]string, error) {
	var files []string
	if file != "" {
		files = append(files, file)
	}
	if dir != "" {
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to list rules files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return nil, cli.NewUsageError("no rules files found")
	}
	return files, nil
}

func lintFile(v *validator.Validator, path string, strict bool) LintResult {
	result := LintResult{File: path}

	failed := func(msg string) LintResult {
		result.Errors = append(result.Errors, validator.Issue{
			Severity: validator.SeverityError,
			Path:     "$",
			Message:  msg,
		})
		return result
	}

	format, err := source.FormatFromPath(path)
	if err != nil {
		return failed(err.Error())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return failed(err.Error())
	}
	cfg, err := source.Parse(body, format)
	if err != nil {
		return failed(err.Error())
	}

	report := v.Validate(cfg)
	result.Version = cfg.Version
	result.Rules = len(cfg.Rules)
	result.Errors = report.Errors()
	result.Warnings = report.Warnings()
	result.Valid = report.ToError(strict) == nil
	return result
}

func printLintResults(w io.Writer, results []LintResult, strict bool) {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Fprintf(w, "Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Fprintf(w, "✓ %d rule(s) valid\n", result.Rules)
		}
		for _, issue := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s\n", issueLine(issue))
			totalErrors++
		}
		for _, issue := range result.Warnings {
			fmt.Fprintf(w, "⚠  Warning: %s\n", issueLine(issue))
			totalWarnings++
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
	if strict && totalWarnings > 0 {
		fmt.Fprintln(w, "  Strict mode enabled: treating warnings as errors")
	}
}

func issueLine(i validator.Issue) string {
	line := fmt.Sprintf("%s: %s", i.Path, i.Message)
	if i.RuleID != "" {
		line += fmt.Sprintf(" [%s]", i.RuleID)
	}
	if i.Suggestion != "" {
		line += " (" + i.Suggestion + ")"
	}
	return line
}
