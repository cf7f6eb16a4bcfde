package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/internal/app"
	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/host"
	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/record"
	"mercator-hq/gatekeep/pkg/rules/source"
)

var evaluateFlags struct {
	rules   string
	record  string
	explain bool
	format  string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate rules against a cart",
	Long: `Evaluate rules against a cart.

Without flags, evaluate speaks the checkout function protocol: it reads one
input document from stdin, evaluates the rules carried in the shop
metafield, and writes the function output to stdout.

With --rules and --record, it evaluates a rules file against a record file
and prints the fired rules. --explain additionally reports the outcome of
every rule, including the ones skipped by the guardrails.

Examples:
  # Checkout function protocol
  gatekeep evaluate < input.json

  # Evaluate a rules file
  gatekeep evaluate --rules rules.yaml --record cart.json

  # Explain every rule as JSON
  gatekeep evaluate --rules rules.yaml --record cart.json --explain --format json`,
	RunE: evaluateRules,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.rules, "rules", "r", "", "rules file (.json, .yaml, .yml)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.record, "record", "", "record file (JSON)")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.explain, "explain", false, "report the outcome of every rule")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "text", "output format: text, json")
}

func evaluateRules(cmd *cobra.Command, args []string) error {
	if (evaluateFlags.rules == "") != (evaluateFlags.record == "") {
		return cli.NewUsageError("--rules and --record must be given together")
	}

	format, err := cli.ParseFormat(evaluateFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newCommandLogger(cmd, cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	_, eval, _, err := app.NewEngine(cfg, logger.Slog(), nil)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if evaluateFlags.rules == "" {
		processor, err := host.NewProcessor(eval, logger)
		if err != nil {
			return cli.NewCommandError("evaluate", err)
		}
		if err := processor.Run(commandContext(cmd), stdin(cmd), stdout(cmd)); err != nil {
			return cli.NewCommandError("evaluate", err)
		}
		return nil
	}

	rules, err := readRulesFile(evaluateFlags.rules)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	rec, err := readRecordFile(evaluateFlags.record)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	out := stdout(cmd)
	if evaluateFlags.explain {
		explanation := eval.Explain(rules, rec)
		if format == cli.FormatJSON {
			return cli.WriteJSON(out, explanation)
		}
		printResult(out, rules, explanation.Result)
		fmt.Fprintln(out)
		return printTraces(out, explanation.Rules)
	}

	result := eval.EvaluateRules(rules, rec)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, result)
	}
	printResult(out, rules, result)
	return nil
}

// readRulesFile parses a rules file in the format implied by its extension.
func readRulesFile(path string) (*ast.RulesConfig, error) {
	format, err := source.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	cfg, err := source.Parse(body, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func readRecordFile(path string) (*record.Record, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	var rec record.Record
	if err := sonic.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%s: invalid record: %w", path, err)
	}
	return &rec, nil
}

func printResult(w io.Writer, cfg *ast.RulesConfig, result engine.EvaluationResult) {
	fmt.Fprintf(w, "Rules version: %s\n", cfg.Version)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", e.RuleID, e.Message)
	}
	if len(result.Errors) == 0 {
		fmt.Fprintln(w, "✓ No rules fired")
	}
	fmt.Fprintf(w, "%d fired, %d evaluated in %s\n", len(result.Errors), result.RulesEvaluated, result.Elapsed)
}

func printTraces(w io.Writer, traces []engine.RuleTrace) error {
	table := cli.NewTable(w, "RULE", "OUTCOME", "DEGRADED")
	for _, t := range traces {
		degraded := t.Degraded
		if degraded == "" {
			degraded = "-"
		}
		table.Row(t.RuleID, string(t.Outcome), degraded)
	}
	return table.Flush()
}
