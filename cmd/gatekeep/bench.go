package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/internal/app"
	"mercator-hq/gatekeep/pkg/bench"
	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/patterns"
)

var benchFlags struct {
	rules      int
	regex      int
	iterations int
	file       string
	format     string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure evaluation latency",
	Long: `Measure evaluation latency against a synthetic or real rules configuration.

The synthetic configuration has --rules numeric rules that never fire
followed by --regex preset rules, evaluated against a record none of them
match, so every pass walks as far as the guardrails allow.

Metrics Reported:
  - Pass latency (mean, p50, p95, p99, max)
  - Rules evaluated per pass and regex rules skipped by the quota
  - Passes truncated by the rule limit or the time budget

Examples:
  # Guardrail limits
  gatekeep bench --rules 100 --regex 30

  # Past the limits
  gatekeep bench --rules 150 --regex 40 --iterations 10000

  # Real rules file
  gatekeep bench --file rules.yaml --format json`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchFlags.rules, "rules", engine.DefaultMaxRules, "number of numeric rules")
	benchCmd.Flags().IntVar(&benchFlags.regex, "regex", engine.DefaultMaxRegexRules, "number of regex rules")
	benchCmd.Flags().IntVarP(&benchFlags.iterations, "iterations", "n", bench.DefaultIterations, "evaluation passes")
	benchCmd.Flags().StringVarP(&benchFlags.file, "file", "f", "", "rules file to measure instead of a synthetic configuration")
	benchCmd.Flags().StringVar(&benchFlags.format, "format", "text", "output format: text, json")
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchFlags.rules < 0 || benchFlags.regex < 0 {
		return cli.NewUsageError("--rules and --regex cannot be negative")
	}
	if benchFlags.iterations <= 0 {
		return cli.NewUsageError("--iterations must be positive")
	}

	format, err := cli.ParseFormat(benchFlags.format)
	if err != nil {
		return err
	}

	var rules *ast.RulesConfig
	if benchFlags.file != "" {
		if rules, err = readRulesFile(benchFlags.file); err != nil {
			return cli.NewCommandError("bench", err)
		}
	} else {
		rules = bench.GenerateConfig(benchFlags.rules, benchFlags.regex)
	}

	cfg := config.Get()
	if cfg == nil {
		cfg = config.Default()
	}

	lib, err := patterns.New()
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	opts := bench.Options{
		Iterations: benchFlags.iterations,
		Guardrails: app.GuardrailsFromConfig(cfg.Guardrails),
	}
	if format == cli.FormatText {
		opts.Progress = cli.NewProgressReporter(stderr(cmd))
	}

	ctx, stop := cli.SignalContext(commandContext(cmd))
	defer stop()

	report, err := bench.Run(ctx, lib, rules, bench.SampleRecord(), opts)
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, report)
	}
	printBenchReport(out, rules.Version, report, opts.Guardrails)
	return nil
}

func printBenchReport(w io.Writer, version string, r *bench.Report, g *engine.Guardrails) {
	fmt.Fprintln(w, "Gatekeep Benchmark")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Configuration: %s (%d rules, %d regex)\n", version, r.Rules, r.RegexRules)
	fmt.Fprintf(w, "Guardrails: max_rules=%d max_regex_rules=%d time_budget=%s\n",
		g.MaxRules, g.MaxRegexRules, g.TimeBudget)
	fmt.Fprintf(w, "Iterations: %d\n", r.Iterations)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Latency:")
	fmt.Fprintf(w, "  Mean: %s\n", r.Mean)
	fmt.Fprintf(w, "  p50:  %s\n", r.P50)
	fmt.Fprintf(w, "  p95:  %s\n", r.P95)
	fmt.Fprintf(w, "  p99:  %s\n", r.P99)
	fmt.Fprintf(w, "  Max:  %s\n", r.Max)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Guardrails:")
	fmt.Fprintf(w, "  Rules evaluated per pass: %d\n", r.RulesEvaluated)
	fmt.Fprintf(w, "  Regex rules skipped per pass: %d\n", r.RegexSkipped)

	reasons := make([]string, 0, len(r.Truncations))
	for t := range r.Truncations {
		reasons = append(reasons, string(t))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  Passes truncated (%s): %d\n", reason, r.Truncations[engine.Truncation(reason)])
	}
	fmt.Fprintf(w, "  Passes over budget: %d\n", r.OverBudget)
}
