package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/rules/patterns"
)

var patternsFlags struct {
	format string
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List preset patterns",
	Long: `List the preset patterns available to REGEX_MATCH conditions with
is_preset set.

Examples:
  # List presets
  gatekeep patterns

  # Check values against a preset
  gatekeep patterns test po_box "PO Box 12" "12 Main St"`,
	Args: cobra.NoArgs,
	RunE: listPatterns,
}

var patternsTestCmd = &cobra.Command{
	Use:   "test NAME VALUE...",
	Short: "Match values against a preset pattern",
	Args:  cobra.MinimumNArgs(2),
	RunE:  testPattern,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsTestCmd)

	patternsCmd.PersistentFlags().StringVar(&patternsFlags.format, "format", "text", "output format: text, json")
}

func listPatterns(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(patternsFlags.format)
	if err != nil {
		return err
	}

	lib, err := patterns.New()
	if err != nil {
		return cli.NewCommandError("patterns", err)
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, lib.Presets())
	}

	table := cli.NewTable(out, "NAME", "DESCRIPTION", "PATTERN")
	for _, p := range lib.Presets() {
		table.Row(p.Name, p.Description, p.Source)
	}
	return table.Flush()
}

// PatternMatch is one value checked by patterns test.
type PatternMatch struct {
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

func testPattern(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(patternsFlags.format)
	if err != nil {
		return err
	}

	lib, err := patterns.New()
	if err != nil {
		return cli.NewCommandError("patterns", err)
	}

	name := args[0]
	if !lib.Has(name) {
		return cli.NewUsageError(fmt.Sprintf("unknown preset %q (available: %v)", name, lib.SortedNames()))
	}

	matches := make([]PatternMatch, 0, len(args)-1)
	for _, value := range args[1:] {
		matched, _ := lib.Match(name, value)
		matches = append(matches, PatternMatch{Value: value, Matched: matched})
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, matches)
	}
	for _, m := range matches {
		mark := "✗"
		if m.Matched {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %q\n", mark, m.Value)
	}
	return nil
}
