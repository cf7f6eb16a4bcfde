package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/rules/store"
)

var storeFlags struct {
	path   string
	driver string
	format string
	limit  int
	keep   int
	body   bool
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the rules version store",
	Long: `Inspect and maintain the SQLite store of activated rules configurations.

The database path and driver come from the rules.store section of the
configuration unless --db or --driver is given.

Examples:
  # List the newest versions
  gatekeep store list --limit 10

  # Print a stored configuration
  gatekeep store show 6f1c... --body

  # Keep only the newest 20 versions
  gatekeep store prune --keep 20`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  listVersions,
}

var storeShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one stored rules version",
	Args:  cobra.ExactArgs(1),
	RunE:  showVersion,
}

var storePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest versions",
	Args:  cobra.NoArgs,
	RunE:  pruneVersions,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeShowCmd, storePruneCmd)

	storeCmd.PersistentFlags().StringVar(&storeFlags.path, "db", "", "override the store database path")
	storeCmd.PersistentFlags().StringVar(&storeFlags.driver, "driver", "", "override the SQLite driver (sqlite, sqlite3)")
	storeCmd.PersistentFlags().StringVar(&storeFlags.format, "format", "text", "output format: text, json")
	storeListCmd.Flags().IntVar(&storeFlags.limit, "limit", 20, "maximum versions to list (0 for all)")
	storeShowCmd.Flags().BoolVar(&storeFlags.body, "body", false, "print the stored configuration body")
	storePruneCmd.Flags().IntVar(&storeFlags.keep, "keep", 0, "versions to keep (default: rules.store.keep)")
}

func openStore(cmd *cobra.Command) (*store.Store, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	logger, err := newCommandLogger(cmd, cfg)
	if err != nil {
		return nil, 0, cli.NewConfigError("telemetry.logging", err.Error())
	}

	opts := store.OptionsFromConfig(cfg.Rules.Store, logger.Slog())
	if storeFlags.path != "" {
		opts.Path = storeFlags.path
	}
	if storeFlags.driver != "" {
		opts.Driver = storeFlags.driver
	}

	s, err := store.Open(opts)
	if err != nil {
		return nil, 0, cli.NewCommandError("store", err)
	}
	return s, cfg.Rules.Store.Keep, nil
}

func listVersions(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(storeFlags.format)
	if err != nil {
		return err
	}
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	versions, err := s.List(commandContext(cmd), storeFlags.limit)
	if err != nil {
		return cli.NewCommandError("store list", err)
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, versions)
	}
	if len(versions) == 0 {
		fmt.Fprintln(out, "No rules versions stored")
		return nil
	}

	table := cli.NewTable(out, "ID", "VERSION", "RULES", "REVISION", "SOURCE", "CREATED")
	for _, v := range versions {
		table.Row(v.ID, v.Version, fmt.Sprint(v.RuleCount), shortRevision(v.Revision), v.Source,
			v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return table.Flush()
}

func showVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(storeFlags.format)
	if err != nil {
		return err
	}
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.Get(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("store show", err)
	}

	out := stdout(cmd)
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, struct {
			*store.Version
			Body string `json:"body,omitempty"`
		}{Version: v, Body: bodyIf(v, storeFlags.body)})
	}

	fmt.Fprintf(out, "ID:       %s\n", v.ID)
	fmt.Fprintf(out, "Version:  %s\n", v.Version)
	fmt.Fprintf(out, "Rules:    %d\n", v.RuleCount)
	fmt.Fprintf(out, "Format:   %s\n", v.Format)
	fmt.Fprintf(out, "Source:   %s\n", v.Source)
	fmt.Fprintf(out, "Revision: %s\n", v.Revision)
	fmt.Fprintf(out, "Checksum: %s\n", v.Checksum)
	fmt.Fprintf(out, "Created:  %s\n", v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	if storeFlags.body {
		fmt.Fprintf(out, "\n%s\n", v.Body)
	}
	return nil
}

func pruneVersions(cmd *cobra.Command, args []string) error {
	s, keep, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if storeFlags.keep > 0 {
		keep = storeFlags.keep
	}
	deleted, err := s.Prune(commandContext(cmd), keep)
	if err != nil {
		return cli.NewCommandError("store prune", err)
	}
	fmt.Fprintf(stdout(cmd), "✓ Pruned %d version(s), kept newest %d\n", deleted, keep)
	return nil
}

func bodyIf(v *store.Version, include bool) string {
	if !include {
		return ""
	}
	return string(v.Body)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
