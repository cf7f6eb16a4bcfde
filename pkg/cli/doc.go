/*
Package cli provides helpers shared by the gatekeep commands.

Output Formatting:

Commands print either human-readable text or JSON:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	if format == cli.FormatJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), result)
	}

Tabular text goes through NewTable, which aligns columns with
text/tabwriter.

Exit Codes:

Errors returned from RunE are mapped to process exit codes by ExitCode:
ValidationError exits 1 (the input was examined and rejected), ConfigError
and UsageError exit 2, anything else exits 1.

Progress Reporting:

	progress := cli.NewProgressReporter(cmd.ErrOrStderr())
	progress.Start(total)
	progress.Update(done)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
