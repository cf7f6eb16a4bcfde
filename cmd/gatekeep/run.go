package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/internal/app"
	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/server"
	"mercator-hq/gatekeep/pkg/telemetry"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Gatekeep HTTP service",
	Long: `Start the Gatekeep HTTP service with the specified configuration.

The service loads the configured rules, keeps them current when watching is
enabled, and evaluates records posted to /v1/evaluate.

Examples:
  # Start with default config
  gatekeep run

  # Start with custom config
  gatekeep run --config /etc/gatekeep/gatekeep.yaml

  # Override listen address
  gatekeep run --listen 0.0.0.0:8080

  # Validate config and rules without starting the service
  gatekeep run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and rules without starting the service")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ctx, stop := cli.SignalContext(commandContext(cmd))
	defer stop()

	a, err := app.New(ctx, cfg, telemetry.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.Close(context.Background())

	out := stdout(cmd)
	logger := a.Telemetry.Logger()

	snap, err := a.Manager.Reload(ctx)
	if runFlags.dryRun {
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Fprintln(out, "✓ Configuration valid")
		fmt.Fprintf(out, "✓ Rules valid (%s, %d rules)\n", snap.Version(), len(snap.Config.Rules))
		return nil
	}

	printBanner(cmd, cfg)
	if err != nil {
		// The service still starts; readiness fails until a reload succeeds.
		logger.Error("initial rules load failed", "error", err)
		fmt.Fprintf(out, "✗ Rules not loaded: %v\n", err)
	} else {
		fmt.Fprintf(out, "✓ Rules loaded (%s, %d rules)\n", snap.Version(), len(snap.Config.Rules))
	}

	if cfg.Rules.Watch {
		go func() {
			if err := a.Manager.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("rules watcher stopped", "error", err)
			}
		}()
		fmt.Fprintf(out, "✓ Watching %s\n", a.Source.Describe())
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start rules prune scheduler", "error", err)
		} else if next := a.Scheduler.NextRun(); next != nil {
			logger.Debug("rules prune scheduler started", "next_run", next)
		}
	}

	srv, err := server.New(cfg, server.Deps{
		Evaluator: a.Evaluator,
		Manager:   a.Manager,
		Validator: a.Validator,
		Telemetry: a.Telemetry,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := stdout(cmd)
	fmt.Fprintf(out, "Gatekeep v%s\n", Version)
	fmt.Fprintf(out, "Rules source: %s\n", cfg.Rules.Source)
	fmt.Fprintf(out, "Guardrails: max_rules=%d max_regex_rules=%d time_budget=%s\n",
		cfg.Guardrails.MaxRules, cfg.Guardrails.MaxRegexRules, cfg.Guardrails.TimeBudget)
	if cfg.Rules.Store.Enabled {
		fmt.Fprintf(out, "Rules store: %s (%s)\n", cfg.Rules.Store.Path, cfg.Rules.Store.Driver)
	}
}
