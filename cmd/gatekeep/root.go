package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/telemetry/logging"
)

// defaultConfigFile is used when --config is not given. A missing default
// file is not an error; defaults and environment overrides apply.
const defaultConfigFile = "gatekeep.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gatekeep",
	Short: "Gatekeep - bounded-latency checkout rule evaluation",
	Long: `Gatekeep evaluates declarative checkout validation rules against a cart
record and reports which rules fired.

Every evaluation pass is bounded: at most 100 rules are evaluated, at most
30 of them may use regular expressions, and the pass stops once 4ms have
elapsed. The limits are configurable.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file with environment overrides and
// installs it as the process-wide configuration.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == defaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	config.Set(cfg)
	return cfg, nil
}

// newCommandLogger builds a logger for offline commands. Logs go to stderr
// so stdout carries only command output.
func newCommandLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	lc.Writer = stderr(cmd)
	if !verbose && cfg.Telemetry.Logging.Level == config.DefaultLoggingLevel {
		lc.Level = "warn"
	}
	return logging.New(lc)
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
