package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeep/pkg/config"
)

// newTestCommand returns a bare command whose output is captured.
func newTestCommand(in io.Reader) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if in != nil {
		cmd.SetIn(in)
	}
	return cmd, &out
}

// withConfig installs cfg as the process-wide configuration for one test.
func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := config.Get()
	config.Set(cfg)
	t.Cleanup(func() { config.Set(prev) })
}
