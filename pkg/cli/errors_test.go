package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("server.listen_address", "missing required field"), "config error in server.listen_address: missing required field"},
		{NewConfigError("", "file not found"), "config error: file not found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("run", underlying)

	if err.Error() != "command run failed: underlying error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("CommandError should unwrap to the underlying error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"validation", &ValidationError{Command: "lint", Errors: 2}, ExitFailure},
		{"config", NewConfigError("x", "y"), ExitUsage},
		{"usage", NewUsageError("bad flag"), ExitUsage},
		{"wrapped usage", fmt.Errorf("parse: %w", NewUsageError("bad flag")), ExitUsage},
		{"command wrapping config", NewCommandError("run", NewConfigError("x", "y")), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Command: "lint", Errors: 3}
	if err.Error() != "lint: 3 problem(s) found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
