package manager

import (
	"errors"
	"fmt"

	"mercator-hq/gatekeep/pkg/rules/validator"
)

var (
	// ErrNoRules is returned when no configuration has been activated yet.
	ErrNoRules = errors.New("no active rules configuration")

	// ErrWatchRunning is returned when Watch is called twice.
	ErrWatchRunning = errors.New("watch already running")

	// ErrStoreDisabled is returned by store-backed operations without a store.
	ErrStoreDisabled = errors.New("rules store is not configured")
)

// Reload stages reported by ReloadError.
const (
	StageLoad     = "load"
	StageValidate = "validate"
)

// ReloadError describes a rejected reload. The previous snapshot stays
// active.
type ReloadError struct {
	// Source describes where the configuration came from.
	Source string

	// Stage is StageLoad or StageValidate.
	Stage string

	// Report holds the lint findings for validation failures.
	Report *validator.Report

	Cause error
}

// Error implements the error interface.
func (e *ReloadError) Error() string {
	return fmt.Sprintf("rules reload from %s failed at %s: %v", e.Source, e.Stage, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ReloadError) Unwrap() error {
	return e.Cause
}
