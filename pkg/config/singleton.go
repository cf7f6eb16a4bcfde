package config

import (
	"fmt"
	"sync"
)

var (
	current   *Config
	currentMu sync.RWMutex
	initOnce  sync.Once
)

// Initialize loads configuration with environment overrides and installs
// it as the process-wide configuration. Only the first call loads; later
// calls return nil without reading path.
func Initialize(path string) error {
	var initErr error
	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		Set(cfg)
	})
	return initErr
}

// Get returns the process-wide configuration, or nil before Initialize
// or Set.
func Get() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// Set installs cfg as the process-wide configuration. Commands that build
// their configuration from flags use it; tests use it to inject fixtures.
func Set(cfg *Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = cfg
}

// Reload re-reads path and replaces the process-wide configuration only if
// loading and validation succeed.
func Reload(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	Set(cfg)
	return nil
}

// MustGet returns the process-wide configuration and panics if none is
// installed.
func MustGet() *Config {
	cfg := Get()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
