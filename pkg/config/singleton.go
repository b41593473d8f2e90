package config

import (
	"fmt"
	"sync"
)

// Override adjusts a loaded configuration. Command-line flags that take
// precedence over the file and environment are applied as overrides.
type Override func(*Config)

// process is the configuration of the running command.
var process struct {
	mu        sync.RWMutex
	cfg       *Config
	path      string
	overrides []Override
	once      sync.Once
}

// Initialize loads path (the defaults when empty) with PETAB_* environment
// overrides, applies overrides in order and validates the result. The
// path and overrides are kept for ReloadConfig. Later calls are no-ops.
func Initialize(path string, overrides ...Override) error {
	var initErr error
	process.once.Do(func() {
		cfg, err := load(path, overrides)
		if err != nil {
			initErr = err
			return
		}
		process.mu.Lock()
		process.cfg = cfg
		process.path = path
		process.overrides = overrides
		process.mu.Unlock()
	})
	return initErr
}

// GetConfig returns the configuration, or nil before Initialize succeeds.
func GetConfig() *Config {
	process.mu.RLock()
	defer process.mu.RUnlock()
	return process.cfg
}

// ReloadConfig re-reads the file given to Initialize and re-applies the
// overrides registered there, so flag values survive a reload. On error
// the current configuration stays in place.
func ReloadConfig() error {
	process.mu.RLock()
	path, overrides := process.path, process.overrides
	process.mu.RUnlock()

	cfg, err := load(path, overrides)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	process.mu.Lock()
	process.cfg = cfg
	process.mu.Unlock()
	return nil
}

func load(path string, overrides []Override) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after flag overrides: %w", err)
	}
	return cfg, nil
}
