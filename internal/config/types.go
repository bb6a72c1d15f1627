package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete jboss-monitor.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// StorageDir is the root under which per-environment hosts, credentials
	// and status files live.
	StorageDir string `yaml:"storage_dir" mapstructure:"storage_dir"`

	// Workers caps the polling worker pool per cycle.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// MaxConcurrent, when nonzero, lowers the effective pool size below
	// Workers. Useful on shared jump hosts where each poll spawns a JVM.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// Interval is the target spacing between fleet cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// SleepFloor is the minimum pause between cycles even when a cycle
	// overruns the interval.
	SleepFloor time.Duration `yaml:"sleep_floor" mapstructure:"sleep_floor"`

	// LockTimeout bounds how long a save waits for the status file lock.
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`

	CLI CLIConfig `yaml:"cli" mapstructure:"cli"`
}

// CLIConfig controls the management CLI gateway.
type CLIConfig struct {
	// Binary is the CLI launcher; resolved via PATH when not absolute.
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Timeout bounds each CLI invocation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CacheTTL is how long read-only command results are reused.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`

	// Simulate serves fixture payloads instead of invoking the CLI.
	Simulate bool `yaml:"simulate" mapstructure:"simulate"`

	// SimulateFallback serves fixtures when the binary is absent.
	SimulateFallback bool `yaml:"simulate_fallback" mapstructure:"simulate_fallback"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:       CurrentConfigVersion,
		StorageDir:    "storage",
		Workers:       10,
		MaxConcurrent: 0,
		Interval:      60 * time.Second,
		SleepFloor:    time.Second,
		LockTimeout:   10 * time.Second,
		CLI: CLIConfig{
			Binary:           "jboss-cli.sh",
			Timeout:          30 * time.Second,
			CacheTTL:         60 * time.Second,
			Simulate:         false,
			SimulateFallback: false,
		},
	}
}

// EffectiveWorkers resolves the pool size from Workers and the
// MaxConcurrent override.
func (c *Config) EffectiveWorkers() int {
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	if c.MaxConcurrent > 0 && c.MaxConcurrent < workers {
		workers = c.MaxConcurrent
	}
	return workers
}
