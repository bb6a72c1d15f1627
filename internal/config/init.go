package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mramin786/jboss-monitor/internal/errors"
)

const configHeader = `# jboss-monitor configuration.
# Durations use Go syntax: 30s, 1m, 250ms.
`

// scaffold mirrors Config with durations as strings, so the generated file
// is readable instead of nanosecond integers.
type scaffold struct {
	Version       int    `yaml:"version"`
	StorageDir    string `yaml:"storage_dir"`
	Workers       int    `yaml:"workers"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Interval      string `yaml:"interval"`
	SleepFloor    string `yaml:"sleep_floor"`
	LockTimeout   string `yaml:"lock_timeout"`
	CLI           struct {
		Binary           string `yaml:"binary"`
		Timeout          string `yaml:"timeout"`
		CacheTTL         string `yaml:"cache_ttl"`
		Simulate         bool   `yaml:"simulate"`
		SimulateFallback bool   `yaml:"simulate_fallback"`
	} `yaml:"cli"`
}

// WriteDefault writes a starter config file at path. Refuses to overwrite
// an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Remove it first if you want a fresh one")
	}

	def := DefaultConfig()
	var sc scaffold
	sc.Version = def.Version
	sc.StorageDir = def.StorageDir
	sc.Workers = def.Workers
	sc.MaxConcurrent = def.MaxConcurrent
	sc.Interval = def.Interval.String()
	sc.SleepFloor = def.SleepFloor.String()
	sc.LockTimeout = def.LockTimeout.String()
	sc.CLI.Binary = def.CLI.Binary
	sc.CLI.Timeout = def.CLI.Timeout.String()
	sc.CLI.CacheTTL = def.CLI.CacheTTL.String()
	sc.CLI.Simulate = def.CLI.Simulate
	sc.CLI.SimulateFallback = def.CLI.SimulateFallback

	data, err := yaml.Marshal(sc)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot encode default config", "")
	}

	out := append([]byte(configHeader), data...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write config file: "+path,
			"Check directory permissions")
	}
	return nil
}
