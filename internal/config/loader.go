package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mramin786/jboss-monitor/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "jboss-monitor.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/jboss-monitor"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'jboss-monitor init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. jboss-monitor.yaml in the current directory
// 3. ~/.config/jboss-monitor/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// not found. Environment overrides still apply to the default path, so a
// container can run without a config file at all.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		v := viper.New()
		setDefaults(v)
		bindEnvOverrides(v)
		cfg := DefaultConfig()
		if err := v.Unmarshal(cfg); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid environment overrides", "")
		}
		return cfg, validate(cfg)
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults
// merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)
	bindEnvOverrides(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, validate(cfg)
}

// setDefaults registers defaults so partial config files merge cleanly.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("storage_dir", def.StorageDir)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("max_concurrent", def.MaxConcurrent)
	v.SetDefault("interval", def.Interval.String())
	v.SetDefault("sleep_floor", def.SleepFloor.String())
	v.SetDefault("lock_timeout", def.LockTimeout.String())
	v.SetDefault("cli.binary", def.CLI.Binary)
	v.SetDefault("cli.timeout", def.CLI.Timeout.String())
	v.SetDefault("cli.cache_ttl", def.CLI.CacheTTL.String())
	v.SetDefault("cli.simulate", def.CLI.Simulate)
	v.SetDefault("cli.simulate_fallback", def.CLI.SimulateFallback)
}

// bindEnvOverrides maps the long-standing deployment environment variables
// onto config keys.
func bindEnvOverrides(v *viper.Viper) {
	_ = v.BindEnv("workers", "MAX_WORKERS")
	_ = v.BindEnv("interval", "MONITORING_INTERVAL")
	_ = v.BindEnv("cli.timeout", "CLI_TIMEOUT")
	_ = v.BindEnv("storage_dir", "STORAGE_PATH")
	_ = v.BindEnv("cli.simulate", "JBOSS_MONITOR_SIMULATE")
}

// validate rejects values the scheduler cannot run with.
func validate(cfg *Config) error {
	if cfg.Workers <= 0 {
		return errors.New(errors.ErrConfig,
			"workers must be positive", "Remove the setting to use the default")
	}
	if cfg.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			"interval must be positive", "Remove the setting to use the default")
	}
	if cfg.CLI.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"cli.timeout must be positive", "Remove the setting to use the default")
	}
	if cfg.StorageDir == "" {
		return errors.New(errors.ErrConfig,
			"storage_dir must not be empty", "")
	}
	return nil
}
