package cli

import (
	"github.com/mramin786/jboss-monitor/internal/config"
	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/jbosscli"
	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
	"github.com/mramin786/jboss-monitor/internal/poller"
	"github.com/mramin786/jboss-monitor/internal/registry"
	"github.com/mramin786/jboss-monitor/internal/scheduler"
	"github.com/mramin786/jboss-monitor/internal/store"
)

// app bundles the wired components behind a command.
type app struct {
	cfg       *config.Config
	registry  *registry.Registry
	store     *store.Store
	scheduler *scheduler.Scheduler
}

// buildApp loads configuration and wires the engine. Every command goes
// through this so flags and env overrides behave identically everywhere.
func buildApp() (*app, error) {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}

	log := logger.Default()
	st := store.New(cfg.StorageDir, cfg.LockTimeout, log)
	reg := registry.New(cfg.StorageDir)

	gateway := jbosscli.New(jbosscli.Config{
		Binary:           cfg.CLI.Binary,
		Timeout:          cfg.CLI.Timeout,
		CacheTTL:         cfg.CLI.CacheTTL,
		Simulate:         cfg.CLI.Simulate,
		SimulateFallback: cfg.CLI.SimulateFallback,
	}, logger.New("jbosscli"))

	p := poller.New(gateway, logger.New("poller"))

	sched := scheduler.New(reg, st, p, scheduler.Config{
		Workers:    cfg.EffectiveWorkers(),
		Interval:   cfg.Interval,
		SleepFloor: cfg.SleepFloor,
	}, logger.New("scheduler"))

	return &app{cfg: cfg, registry: reg, store: st, scheduler: sched}, nil
}

// parseEnvironment validates a positional environment argument.
func parseEnvironment(arg string) (monitor.Environment, error) {
	env := monitor.Environment(arg)
	if !env.Valid() {
		return "", errors.New(errors.ErrConfig,
			"Unknown environment: "+arg,
			"Valid environments: production, non_production")
	}
	return env, nil
}
