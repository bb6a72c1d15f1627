// Package scheduler drives the fleet: it loads hosts and credentials per
// environment, fans polls out to a bounded worker pool, merges results into
// the status store, and paces cycles against the configured interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
	"github.com/mramin786/jboss-monitor/internal/store"
)

// checkAllPersistEvery is how many completed hosts an on-demand full check
// accumulates before persisting a partial merge, so a long fleet check
// becomes visible incrementally.
const checkAllPersistEvery = 5

// cycleRetryBackoff is the pause after a cycle panics or fails outright.
const cycleRetryBackoff = 10 * time.Second

// HostSource supplies the fleet definition and its monitoring credential.
type HostSource interface {
	Hosts(env monitor.Environment) ([]monitor.Host, error)
	Credentials(env monitor.Environment) (monitor.Credential, bool, error)
}

// StatusStore is the slice of the store the scheduler needs.
type StatusStore interface {
	Load(env monitor.Environment) *store.StatusMap
	Merge(env monitor.Environment, records map[string]monitor.StatusRecord) error
	SetMeta(env monitor.Environment, key, value string) error
}

// HostPoller checks a single host.
type HostPoller interface {
	Poll(ctx context.Context, host monitor.Host, cred monitor.Credential, prev monitor.StatusRecord) monitor.StatusRecord
}

// Config holds the scheduler's tunables.
type Config struct {
	// Workers is the poll worker pool size per cycle.
	Workers int
	// Interval is the target spacing between cycle starts.
	Interval time.Duration
	// SleepFloor is the minimum pause between cycles.
	SleepFloor time.Duration
}

// Scheduler owns the periodic monitoring loop and the on-demand checks.
type Scheduler struct {
	source HostSource
	store  StatusStore
	poller HostPoller
	cfg    Config
	log    logger.Logger
}

// New creates a Scheduler. A nil logger defaults to the package default.
func New(source HostSource, st StatusStore, p HostPoller, cfg Config, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.SleepFloor <= 0 {
		cfg.SleepFloor = time.Second
	}
	return &Scheduler{source: source, store: st, poller: p, cfg: cfg, log: log}
}

// Run executes monitoring cycles until ctx is cancelled. Each cycle covers
// every environment in order. A panicking or failing cycle is logged and
// retried after a fixed backoff instead of killing the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("monitoring loop started (interval %s, workers %d)", s.cfg.Interval, s.cfg.Workers)

	for {
		start := time.Now()

		if err := s.runCycleSafely(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error("monitoring cycle failed: %v", err)
			if !s.wait(ctx, cycleRetryBackoff) {
				return ctx.Err()
			}
			continue
		}

		elapsed := time.Since(start)
		pause := s.cfg.Interval - elapsed
		if pause < s.cfg.SleepFloor {
			pause = s.cfg.SleepFloor
		}
		s.log.Info("cycle completed in %s, next in %s", elapsed.Round(time.Millisecond), pause.Round(time.Millisecond))

		if !s.wait(ctx, pause) {
			return ctx.Err()
		}
	}
}

// runCycleSafely converts a cycle panic into an error so Run can back off
// and continue.
func (s *Scheduler) runCycleSafely(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrExec,
				fmt.Sprintf("Monitoring cycle panicked: %v", r), "")
		}
	}()

	for _, env := range monitor.Environments {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if cycleErr := s.cycleEnvironment(ctx, env); cycleErr != nil {
			err = cycleErr
		}
	}
	return err
}

// cycleEnvironment polls every host in one environment and merges the
// results. Missing credentials or an empty fleet skip the environment
// without error.
func (s *Scheduler) cycleEnvironment(ctx context.Context, env monitor.Environment) error {
	cred, found, err := s.source.Credentials(env)
	if err != nil {
		return err
	}
	if !found {
		s.log.Warn("no system credentials for %s, skipping environment", env)
		return nil
	}

	hosts, err := s.source.Hosts(env)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		s.log.Info("no hosts configured for %s", env)
		return nil
	}

	if err := s.store.SetMeta(env, store.MetaInProgress, "true"); err != nil {
		s.log.Warn("cannot mark refresh in progress for %s: %v", env, err)
	}
	defer func() {
		if err := s.store.SetMeta(env, store.MetaInProgress, ""); err != nil {
			s.log.Warn("cannot clear refresh marker for %s: %v", env, err)
		}
	}()

	s.log.Info("polling %d hosts in %s", len(hosts), env)
	results := s.pollFleet(ctx, env, hosts, cred, 0)
	if len(results) == 0 {
		return nil
	}
	return s.store.Merge(env, results)
}

// hostResult pairs a host id with its freshly polled record.
type hostResult struct {
	id     string
	record monitor.StatusRecord
}

// pollFleet fans hosts out to a bounded worker pool and collects records in
// completion order. When persistEvery is nonzero, a partial merge is
// written each time that many results accumulate.
func (s *Scheduler) pollFleet(ctx context.Context, env monitor.Environment, hosts []monitor.Host, cred monitor.Credential, persistEvery int) map[string]monitor.StatusRecord {
	prev := s.store.Load(env)

	queue := make(chan monitor.Host, len(hosts))
	for _, h := range hosts {
		queue <- h
	}
	close(queue)

	workers := s.cfg.Workers
	if workers > len(hosts) {
		workers = len(hosts)
	}

	resultChan := make(chan hostResult, len(hosts))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range queue {
				if ctx.Err() != nil {
					return
				}
				prevRecord, ok := prev.Get(host.ID)
				if !ok {
					prevRecord = monitor.UnknownRecord()
				}
				record := s.pollSafely(ctx, host, cred, prevRecord)
				resultChan <- hostResult{id: host.ID, record: record}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make(map[string]monitor.StatusRecord, len(hosts))
	pending := make(map[string]monitor.StatusRecord, persistEvery)
	for r := range resultChan {
		results[r.id] = r.record
		if r.record.Changed {
			s.log.Info("host %s in %s changed: now %s", r.id, env, r.record.InstanceStatus)
		}

		if persistEvery > 0 {
			pending[r.id] = r.record
			if len(pending) >= persistEvery {
				if err := s.store.Merge(env, pending); err != nil {
					s.log.Error("partial merge failed for %s: %v", env, err)
				}
				pending = make(map[string]monitor.StatusRecord, persistEvery)
			}
		}
	}

	if persistEvery > 0 && len(pending) > 0 {
		if err := s.store.Merge(env, pending); err != nil {
			s.log.Error("partial merge failed for %s: %v", env, err)
		}
	}

	return results
}

// pollSafely keeps one panicking poll from taking the whole cycle down.
func (s *Scheduler) pollSafely(ctx context.Context, host monitor.Host, cred monitor.Credential, prev monitor.StatusRecord) (record monitor.StatusRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("poll of %s panicked: %v", host.ID, r)
			now := time.Now().UTC()
			record = monitor.StatusRecord{
				InstanceStatus: monitor.StatusError,
				Datasources:    []monitor.ResourceStatus{},
				Deployments:    []monitor.ResourceStatus{},
				LastCheck:      &now,
				Changed:        true,
				Error:          fmt.Sprintf("poll panicked: %v", r),
			}
		}
	}()
	return s.poller.Poll(ctx, host, cred, prev)
}

// CheckAll polls every host in one environment on demand, persisting a
// partial merge every few completed hosts so progress is visible while the
// check runs. Returns the fresh records.
func (s *Scheduler) CheckAll(ctx context.Context, env monitor.Environment) (map[string]monitor.StatusRecord, error) {
	cred, found, err := s.source.Credentials(env)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No system credentials configured for %s", env),
			"Run 'jboss-monitor credentials "+string(env)+"' first")
	}

	hosts, err := s.source.Hosts(env)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return map[string]monitor.StatusRecord{}, nil
	}

	return s.pollFleet(ctx, env, hosts, cred, checkAllPersistEvery), nil
}

// CheckHost polls one named host on demand and merges its record.
func (s *Scheduler) CheckHost(ctx context.Context, env monitor.Environment, hostID string) (monitor.StatusRecord, error) {
	cred, found, err := s.source.Credentials(env)
	if err != nil {
		return monitor.StatusRecord{}, err
	}
	if !found {
		return monitor.StatusRecord{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("No system credentials configured for %s", env),
			"Run 'jboss-monitor credentials "+string(env)+"' first")
	}

	hosts, err := s.source.Hosts(env)
	if err != nil {
		return monitor.StatusRecord{}, err
	}

	var target *monitor.Host
	for i := range hosts {
		if hosts[i].ID == hostID {
			target = &hosts[i]
			break
		}
	}
	if target == nil {
		return monitor.StatusRecord{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown host %q in %s", hostID, env),
			"List hosts with 'jboss-monitor status "+string(env)+"'")
	}

	prevRecord, ok := s.store.Load(env).Get(hostID)
	if !ok {
		prevRecord = monitor.UnknownRecord()
	}

	record := s.pollSafely(ctx, *target, cred, prevRecord)
	if err := s.store.Merge(env, map[string]monitor.StatusRecord{hostID: record}); err != nil {
		return record, err
	}
	return record, nil
}

// GetStatus returns the merged view of the fleet: every registry host paired
// with its stored record, or an unknown placeholder when the host has never
// been polled.
func (s *Scheduler) GetStatus(env monitor.Environment) ([]monitor.HostStatus, error) {
	hosts, err := s.source.Hosts(env)
	if err != nil {
		return nil, err
	}

	current := s.store.Load(env)
	statuses := make([]monitor.HostStatus, 0, len(hosts))
	for _, h := range hosts {
		record, ok := current.Get(h.ID)
		if !ok {
			record = monitor.UnknownRecord()
		}
		statuses = append(statuses, monitor.HostStatus{Host: h, Status: record})
	}
	return statuses, nil
}

// wait sleeps for d or until ctx is cancelled, reporting whether the full
// wait elapsed.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
