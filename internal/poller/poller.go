// Package poller runs the per-host status check: probe the server, collect
// datasources and deployments, and produce a fresh status record. A poll
// never mutates shared state; the scheduler owns persistence.
package poller

import (
	"context"
	"time"

	"github.com/mramin786/jboss-monitor/internal/dmr"
	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/jbosscli"
	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// Executor is the slice of the command gateway a poll needs.
type Executor interface {
	Execute(ctx context.Context, target jbosscli.Target, command string) (jbosscli.Result, error)
}

// Poller checks single hosts through a shared command gateway.
type Poller struct {
	exec Executor
	log  logger.Logger
	now  func() time.Time
}

// New creates a Poller. A nil logger defaults to the package default.
func New(exec Executor, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Default()
	}
	return &Poller{exec: exec, log: log, now: time.Now}
}

// Poll produces the next status record for one host. The previous record is
// only consulted to compute the changed flag; it is never modified.
//
// The server-state probe decides everything: an unreachable or stopped
// server yields a down record without attempting resource collection. Once
// the server answered, any failure while collecting resources yields an
// error record rather than an error return, so one bad host never aborts a
// fleet cycle.
func (p *Poller) Poll(ctx context.Context, host monitor.Host, cred monitor.Credential, prev monitor.StatusRecord) monitor.StatusRecord {
	target := jbosscli.Target{Host: host.Host, Port: host.Port, Credential: cred}

	if _, err := p.exec.Execute(ctx, target, jbosscli.CommandServerState); err != nil {
		p.log.Warn("host %s (%s) is down: %s", host.ID, host.Host, errors.Detail(err))
		return p.downRecord(prev, err)
	}

	datasources, err := p.collectDatasources(ctx, target)
	if err != nil {
		p.log.Error("host %s: datasource collection failed: %s", host.ID, errors.Detail(err))
		return p.errorRecord(err)
	}

	deployments, err := p.collectDeployments(ctx, target)
	if err != nil {
		p.log.Error("host %s: deployment collection failed: %s", host.ID, errors.Detail(err))
		return p.errorRecord(err)
	}

	now := p.now().UTC()
	changed := prev.InstanceStatus != monitor.StatusUp ||
		!monitor.ResourcesEqual(prev.Datasources, datasources) ||
		!monitor.ResourcesEqual(prev.Deployments, deployments)

	return monitor.StatusRecord{
		InstanceStatus: monitor.StatusUp,
		Datasources:    datasources,
		Deployments:    deployments,
		LastCheck:      &now,
		Changed:        changed,
	}
}

func (p *Poller) collectDatasources(ctx context.Context, target jbosscli.Target) ([]monitor.ResourceStatus, error) {
	result, err := p.exec.Execute(ctx, target, jbosscli.CommandDatasources)
	if err != nil {
		return nil, err
	}
	return dmr.ParseDatasources(result.Value, p.log), nil
}

func (p *Poller) collectDeployments(ctx context.Context, target jbosscli.Target) ([]monitor.ResourceStatus, error) {
	result, err := p.exec.Execute(ctx, target, jbosscli.CommandDeployments)
	if err != nil {
		return nil, err
	}
	return dmr.ParseDeployments(result.Value, p.log), nil
}

// downRecord marks the host unreachable. Resource lists are emptied rather
// than carried over so the record reflects what was actually observed; the
// changed flag fires only when the host was not already down.
func (p *Poller) downRecord(prev monitor.StatusRecord, cause error) monitor.StatusRecord {
	now := p.now().UTC()
	return monitor.StatusRecord{
		InstanceStatus: monitor.StatusDown,
		Datasources:    []monitor.ResourceStatus{},
		Deployments:    []monitor.ResourceStatus{},
		LastCheck:      &now,
		Changed:        prev.InstanceStatus != monitor.StatusDown,
		Error:          errors.Detail(cause),
	}
}

// errorRecord marks a poll that failed after the server answered its probe.
// Always flagged changed so operators notice a host flapping between up and
// error.
func (p *Poller) errorRecord(cause error) monitor.StatusRecord {
	now := p.now().UTC()
	return monitor.StatusRecord{
		InstanceStatus: monitor.StatusError,
		Datasources:    []monitor.ResourceStatus{},
		Deployments:    []monitor.ResourceStatus{},
		LastCheck:      &now,
		Changed:        true,
		Error:          errors.Detail(cause),
	}
}
