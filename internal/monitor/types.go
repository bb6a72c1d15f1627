// Package monitor defines the domain model shared by the polling engine:
// environments, hosts, credentials, and the per-host status records the
// fleet scheduler persists.
package monitor

import (
	"strings"
	"time"
)

// Environment identifies one of the two monitored fleets.
type Environment string

const (
	Production    Environment = "production"
	NonProduction Environment = "non_production"
)

// Environments lists all known environments in scheduling order.
var Environments = []Environment{Production, NonProduction}

// Valid reports whether e names a known environment.
func (e Environment) Valid() bool {
	return e == Production || e == NonProduction
}

// Instance status values for a polled host.
const (
	StatusUnknown = "unknown"
	StatusUp      = "up"
	StatusDown    = "down"
	StatusError   = "error"
)

// Resource type tags.
const (
	TypeDataSource   = "data-source"
	TypeXADataSource = "xa-data-source"
)

// Host describes one monitored application-server instance. Hosts are owned
// by the external registry and are read-only to the polling engine.
type Host struct {
	ID   string `json:"id"`
	Host string `json:"host"`
	Port int    `json:"port"`
	Name string `json:"instance,omitempty"`
}

// Credential is a username/password pair scoped to one environment.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Valid reports whether both fields are present.
func (c Credential) Valid() bool {
	return c.Username != "" && c.Password != ""
}

// ResourceStatus is the canonical record for one datasource or deployment.
// Immutable value; a fresh list is produced on every poll.
type ResourceStatus struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// StatusRecord is the full status snapshot for one host. A poll either
// produces a complete new record or an error record; records are never
// merged field-by-field.
type StatusRecord struct {
	InstanceStatus string           `json:"instance_status"`
	Datasources    []ResourceStatus `json:"datasources"`
	Deployments    []ResourceStatus `json:"deployments"`
	LastCheck      *time.Time       `json:"last_check"`
	Changed        bool             `json:"changed,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// UnknownRecord returns the placeholder record for a host that has never
// been polled.
func UnknownRecord() StatusRecord {
	return StatusRecord{
		InstanceStatus: StatusUnknown,
		Datasources:    []ResourceStatus{},
		Deployments:    []ResourceStatus{},
	}
}

// HostStatus pairs a registry host with its current status record. This is
// the shape the reporting and dashboard collaborators consume.
type HostStatus struct {
	Host
	Status StatusRecord `json:"status"`
}

// DeploymentType infers a deployment's type tag from its file extension
// (war, ear, jar, ...). Names without an extension are tagged "unknown".
func DeploymentType(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "unknown"
	}
	return strings.ToLower(name[idx+1:])
}

// ResourcesEqual reports whether two canonical resource lists describe the
// same set of names with the same statuses. Order does not matter; a name
// added or removed, or any status flip, makes the lists unequal.
func ResourcesEqual(old, new []ResourceStatus) bool {
	if len(old) != len(new) {
		return false
	}
	prev := make(map[string]string, len(old))
	for _, r := range old {
		prev[r.Name] = r.Status
	}
	for _, r := range new {
		status, ok := prev[r.Name]
		if !ok || status != r.Status {
			return false
		}
	}
	return true
}
