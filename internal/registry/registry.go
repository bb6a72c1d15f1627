// Package registry reads the host and credential files maintained by the
// management frontend. The polling engine treats hosts as read-only; the
// only write exposed here is the credential bootstrap operators use before
// the first cycle.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/monitor"
	"github.com/mramin786/jboss-monitor/internal/store"
)

const (
	hostsFileName       = "hosts.json"
	credentialsFileName = "system_credentials.json"
)

// Credential environment variables, checked before the credentials file.
const (
	EnvProdUsername    = "PROD_JBOSS_USERNAME"
	EnvProdPassword    = "PROD_JBOSS_PASSWORD"
	EnvNonProdUsername = "NONPROD_JBOSS_USERNAME"
	EnvNonProdPassword = "NONPROD_JBOSS_PASSWORD"
)

// Registry resolves hosts and credentials for an environment under the
// shared storage root.
type Registry struct {
	dir string
}

// New creates a Registry rooted at the same storage directory the status
// store uses.
func New(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) environmentPath(env monitor.Environment) string {
	return filepath.Join(r.dir, "environments", string(env))
}

func (r *Registry) hostsPath(env monitor.Environment) string {
	return filepath.Join(r.environmentPath(env), hostsFileName)
}

func (r *Registry) credentialsPath(env monitor.Environment) string {
	return filepath.Join(r.environmentPath(env), credentialsFileName)
}

// Hosts loads the environment's host list. An absent file is an empty
// fleet, not an error. Host identifiers starting with an underscore are
// rejected because they would collide with the status document's metadata
// namespace.
func (r *Registry) Hosts(env monitor.Environment) ([]monitor.Host, error) {
	if !env.Valid() {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown environment %q", env),
			"Valid environments: production, non_production")
	}

	data, err := os.ReadFile(r.hostsPath(env))
	if err != nil {
		if os.IsNotExist(err) {
			return []monitor.Host{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot read hosts file for %s", env), "")
	}

	var hosts []monitor.Host
	if err := json.Unmarshal(data, &hosts); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Hosts file for %s is not valid JSON", env),
			"Fix or remove "+r.hostsPath(env))
	}

	for _, h := range hosts {
		if strings.HasPrefix(h.ID, store.MetaPrefix) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Host id %q is reserved", h.ID),
				"Host identifiers must not start with an underscore")
		}
	}

	sort.SliceStable(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })
	return hosts, nil
}

// Credentials resolves the monitoring credential for an environment.
// Environment variables win over the credentials file, so operators can
// inject credentials without writing them to disk. A missing credential is
// reported as found=false, not as an error: the scheduler skips the
// environment with a warning.
func (r *Registry) Credentials(env monitor.Environment) (monitor.Credential, bool, error) {
	if !env.Valid() {
		return monitor.Credential{}, false, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown environment %q", env),
			"Valid environments: production, non_production")
	}

	if cred := credentialFromEnv(env); cred.Valid() {
		return cred, true, nil
	}

	data, err := os.ReadFile(r.credentialsPath(env))
	if err != nil {
		if os.IsNotExist(err) {
			return monitor.Credential{}, false, nil
		}
		return monitor.Credential{}, false, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot read credentials file for %s", env), "")
	}

	var cred monitor.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return monitor.Credential{}, false, errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Credentials file for %s is not valid JSON", env), "")
	}
	if !cred.Valid() {
		return monitor.Credential{}, false, nil
	}
	return cred, true, nil
}

// SetCredentials writes the environment's credentials file with a
// restrictive mode. Used by the credentials command to bootstrap an
// environment.
func (r *Registry) SetCredentials(env monitor.Environment, cred monitor.Credential) error {
	if !env.Valid() {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown environment %q", env),
			"Valid environments: production, non_production")
	}
	if !cred.Valid() {
		return errors.New(errors.ErrConfig,
			"Username and password are both required", "")
	}

	path := r.credentialsPath(env)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot create storage directory for %s", env), "")
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Cannot encode credentials", "")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot write credentials file for %s", env), "")
	}
	return nil
}

func credentialFromEnv(env monitor.Environment) monitor.Credential {
	if env == monitor.Production {
		return monitor.Credential{
			Username: os.Getenv(EnvProdUsername),
			Password: os.Getenv(EnvProdPassword),
		}
	}
	return monitor.Credential{
		Username: os.Getenv(EnvNonProdUsername),
		Password: os.Getenv(EnvNonProdPassword),
	}
}
