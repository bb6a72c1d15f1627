package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

func TestParseEnvironment(t *testing.T) {
	env, err := parseEnvironment("production")
	require.NoError(t, err)
	assert.Equal(t, monitor.Production, env)

	env, err = parseEnvironment("non_production")
	require.NoError(t, err)
	assert.Equal(t, monitor.NonProduction, env)

	_, err = parseEnvironment("staging")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "v1.2.3", formatVersion("v1.2.3"))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 5))
}

func TestRenderStatusEmptyFleet(t *testing.T) {
	out := renderStatus(monitor.Production, nil, "", false)
	assert.Contains(t, out, "no hosts configured")
}

func TestRenderStatus(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	statuses := []monitor.HostStatus{
		{
			Host: monitor.Host{ID: "abc123", Host: "jboss-prod-01", Port: 9990, Name: "billing"},
			Status: monitor.StatusRecord{
				InstanceStatus: monitor.StatusUp,
				Datasources: []monitor.ResourceStatus{
					{Name: "AppDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
				},
				Deployments: []monitor.ResourceStatus{
					{Name: "app.war", Type: "war", Status: monitor.StatusUp},
				},
				LastCheck: &now,
			},
		},
		{
			Host:   monitor.Host{ID: "def456", Host: "jboss-prod-02", Port: 9990},
			Status: monitor.UnknownRecord(),
		},
		{
			Host: monitor.Host{ID: "ghi789", Host: "jboss-prod-03", Port: 9990},
			Status: monitor.StatusRecord{
				InstanceStatus: monitor.StatusDown,
				Datasources:    []monitor.ResourceStatus{},
				Deployments:    []monitor.ResourceStatus{},
				Error:          "CONNECT: Cannot reach controller",
			},
		},
	}

	out := renderStatus(monitor.Production, statuses, "2026-08-25T10:00:05Z", false)

	assert.Contains(t, out, "production (3 hosts)")
	assert.Contains(t, out, "last updated 2026-08-25T10:00:05Z")
	assert.Contains(t, out, "billing (abc123)")
	assert.Contains(t, out, "unknown")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "CONNECT: Cannot reach controller")
	assert.NotContains(t, out, "AppDS", "resources hidden without --verbose")
}

func TestRenderStatusVerbose(t *testing.T) {
	statuses := []monitor.HostStatus{
		{
			Host: monitor.Host{ID: "abc123", Host: "jboss-prod-01", Port: 9990},
			Status: monitor.StatusRecord{
				InstanceStatus: monitor.StatusUp,
				Datasources: []monitor.ResourceStatus{
					{Name: "AppDS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
					{Name: "OrdersXA", Type: monitor.TypeXADataSource, Status: monitor.StatusDown},
				},
				Deployments: []monitor.ResourceStatus{
					{Name: "app.war", Type: "war", Status: monitor.StatusUp},
				},
			},
		},
	}

	out := renderStatus(monitor.Production, statuses, "", true)

	assert.Contains(t, out, "AppDS")
	assert.Contains(t, out, "OrdersXA")
	assert.Contains(t, out, "xa-data-source")
	assert.Contains(t, out, "app.war")
}

func TestSortedIDs(t *testing.T) {
	records := map[string]monitor.StatusRecord{
		"c": {}, "a": {}, "b": {},
	}
	assert.Equal(t, []string{"a", "b", "c"}, sortedIDs(records))
}

// End-to-end: a simulated check against a real storage directory.
func TestBuildAppAndCheckSimulated(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "jboss-monitor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
storage_dir: `+filepath.Join(dir, "storage")+`
workers: 2
cli:
  simulate: true
`), 0o644))

	envDir := filepath.Join(dir, "storage", "environments", "production")
	require.NoError(t, os.MkdirAll(envDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "hosts.json"), []byte(`[
		{"id": "h1", "host": "jboss-prod-01.example.com", "port": 9990},
		{"id": "h2", "host": "jboss-prod-02.example.com", "port": 9990}
	]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "system_credentials.json"),
		[]byte(`{"username": "monitor", "password": "s3cret"}`), 0o600))

	configFlag = cfgPath
	defer func() { configFlag = "" }()

	a, err := buildApp()
	require.NoError(t, err)

	records, err := a.scheduler.CheckAll(context.Background(), monitor.Production)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, monitor.StatusUp, rec.InstanceStatus)
		assert.NotEmpty(t, rec.Datasources)
	}

	statuses, err := a.scheduler.GetStatus(monitor.Production)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, monitor.StatusUp, statuses[0].Status.InstanceStatus)
}
