package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), 2*time.Second, logger.Noop())
}

func upRecord(name string) monitor.StatusRecord {
	now := time.Now().UTC()
	return monitor.StatusRecord{
		InstanceStatus: monitor.StatusUp,
		Datasources: []monitor.ResourceStatus{
			{Name: name + "DS", Type: monitor.TypeDataSource, Status: monitor.StatusUp},
		},
		Deployments: []monitor.ResourceStatus{
			{Name: name + ".war", Type: "war", Status: monitor.StatusUp},
		},
		LastCheck: &now,
	}
}

func TestLoadAbsentFileReturnsEmptyMap(t *testing.T) {
	s := newTestStore(t)

	m := s.Load(monitor.Production)

	require.NotNil(t, m)
	assert.Empty(t, m.Records)
	assert.Empty(t, m.Meta)
}

func TestSaveStampsLastUpdated(t *testing.T) {
	s := newTestStore(t)

	m := NewStatusMap()
	m.Set("jboss-prod-01", upRecord("App"))
	require.NoError(t, s.Save(monitor.Production, m))

	loaded := s.Load(monitor.Production)
	stamp, ok := loaded.Meta[MetaLastUpdated]
	require.True(t, ok, "save must stamp %s", MetaLastUpdated)

	parsed, err := time.Parse(time.RFC3339Nano, stamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}

func TestSaveRoundTripsRecords(t *testing.T) {
	s := newTestStore(t)

	m := NewStatusMap()
	m.Set("jboss-prod-01", upRecord("App"))
	m.Set("jboss-prod-02", monitor.StatusRecord{
		InstanceStatus: monitor.StatusDown,
		Datasources:    []monitor.ResourceStatus{},
		Deployments:    []monitor.ResourceStatus{},
		Error:          "CONNECT: Cannot reach controller",
	})
	require.NoError(t, s.Save(monitor.Production, m))

	loaded := s.Load(monitor.Production)
	assert.Equal(t, []string{"jboss-prod-01", "jboss-prod-02"}, loaded.HostIDs())

	rec, ok := loaded.Get("jboss-prod-01")
	require.True(t, ok)
	assert.Equal(t, monitor.StatusUp, rec.InstanceStatus)
	require.Len(t, rec.Datasources, 1)
	assert.Equal(t, "AppDS", rec.Datasources[0].Name)

	down, ok := loaded.Get("jboss-prod-02")
	require.True(t, ok)
	assert.Equal(t, monitor.StatusDown, down.InstanceStatus)
	assert.Contains(t, down.Error, "CONNECT")
}

func TestLoadCorruptedFileQuarantinesAndHeals(t *testing.T) {
	s := newTestStore(t)
	path := s.statusPath(monitor.Production)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"jboss-prod-01": {truncated`), 0o644))

	m := s.Load(monitor.Production)
	assert.Empty(t, m.Records)

	backup, err := os.ReadFile(path + ".corrupted")
	require.NoError(t, err, "corrupted content must be preserved")
	assert.Contains(t, string(backup), "truncated")

	healed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(healed))
}

func TestMergePreservesConcurrentWrites(t *testing.T) {
	s := newTestStore(t)

	first := NewStatusMap()
	first.Set("jboss-prod-01", upRecord("App"))
	require.NoError(t, s.Save(monitor.Production, first))

	// A merge that only knows about a second host must not clobber the
	// first one.
	require.NoError(t, s.Merge(monitor.Production, map[string]monitor.StatusRecord{
		"jboss-prod-02": upRecord("Report"),
	}))

	loaded := s.Load(monitor.Production)
	assert.Equal(t, []string{"jboss-prod-01", "jboss-prod-02"}, loaded.HostIDs())
}

func TestMergeOverwritesExistingHost(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Merge(monitor.Production, map[string]monitor.StatusRecord{
		"jboss-prod-01": upRecord("App"),
	}))
	require.NoError(t, s.Merge(monitor.Production, map[string]monitor.StatusRecord{
		"jboss-prod-01": {
			InstanceStatus: monitor.StatusDown,
			Datasources:    []monitor.ResourceStatus{},
			Deployments:    []monitor.ResourceStatus{},
		},
	}))

	rec, ok := s.Load(monitor.Production).Get("jboss-prod-01")
	require.True(t, ok)
	assert.Equal(t, monitor.StatusDown, rec.InstanceStatus)
}

func TestConcurrentSavesLeaveValidDocument(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	hosts := []string{"jboss-prod-01", "jboss-prod-02", "jboss-prod-03", "jboss-prod-04"}
	for _, id := range hosts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.Merge(monitor.Production, map[string]monitor.StatusRecord{
				id: upRecord(id),
			})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	data, err := os.ReadFile(s.statusPath(monitor.Production))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc), "document must stay parsable under contention")

	loaded := s.Load(monitor.Production)
	assert.Equal(t, hosts, loaded.HostIDs(), "locked merges must not lose updates")
}

func TestSaveProceedsUnlockedAfterTimeout(t *testing.T) {
	s := New(t.TempDir(), 100*time.Millisecond, logger.Noop())
	path := s.statusPath(monitor.Production)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	// Hold the lock with a fresh timestamp so it is contended, not stale.
	held, err := acquireLock(path+".lock", time.Second)
	require.NoError(t, err)
	defer held.release()

	m := NewStatusMap()
	m.Set("jboss-prod-01", upRecord("App"))
	require.NoError(t, s.Save(monitor.Production, m))

	loaded := s.Load(monitor.Production)
	_, ok := loaded.Get("jboss-prod-01")
	assert.True(t, ok, "timeout must degrade to an unlocked write, not a dropped one")
}

func TestEnvironmentsAreIsolated(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Merge(monitor.Production, map[string]monitor.StatusRecord{
		"jboss-prod-01": upRecord("App"),
	}))

	nonProd := s.Load(monitor.NonProduction)
	assert.Empty(t, nonProd.Records)
}

func TestStatusMapMarshalSeparatesMetadata(t *testing.T) {
	m := NewStatusMap()
	m.Set("jboss-prod-01", upRecord("App"))
	m.Meta[MetaLastUpdated] = "2026-08-25T10:00:00Z"
	m.Meta[MetaInProgress] = "true"

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Contains(t, flat, "jboss-prod-01")
	assert.Contains(t, flat, MetaLastUpdated)
	assert.Contains(t, flat, MetaInProgress)

	back := NewStatusMap()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Len(t, back.Records, 1)
	assert.Equal(t, "true", back.Meta[MetaInProgress])
}

func TestStatusMapRejectsMetadataCollision(t *testing.T) {
	m := NewStatusMap()
	m.Set("_sneaky-host", upRecord("App"))

	_, err := json.Marshal(m)
	assert.Error(t, err, "host ids must never enter the metadata namespace")
}

func TestLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json.lock")

	first, err := acquireLock(path, time.Second)
	require.NoError(t, err)

	_, err = acquireLock(path, 150*time.Millisecond)
	require.Error(t, err, "second acquisition must time out while held")

	first.release()

	second, err := acquireLock(path, time.Second)
	require.NoError(t, err)
	second.release()
}

func TestStaleLockIsReclaimed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json.lock")

	info := lockInfo{PID: 99999, Host: "dead-host", Started: time.Now().Add(-lockStaleAfter - time.Minute)}
	data, err := json.Marshal(info)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	lock, err := acquireLock(path, time.Second)
	require.NoError(t, err, "a lock older than the stale threshold must be reclaimed")
	lock.release()
}

func TestAcquireLockHonorsDeadlineWhenStaleRemovalFails(t *testing.T) {
	// A stale lock that cannot be removed: a non-empty directory defeats
	// os.Remove, and its old mtime marks it stale on every pass.
	path := filepath.Join(t.TempDir(), "status.json.lock")
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "pin"), []byte("x"), 0o644))
	old := time.Now().Add(-lockStaleAfter - time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))

	done := make(chan error, 1)
	go func() {
		_, err := acquireLock(path, 300*time.Millisecond)
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err, "acquisition must fail once the deadline passes")
	case <-time.After(3 * time.Second):
		t.Fatal("acquireLock kept retrying past its deadline")
	}
}
