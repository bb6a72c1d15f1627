// Package store persists one status document per environment as a flat
// JSON file. Writers follow a reload-merge-save discipline guarded by a
// cooperative file lock; readers get self-healing loads that survive a
// corrupted document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

const statusFileName = "status.json"

// Store reads and writes per-environment status documents under a storage
// root. Safe for concurrent use across goroutines and processes sharing the
// same root.
type Store struct {
	dir         string
	lockTimeout time.Duration
	log         logger.Logger
}

// New creates a Store rooted at dir. A nil logger defaults to the package
// default.
func New(dir string, lockTimeout time.Duration, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	return &Store{dir: dir, lockTimeout: lockTimeout, log: log}
}

// EnvironmentPath returns the directory holding one environment's files.
func (s *Store) EnvironmentPath(env monitor.Environment) string {
	return filepath.Join(s.dir, "environments", string(env))
}

func (s *Store) statusPath(env monitor.Environment) string {
	return filepath.Join(s.EnvironmentPath(env), statusFileName)
}

// Load reads the environment's status document. It never fails the caller:
// an absent file yields an empty map, and a corrupted file is backed up
// with a .corrupted suffix and replaced by an empty valid document so the
// only record of the corruption is preserved.
func (s *Store) Load(env monitor.Environment) *StatusMap {
	path := s.statusPath(env)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("reading status file for %s: %v", env, err)
		}
		return NewStatusMap()
	}

	m := NewStatusMap()
	if err := json.Unmarshal(data, m); err != nil {
		s.log.Error("status file for %s is corrupted: %v", env, err)
		s.quarantine(path, data)
		return NewStatusMap()
	}
	return m
}

// quarantine backs up a corrupted status file and replaces it with an
// empty valid document.
func (s *Store) quarantine(path string, data []byte) {
	backup := path + ".corrupted"
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		s.log.Error("backing up corrupted status file: %v", err)
		return
	}
	s.log.Info("backed up corrupted status file to %s", backup)

	if err := writeFileAtomic(path, []byte("{}")); err != nil {
		s.log.Error("resetting corrupted status file: %v", err)
	}
}

// Save writes the environment's status document, stamping the last-updated
// metadata key so every save is independently observable. The write is
// guarded by a cooperative file lock bounded by the store's lock timeout;
// on timeout the write proceeds unlocked rather than failing the caller.
// That fallback is last-writer-wins: two writers racing past the timeout
// can lose an update, but the document itself stays valid because writes
// are atomic replacements.
func (s *Store) Save(env monitor.Environment, m *StatusMap) error {
	lock := s.lockEnvironment(env)
	defer lock.release()
	return s.write(env, m)
}

// Merge applies records into the current on-disk document and saves the
// result. The lock is held across reload-merge-save, so hosts updated by a
// concurrent writer since the caller's own read are not clobbered.
func (s *Store) Merge(env monitor.Environment, records map[string]monitor.StatusRecord) error {
	lock := s.lockEnvironment(env)
	defer lock.release()

	current := s.Load(env)
	for id, rec := range records {
		current.Set(id, rec)
	}
	return s.write(env, current)
}

// SetMeta updates one metadata key under the write lock. Used for cycle
// markers such as the refresh-in-progress flag.
func (s *Store) SetMeta(env monitor.Environment, key, value string) error {
	lock := s.lockEnvironment(env)
	defer lock.release()

	current := s.Load(env)
	if value == "" {
		delete(current.Meta, key)
	} else {
		current.Meta[key] = value
	}
	return s.write(env, current)
}

// lockEnvironment acquires the environment's file lock, or returns a nil
// lock after logging when the timeout elapses. Calling release on a nil
// lock is a no-op, so callers proceed unlocked past a timeout.
func (s *Store) lockEnvironment(env monitor.Environment) *fileLock {
	path := s.statusPath(env)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.log.Error("creating storage directory for %s: %v", env, err)
		return nil
	}

	lock, err := acquireLock(path+".lock", s.lockTimeout)
	if err != nil {
		s.log.Error("lock not acquired for %s within %s, writing unlocked: %v",
			env, s.lockTimeout, err)
		return nil
	}
	return lock
}

// write encodes and atomically replaces the environment's status file,
// stamping the last-updated metadata key.
func (s *Store) write(env monitor.Environment, m *StatusMap) error {
	path := s.statusPath(env)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot create storage directory for %s", env), "")
	}

	m.Meta[MetaLastUpdated] = time.Now().Format(time.RFC3339Nano)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot encode status document for %s", env), "")
	}

	if err := writeFileAtomic(path, data); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Cannot write status file for %s", env), "Check disk space and permissions")
	}
	s.log.Debug("status file updated for %s", env)
	return nil
}

// writeFileAtomic writes data via a temp file and rename so readers never
// observe a partially written document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".status-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
