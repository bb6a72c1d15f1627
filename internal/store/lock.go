package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mramin786/jboss-monitor/internal/errors"
)

// lockRetryInterval is how often a blocked writer re-attempts acquisition.
const lockRetryInterval = 50 * time.Millisecond

// lockStaleAfter is when a lock file is presumed abandoned (holder crashed
// mid-save) and removed.
const lockStaleAfter = 5 * time.Minute

// lockInfo identifies the lock holder, written into the lock file for
// diagnostics.
type lockInfo struct {
	PID     int       `json:"pid"`
	Host    string    `json:"host"`
	Started time.Time `json:"started"`
}

// fileLock is a cooperative lock scoped to one environment's status file.
// Creation with O_EXCL is the atomic primitive: the writer that creates the
// lock file holds the lock.
type fileLock struct {
	path string
}

// acquireLock attempts to take the lock within timeout. Stale lock files
// are removed and re-contended.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	deadline := time.Now().Add(timeout)

	for {
		if tryLock(path) {
			return &fileLock{path: path}, nil
		}

		if isLockStale(path) {
			// Removal can fail (permissions, path replaced). The deadline
			// check below still bounds the wait either way.
			_ = os.Remove(path)
		}

		if time.Now().After(deadline) {
			return nil, errors.New(errors.ErrStore,
				"Timed out waiting for status file lock",
				"Lock held by: "+lockHolder(path))
		}
		time.Sleep(lockRetryInterval)
	}
}

// tryLock attempts a single atomic acquisition.
func tryLock(path string) bool {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	defer f.Close()

	hostname, _ := os.Hostname()
	info := lockInfo{PID: os.Getpid(), Host: hostname, Started: time.Now()}
	if data, err := json.Marshal(info); err == nil {
		_, _ = f.Write(data)
	}
	return true
}

// release removes the lock file, allowing other writers to acquire it.
func (l *fileLock) release() {
	if l == nil {
		return
	}
	_ = os.Remove(l.path)
}

// isLockStale reports whether the lock file's recorded start time (or,
// failing that, its mtime) is older than the stale threshold.
func isLockStale(path string) bool {
	if data, err := os.ReadFile(path); err == nil {
		var info lockInfo
		if err := json.Unmarshal(data, &info); err == nil && !info.Started.IsZero() {
			return time.Since(info.Started) > lockStaleAfter
		}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(fi.ModTime()) > lockStaleAfter
}

// lockHolder describes who holds the lock, for error messages.
func lockHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%s (pid %d)", info.Host, info.PID)
}
