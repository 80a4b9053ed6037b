// Package tmpstore provides request-scoped temporary storage. Each
// request gets a uniquely named directory that the handler removes on
// every exit path; a janitor sweeps directories left behind by crashed
// or killed processes.
package tmpstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	root   string
	maxAge time.Duration
	log    *slog.Logger

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates (or reuses) the root directory for scoped storage.
// Directories older than maxAge are eligible for janitor removal.
func New(root string, maxAge time.Duration, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Store{root: root, maxAge: maxAge, log: log}, nil
}

// Scope is one request's private directory.
type Scope struct {
	dir string
}

// NewScope creates a uniquely named directory under the store root.
func (s *Store) NewScope() (*Scope, error) {
	dir := filepath.Join(s.root, uuid.NewString())

	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scope directory: %w", err)
	}

	return &Scope{dir: dir}, nil
}

// Dir returns the scope's directory path.
func (sc *Scope) Dir() string {
	return sc.dir
}

// Path joins a file name onto the scope directory. Only the base of the
// name is used, so callers cannot escape the scope.
func (sc *Scope) Path(name string) string {
	return filepath.Join(sc.dir, filepath.Base(name))
}

// Close removes the scope directory and everything in it.
func (sc *Scope) Close() error {
	return os.RemoveAll(sc.dir)
}

// StartJanitor launches the background sweep at the given interval.
func (s *Store) StartJanitor(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the janitor and waits for an in-flight sweep to finish.
func (s *Store) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
		s.wg.Wait()
	}
}

// Sweep removes scope directories older than the configured age.
// Failures are logged and never surfaced.
func (s *Store) Sweep() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Warn("tmpstore sweep failed", "root", s.root, "error", err)
		return
	}

	cutoff := time.Now().Add(-s.maxAge)

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		stale := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			s.log.Warn("failed to remove stale scope", "dir", stale, "error", err)
			continue
		}

		s.log.Debug("removed stale scope", "dir", stale)
	}
}

// Purge removes every scope, stale or not. Called on shutdown so no
// request leftovers survive the process.
func (s *Store) Purge() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Warn("tmpstore purge failed", "root", s.root, "error", err)
		return
	}

	for _, entry := range entries {
		_ = os.RemoveAll(filepath.Join(s.root, entry.Name()))
	}
}
