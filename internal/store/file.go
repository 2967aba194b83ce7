package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// FileStore implements Store on a single CSV file that spreadsheet tools can
// open directly. Every write rewrites the whole file: the new content goes to
// a temp file in the same directory which then replaces the ledger with a
// rename, so a crash never leaves a half-written ledger behind.
//
// The mutex serialises read-modify-write within one process. Separate
// processes sharing a file are not coordinated.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the CSV file at path. The file is
// created on first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Path returns the ledger file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(ctx context.Context, records []model.LedgerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if errors.Is(err, ErrCorrupt) {
		// Keep the unreadable file around instead of silently overwriting it.
		backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405"))
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return fmt.Errorf("move corrupt ledger aside: %w", rerr)
		}
		slog.Warn("corrupt ledger moved aside", "path", s.path, "backup", backup, "err", err)
		existing = nil
	} else if err != nil {
		return err
	}

	all := make([]model.LedgerRecord, 0, len(existing)+len(records))
	all = append(all, existing...)
	all = append(all, records...)
	return s.replace(all)
}

func (s *FileStore) ReadAll(ctx context.Context) ([]model.LedgerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Purge(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("purge ledger: %w", err)
	}
	return nil
}

// load reads the whole file. Must be called with mu held.
func (s *FileStore) load() ([]model.LedgerRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// replace atomically swaps the ledger file for one holding records.
// Must be called with mu held.
func (s *FileStore) replace(records []model.LedgerRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
