// Package backup writes scheduled snapshots of the database so an archive
// can be rebuilt after disk loss. Backups use Badger's native stream format.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "backup-"
	fileSuffix = ".badger"
)

// Service creates and prunes database backups in a directory.
type Service struct {
	store  backupSource
	dir    string
	keep   int
	logger *slog.Logger
}

// backupSource matches store.Store's backup surface.
type backupSource interface {
	Backup(w io.Writer) (uint64, error)
}

// New creates a backup service. keep bounds how many backup files are
// retained; older ones are pruned after each successful backup.
func New(store backupSource, dir string, keep int, logger *slog.Logger) *Service {
	if keep <= 0 {
		keep = 7
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, dir: dir, keep: keep, logger: logger}
}

// Create writes one full backup and prunes old files. Returns the path of
// the new backup.
func (s *Service) Create(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02-150405")
	path := filepath.Join(s.dir, filePrefix+timestamp+fileSuffix)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600) //#nosec G304 -- path built from configured dir
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	version, err := s.store.Backup(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close backup file: %w", err)
	}

	s.logger.Info("Backup written", "path", path, "version", version)

	if err := s.prune(); err != nil {
		s.logger.Warn("Backup prune failed", "error", err)
	}

	return path, nil
}

// List returns existing backup paths, newest first.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			paths = append(paths, filepath.Join(s.dir, name))
		}
	}

	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// prune removes backups beyond the retention count, oldest first.
func (s *Service) prune() error {
	paths, err := s.List()
	if err != nil {
		return err
	}

	for _, path := range paths[min(s.keep, len(paths)):] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old backup: %w", err)
		}
		s.logger.Info("Old backup removed", "path", path)
	}
	return nil
}
