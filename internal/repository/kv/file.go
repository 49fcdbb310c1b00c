package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	docsysRepo "storm/internal/domain/repositories/docsystem"
)

const (
	backupDirName   = ".backups"
	backupTimestamp = "20060102-150405.000000000"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps one JSON file per key in a directory. Every write goes
// to a temp file first and is renamed into place, so a crash mid-write
// leaves the previous value intact. Before each overwrite the old value is
// copied into .backups, keeping the newest backupCount copies per key.
type FileStore struct {
	dir         string
	backupDir   string
	backupCount int
	logger      *slog.Logger
	mu          sync.RWMutex
	now         func() time.Time
}

var _ docsysRepo.KVStore = (*FileStore)(nil)

// NewFileStore creates the state and backup directories if needed.
// backupCount <= 0 disables backups.
func NewFileStore(dir string, backupCount int, logger *slog.Logger) (*FileStore, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory %s: %w", dir, err)
	}

	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", absDir, err)
	}

	backupDir := filepath.Join(absDir, backupDirName)
	if backupCount > 0 {
		if err := os.MkdirAll(backupDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
		}
	}

	logger.Info("file state store ready", "dir", absDir, "backup_count", backupCount)

	return &FileStore{
		dir:         absDir,
		backupDir:   backupDir,
		backupCount: backupCount,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Dir returns the absolute state directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads the value for key. A missing or empty file is "absent".
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Set backs up the current value and atomically replaces it
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(key)

	if err := s.createBackup(key, target); err != nil {
		// Continue with save even if backup fails
		s.logger.Warn("failed to create backup", "key", key, "error", err)
	}

	tmp, err := os.CreateTemp(s.dir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %q: %w", key, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %q: %w", key, err)
	}

	s.logger.Debug("state written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the value for key. Backups are kept.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Backups lists the backup files for key, newest first
func (s *FileStore) Backups(key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listBackups(key)
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// createBackup copies the current value of key into the backup directory
func (s *FileStore) createBackup(key, target string) error {
	if s.backupCount <= 0 {
		return nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	name := fmt.Sprintf("%s-%s.json", sanitizeKey(key), s.now().UTC().Format(backupTimestamp))
	backupPath := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return s.cleanupOldBackups(key)
}

// cleanupOldBackups keeps only the newest backupCount backups of key
func (s *FileStore) cleanupOldBackups(key string) error {
	backups, err := s.listBackups(key)
	if err != nil {
		return err
	}

	for _, old := range backups[min(len(backups), s.backupCount):] {
		if err := os.Remove(old); err != nil {
			s.logger.Warn("failed to remove old backup", "path", old, "error", err)
		}
	}
	return nil
}

func (s *FileStore) listBackups(key string) ([]string, error) {
	prefix := sanitizeKey(key) + "-"

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		// Guard against keys that are prefixes of other keys
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if _, err := time.Parse(backupTimestamp, stamp); err != nil {
			continue
		}
		backups = append(backups, filepath.Join(s.backupDir, name))
	}

	// Timestamps sort lexically; newest first
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// sanitizeKey maps a key onto a safe file name
func sanitizeKey(key string) string {
	safe := unsafeKeyChars.ReplaceAllString(key, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "_" + safe
	}
	return safe
}
