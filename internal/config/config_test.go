package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "STORAGE_BACKEND", "STATE_DIR", "BACKUP_COUNT", "TABLE_PREFIX", "SNAPSHOT_KEY", "DEBUG", "JWKS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.StorageBackend != StorageFile {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageFile)
	}
	if cfg.BackupCount != 5 {
		t.Errorf("BackupCount = %d, want 5", cfg.BackupCount)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if cfg.SnapshotKey != DefaultSnapshotKey {
		t.Errorf("SnapshotKey = %q, want %q", cfg.SnapshotKey, DefaultSnapshotKey)
	}
	if !cfg.Debug {
		t.Error("Debug should default to true in dev")
	}
	if cfg.JWKSURL != "" {
		t.Errorf("JWKSURL = %q, want empty", cfg.JWKSURL)
	}
}

func TestLoadProd(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEBUG", "")
	t.Setenv("BACKUP_COUNT", "not-a-number")

	cfg := Load()

	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q, want prod_", cfg.TablePrefix)
	}
	if cfg.Debug {
		t.Error("Debug should default to false in prod")
	}
	if cfg.BackupCount != 5 {
		t.Errorf("invalid BACKUP_COUNT should fall back to default, got %d", cfg.BackupCount)
	}
}

func TestSetupLogFileKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	old := []string{"storm-2020-01-01T00-00-00.log", "storm-2020-01-02T00-00-00.log", "storm-2020-01-03T00-00-00.log"}
	for _, name := range old {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("seed log file: %v", err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile() failed: %v", err)
	}
	defer f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "storm-*.log"))
	if len(files) != 2 {
		t.Fatalf("expected 2 log files after cleanup, got %d: %v", len(files), files)
	}
	if _, err := os.Stat(filepath.Join(dir, old[0])); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
}
