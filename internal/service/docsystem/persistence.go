package docsystem

import (
	"context"
	"errors"
	"fmt"

	models "storm/internal/domain/models/docsystem"
	docsysRepo "storm/internal/domain/repositories/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/seed"
)

// LoadFileSystem replaces the in-memory state with the persisted snapshot.
// A missing, corrupt or inconsistent snapshot is treated as "no prior
// state": the starter files are created and saved. When the store cannot be
// read at all the starter files are kept in memory only and writes are held
// back, so the unread snapshot is never overwritten. Tabs are reset.
func (s *Store) LoadFileSystem(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tabs = nil
	s.activeID = ""
	s.writesHeld = nil

	snap, err := s.loadSnapshot(ctx)
	switch {
	case err == nil:
	case errors.Is(err, docsysRepo.ErrCorruptSnapshot):
		s.logger.Warn("persisted file system unusable, starting from defaults", "error", err)
		snap = nil
	default:
		s.logger.Error("failed to read persisted file system, holding writes", "error", err)
		s.writesHeld = err
		snap = nil
	}

	if snap != nil {
		s.install(snap)
		if err := s.checkConsistencyLocked(); err != nil {
			s.logger.Warn("persisted file system inconsistent, starting from defaults", "error", err)
			snap = nil
		}
	}

	if snap == nil {
		s.files = make(map[string]*models.File)
		s.folders = make(map[string]*models.Folder)
		s.createStarterFiles()
		s.persist(ctx, "load_defaults")
	}

	s.logger.Info("file system loaded",
		"file_count", len(s.files),
		"folder_count", len(s.folders),
		"from_snapshot", snap != nil,
		"writes_held", s.writesHeld != nil,
	)

	s.notifier.RenderFileTree(s.treeLocked())
	s.notifier.RenderTabs(s.tabsLocked())
}

func (s *Store) loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if s.gateway == nil {
		return nil, nil
	}
	return s.gateway.Load(ctx)
}

// SaveFileSystem writes the whole file system, overwriting any prior
// snapshot. Unlike the implicit saves after each mutation, the error is
// returned to the caller. It fails with ErrWritesHeld until a
// LoadFileSystem has read the store successfully.
func (s *Store) SaveFileSystem(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway == nil {
		return nil
	}
	if s.writesHeld != nil {
		return fmt.Errorf("%w: %v", ErrWritesHeld, s.writesHeld)
	}
	return s.gateway.Save(ctx, s.snapshotLocked())
}

// Snapshot returns a copy of the current state in persisted form
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Store) install(snap *models.Snapshot) {
	s.files = make(map[string]*models.File, len(snap.Files))
	s.folders = make(map[string]*models.Folder, len(snap.Folders))

	for i := range snap.Files {
		s.files[snap.Files[i].ID] = cloneFile(&snap.Files[i])
	}
	for i := range snap.Folders {
		s.folders[snap.Folders[i].ID] = cloneFolder(&snap.Folders[i])
	}
}

// createStarterFiles seeds the fixed default file set. It does not persist.
func (s *Store) createStarterFiles() {
	starters, err := seed.StarterFiles()
	if err != nil {
		s.logger.Error("failed to load starter files", "error", err)
		return
	}

	for _, starter := range starters {
		if _, err := s.createFileLocked(&docsysSvc.CreateFileRequest{
			Name:    starter.Name,
			Content: starter.Content,
		}); err != nil {
			s.logger.Warn("skipping starter file", "name", starter.Name, "error", err)
		}
	}
}
