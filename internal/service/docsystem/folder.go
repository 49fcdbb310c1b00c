package docsystem

import (
	"context"
	"fmt"
	"sort"

	"storm/internal/domain"
	models "storm/internal/domain/models/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
)

// CreateFolder creates a new, empty folder. An unknown ParentID leaves the
// folder at root.
func (s *Store) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := validateFolderName(req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	folder := &models.Folder{
		ID:        models.NewFolderID(),
		Name:      name,
		FileIDs:   []string{},
		FolderIDs: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.folders[folder.ID] = folder
	s.reparentFolder(folder, s.resolveParent(req.ParentID))
	s.structureChanged(ctx, "create_folder")

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_folder_id", folder.ParentID,
	)

	return cloneFolder(folder), nil
}

// FindFolderByID returns a copy of the folder; ok is false when it does not exist
func (s *Store) FindFolderByID(id string) (*models.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, false
	}
	return cloneFolder(folder), true
}

// RenameFolder renames a folder
func (s *Store) RenameFolder(ctx context.Context, id, newName string) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, folderNotFound(id)
	}

	name, err := validateFolderName(newName)
	if err != nil {
		return nil, err
	}

	folder.Name = name
	folder.UpdatedAt = s.now()
	s.structureChanged(ctx, "rename_folder")

	s.logger.Info("folder renamed", "id", id, "name", folder.Name)

	return cloneFolder(folder), nil
}

// MoveFolder reparents a folder. A nil or empty parentID moves it to root.
// Moving a folder into itself or one of its descendants fails.
func (s *Store) MoveFolder(ctx context.Context, id string, parentID *string) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, folderNotFound(id)
	}

	target, err := s.requireParent(parentID)
	if err != nil {
		return nil, err
	}

	// Prevent circular references
	if target != nil && s.isSelfOrDescendant(*target, id) {
		return nil, fmt.Errorf("%w: cannot move folder into itself or one of its subfolders", domain.ErrValidation)
	}

	s.reparentFolder(folder, target)
	folder.UpdatedAt = s.now()
	s.structureChanged(ctx, "move_folder")

	s.logger.Debug("folder moved", "id", id, "parent_folder_id", folder.ParentID)

	return cloneFolder(folder), nil
}

// isSelfOrDescendant walks up from candidate and reports whether it meets
// ancestorID. The walk is bounded so a corrupted graph cannot loop.
func (s *Store) isSelfOrDescendant(candidate, ancestorID string) bool {
	current := &candidate
	for steps := 0; current != nil && steps <= len(s.folders); steps++ {
		if *current == ancestorID {
			return true
		}
		folder, ok := s.folders[*current]
		if !ok {
			return false
		}
		current = folder.ParentID
	}
	return false
}

// DeleteFolder deletes a folder and all its contents recursively. Children
// go first, through the single-file and single-folder deletion paths, so
// tabs are closed and no child ever points at a removed folder.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteFolderLocked(ctx, id)
}

func (s *Store) deleteFolderLocked(ctx context.Context, id string) error {
	folder, ok := s.folders[id]
	if !ok {
		return folderNotFound(id)
	}

	// Copy: deletions shrink the child lists while we iterate
	for _, fileID := range append([]string{}, folder.FileIDs...) {
		if err := s.deleteFileLocked(ctx, fileID); err != nil {
			return fmt.Errorf("failed to delete file %q: %w", fileID, err)
		}
	}
	for _, childID := range append([]string{}, folder.FolderIDs...) {
		if err := s.deleteFolderLocked(ctx, childID); err != nil {
			return fmt.Errorf("failed to delete child folder %q: %w", childID, err)
		}
	}

	s.reparentFolder(folder, nil)
	delete(s.folders, id)
	s.structureChanged(ctx, "delete_folder")

	s.logger.Info("folder deleted", "id", id, "name", folder.Name)

	return nil
}

// ListFolders returns copies of all folders sorted by name
func (s *Store) ListFolders() []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Folder, 0, len(s.folders))
	for _, folder := range s.folders {
		out = append(out, *cloneFolder(folder))
	}
	sort.Slice(out, func(i, j int) bool {
		return nameLess(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out
}
