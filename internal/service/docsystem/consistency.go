package docsystem

import (
	"errors"
	"fmt"

	models "storm/internal/domain/models/docsystem"
)

// ErrInconsistent is wrapped by every CheckConsistency violation
var ErrInconsistent = errors.New("file system inconsistent")

// CheckConsistency verifies the structural invariants and returns the first
// violation found:
//   - ids carry the prefix of their kind
//   - every parent reference resolves to an existing folder
//   - each folder's child lists equal the set of entries pointing at it
//   - the folder graph has no cycles
//   - open tabs are unique, refer to existing files, and contain the
//     active file
func (s *Store) CheckConsistency() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checkConsistencyLocked()
}

func (s *Store) checkConsistencyLocked() error {
	wantFiles := make(map[string]map[string]bool, len(s.folders))
	wantFolders := make(map[string]map[string]bool, len(s.folders))
	for id := range s.folders {
		wantFiles[id] = make(map[string]bool)
		wantFolders[id] = make(map[string]bool)
	}

	for id, f := range s.files {
		if id != f.ID || !models.IsFileID(id) {
			return inconsistent("file key %q holds id %q", id, f.ID)
		}
		if f.FolderID != nil {
			children, ok := wantFiles[*f.FolderID]
			if !ok {
				return inconsistent("file %q references missing folder %q", id, *f.FolderID)
			}
			children[id] = true
		}
	}

	for id, folder := range s.folders {
		if id != folder.ID || !models.IsFolderID(id) {
			return inconsistent("folder key %q holds id %q", id, folder.ID)
		}
		if folder.ParentID != nil {
			children, ok := wantFolders[*folder.ParentID]
			if !ok {
				return inconsistent("folder %q references missing parent %q", id, *folder.ParentID)
			}
			children[id] = true
		}
	}

	for id, folder := range s.folders {
		if err := sameSet(folder.FileIDs, wantFiles[id]); err != nil {
			return inconsistent("folder %q file list: %v", id, err)
		}
		if err := sameSet(folder.FolderIDs, wantFolders[id]); err != nil {
			return inconsistent("folder %q folder list: %v", id, err)
		}
	}

	for id, folder := range s.folders {
		steps := 0
		for parent := folder.ParentID; parent != nil; parent = s.folders[*parent].ParentID {
			if *parent == id || steps > len(s.folders) {
				return inconsistent("folder %q is its own ancestor", id)
			}
			steps++
		}
	}

	seen := make(map[string]bool, len(s.tabs))
	for _, tab := range s.tabs {
		if seen[tab.ID] {
			return inconsistent("file %q is open twice", tab.ID)
		}
		seen[tab.ID] = true
		if _, ok := s.files[tab.ID]; !ok {
			return inconsistent("tab %q refers to a missing file", tab.ID)
		}
	}
	if s.activeID != "" && !seen[s.activeID] {
		return inconsistent("active file %q has no tab", s.activeID)
	}

	return nil
}

func sameSet(got []string, want map[string]bool) error {
	seen := make(map[string]bool, len(got))
	for _, id := range got {
		if seen[id] {
			return fmt.Errorf("%q listed twice", id)
		}
		if !want[id] {
			return fmt.Errorf("%q listed but does not point back", id)
		}
		seen[id] = true
	}
	if len(seen) != len(want) {
		for id := range want {
			if !seen[id] {
				return fmt.Errorf("%q points here but is not listed", id)
			}
		}
	}
	return nil
}

func inconsistent(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}

// CheckSnapshot reports whether snap would load as a consistent file system
func CheckSnapshot(snap *models.Snapshot) error {
	s := &Store{}
	s.install(snap)
	return s.checkConsistencyLocked()
}
