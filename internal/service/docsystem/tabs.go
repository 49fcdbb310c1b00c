package docsystem

import (
	"context"

	models "storm/internal/domain/models/docsystem"
)

// OpenFile makes a file the active tab and loads it into the editor. A file
// that is already open is re-activated, never duplicated; new tabs are
// appended so insertion order is display order.
func (s *Store) OpenFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.openFileLocked(id)
}

func (s *Store) openFileLocked(id string) error {
	f, ok := s.files[id]
	if !ok {
		return fileNotFound(id)
	}

	if s.tabIndex(id) < 0 {
		s.tabs = append(s.tabs, models.OpenFile{
			ID:       f.ID,
			Name:     f.Name,
			Language: f.Language,
		})
	}
	s.activeID = id
	s.loadIntoEditor(f)
	s.notifier.RenderTabs(s.tabsLocked())
	s.debugCheck("open_file")

	s.logger.Debug("file opened", "id", id, "tab_count", len(s.tabs))

	return nil
}

// CloseFile closes a tab. When it was active, the tab now at the same
// index (or the last tab, when the closed one was last) becomes active;
// with no tabs left the editor is blanked.
func (s *Store) CloseFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeFileLocked(id)
}

func (s *Store) closeFileLocked(id string) error {
	i := s.tabIndex(id)
	if i < 0 {
		return ErrNotOpen
	}

	s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)

	if s.activeID == id {
		if len(s.tabs) == 0 {
			s.activeID = ""
			s.editor.SetValue("")
		} else {
			next := i
			if next >= len(s.tabs) {
				next = len(s.tabs) - 1
			}
			s.activeID = s.tabs[next].ID
			if f, ok := s.files[s.activeID]; ok {
				s.loadIntoEditor(f)
			}
		}
	}

	s.notifier.RenderTabs(s.tabsLocked())
	s.debugCheck("close_file")

	s.logger.Debug("file closed", "id", id, "active_file_id", s.activeID)

	return nil
}

// SaveActiveFile saves the editor's current text into the active file
func (s *Store) SaveActiveFile(ctx context.Context) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return nil, ErrNoActiveFile
	}

	f, err := s.saveFileLocked(ctx, s.activeID, s.editor.GetValue())
	if err != nil {
		return nil, err
	}
	return cloneFile(f), nil
}

// Tabs returns the open tabs and the active file
func (s *Store) Tabs() *models.TabState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tabsLocked()
}

// ActiveFile returns a copy of the active file, if any
func (s *Store) ActiveFile() (*models.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return nil, false
	}
	f, ok := s.files[s.activeID]
	if !ok {
		return nil, false
	}
	return cloneFile(f), true
}

func (s *Store) tabsLocked() *models.TabState {
	state := &models.TabState{
		Tabs: append([]models.OpenFile{}, s.tabs...),
	}
	if s.activeID != "" {
		state.ActiveFileID = stringPtr(s.activeID)
	}
	return state
}

func (s *Store) tabIndex(id string) int {
	for i, tab := range s.tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

// loadIntoEditor pushes content and highlighting mode to the editor
func (s *Store) loadIntoEditor(f *models.File) {
	s.editor.SetValue(f.Content)
	s.editor.SetModelLanguage(f.Language)
}
