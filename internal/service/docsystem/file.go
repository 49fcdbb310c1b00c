package docsystem

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"storm/internal/config"
	"storm/internal/domain"
	models "storm/internal/domain/models/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/languages"
)

// CreateFile creates a new file.
//   - The language comes from the name's extension when the table knows it,
//     otherwise from req.Language (plaintext when that is empty too).
//   - A nil Content gets the language starter template.
//   - An unknown FolderID leaves the file at root.
func (s *Store) CreateFile(ctx context.Context, req *docsysSvc.CreateFileRequest) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.createFileLocked(req)
	if err != nil {
		return nil, err
	}
	s.structureChanged(ctx, "create_file")

	s.logger.Info("file created",
		"id", f.ID,
		"name", f.Name,
		"language", f.Language,
		"folder_id", f.FolderID,
	)

	return cloneFile(f), nil
}

func (s *Store) createFileLocked(req *docsysSvc.CreateFileRequest) (*models.File, error) {
	name, err := validateFileName(req.Name)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if detected, ok := s.languages.ForFilename(name); ok {
		language = detected
	}
	if language == "" {
		language = languages.PlainText
	}

	content := s.languages.Template(language)
	if req.Content != nil {
		content = *req.Content
	}

	now := s.now()
	f := &models.File{
		ID:        models.NewFileID(),
		Name:      name,
		Content:   content,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.files[f.ID] = f
	s.reparentFile(f, s.resolveParent(req.FolderID))

	return f, nil
}

// FindFileByID returns a copy of the file; ok is false when it does not exist
func (s *Store) FindFileByID(id string) (*models.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, false
	}
	return cloneFile(f), true
}

// RenameFile renames a file and re-derives its language from the new
// extension. An extension the table does not know keeps the old language.
func (s *Store) RenameFile(ctx context.Context, id, newName string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fileNotFound(id)
	}

	name, err := validateFileName(newName)
	if err != nil {
		return nil, err
	}

	oldName := f.Name
	f.Name = name
	if detected, ok := s.languages.ForFilename(name); ok {
		f.Language = detected
	}
	f.UpdatedAt = s.now()

	if i := s.tabIndex(id); i >= 0 {
		languageChanged := s.tabs[i].Language != f.Language
		s.tabs[i].Name = f.Name
		s.tabs[i].Language = f.Language
		if languageChanged && s.activeID == id {
			s.editor.SetModelLanguage(f.Language)
		}
		s.notifier.RenderTabs(s.tabsLocked())
	}

	s.structureChanged(ctx, "rename_file")

	s.logger.Info("file renamed",
		"id", id,
		"old_name", oldName,
		"name", f.Name,
		"language", f.Language,
	)

	return cloneFile(f), nil
}

// MoveFile reparents a file. A nil or empty folderID moves it to root;
// an unknown folder fails.
func (s *Store) MoveFile(ctx context.Context, id string, folderID *string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fileNotFound(id)
	}

	target, err := s.requireParent(folderID)
	if err != nil {
		return nil, err
	}

	s.reparentFile(f, target)
	f.UpdatedAt = s.now()
	s.structureChanged(ctx, "move_file")

	s.logger.Debug("file moved", "id", id, "folder_id", f.FolderID)

	return cloneFile(f), nil
}

// SaveFile overwrites a file's content. Tabs and the active pointer are
// left alone.
func (s *Store) SaveFile(ctx context.Context, id, content string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.saveFileLocked(ctx, id, content)
	if err != nil {
		return nil, err
	}
	return cloneFile(f), nil
}

func (s *Store) saveFileLocked(ctx context.Context, id, content string) (*models.File, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, fileNotFound(id)
	}

	f.Content = content
	f.UpdatedAt = s.now()
	s.persist(ctx, "save_file")

	s.logger.Debug("file saved", "id", id, "bytes", len(content))

	return f, nil
}

// DeleteFile closes the file's tab if open, unlinks it from its folder and
// removes it.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteFileLocked(ctx, id)
}

func (s *Store) deleteFileLocked(ctx context.Context, id string) error {
	f, ok := s.files[id]
	if !ok {
		return fileNotFound(id)
	}

	if s.tabIndex(id) >= 0 {
		if err := s.closeFileLocked(id); err != nil {
			return err
		}
	}

	s.reparentFile(f, nil)
	delete(s.files, id)
	s.structureChanged(ctx, "delete_file")

	s.logger.Info("file deleted", "id", id, "name", f.Name)

	return nil
}

// ImportFile reads an uploaded document as text, creates it and opens it.
// The upload is read before the store is locked.
func (s *Store) ImportFile(ctx context.Context, upload docsysSvc.UploadedFile, folderID *string) (*models.File, error) {
	name := uploadName(upload.Filename)

	data, err := io.ReadAll(io.LimitReader(upload.Content, config.MaxImportBytes+1))
	if err != nil {
		s.logger.Warn("failed to read uploaded file", "file", upload.Filename, "error", err)
		return nil, fmt.Errorf("read %q: %w", upload.Filename, err)
	}
	if len(data) > config.MaxImportBytes {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", domain.ErrValidation, upload.Filename, config.MaxImportBytes)
	}

	language, ok := s.languages.ForFilename(name)
	if !ok {
		language = languages.PlainText
	}
	content := string(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.createFileLocked(&docsysSvc.CreateFileRequest{
		Name:     name,
		FolderID: folderID,
		Content:  &content,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	s.structureChanged(ctx, "import_file")

	if err := s.openFileLocked(f.ID); err != nil {
		return nil, err
	}

	s.logger.Info("file imported",
		"id", f.ID,
		"name", f.Name,
		"language", f.Language,
		"bytes", len(data),
	)

	return cloneFile(f), nil
}

// uploadName strips any client-side directory from an upload's filename
func uploadName(filename string) string {
	return path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
}

// ExportFile renders a file's current content for download
func (s *Store) ExportFile(id string) (*models.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fileNotFound(id)
	}

	return &models.Export{
		Filename:    f.Name,
		ContentType: "text/plain; charset=utf-8",
		Content:     f.Content,
	}, nil
}

// ListFiles returns copies of all files sorted by name
func (s *Store) ListFiles() []models.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, *cloneFile(f))
	}
	sort.Slice(out, func(i, j int) bool {
		return nameLess(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out
}

func nameLess(a, aID, b, bID string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return aID < bID
}
