package handler

import (
	"log/slog"
	"mime"
	"net/http"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	vfs    docsysSvc.VFS
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(vfs docsysSvc.VFS, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		vfs:    vfs,
		logger: logger,
	}
}

// UpdateFileRequest is a PATCH body. Absent fields are left alone;
// "folder_id": null moves the file to root.
type UpdateFileRequest struct {
	Name     *string                 `json:"name"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// SaveContentRequest replaces a file's content
type SaveContentRequest struct {
	Content *string `json:"content"`
}

// CreateFile creates a new file
// POST /api/files
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := h.vfs.CreateFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, f)
}

// GetFile returns a file with its content
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	f, found := h.vfs.FindFileByID(id)
	if !found {
		httputil.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, f)
}

// ListFiles returns every file sorted by name
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.vfs.ListFiles())
}

// UpdateFile renames and/or moves a file
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	var req UpdateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && !req.FolderID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update: provide name and/or folder_id")
		return
	}

	if req.Name != nil {
		if _, err := h.vfs.RenameFile(r.Context(), id, *req.Name); err != nil {
			handleError(w, err)
			return
		}
	}
	if req.FolderID.Present {
		if _, err := h.vfs.MoveFile(r.Context(), id, req.FolderID.Value); err != nil {
			handleError(w, err)
			return
		}
	}

	f, found := h.vfs.FindFileByID(id)
	if !found {
		httputil.RespondError(w, http.StatusNotFound, "file not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, f)
}

// SaveContent overwrites a file's content
// PUT /api/files/{id}/content
func (h *FileHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	var req SaveContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Content == nil {
		httputil.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	f, err := h.vfs.SaveFile(r.Context(), id, *req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, f)
}

// DeleteFile deletes a file, closing its tab
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	if err := h.vfs.DeleteFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportFile downloads a file's current content
// GET /api/files/{id}/export
func (h *FileHandler) ExportFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	export, err := h.vfs.ExportFile(id)
	if err != nil {
		handleError(w, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(export.Content)); err != nil {
		h.logger.Warn("failed to write export", "file_id", id, "error", err)
	}
}
