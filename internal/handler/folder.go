package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	vfs    docsysSvc.VFS
	logger *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(vfs docsysSvc.VFS, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		vfs:    vfs,
		logger: logger,
	}
}

// UpdateFolderRequest is a PATCH body. "folder_id" is the parent folder;
// null moves the folder to root.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"folder_id"`
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.vfs.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "Folder")
	if !ok {
		return
	}

	folder, found := h.vfs.FindFolderByID(id)
	if !found {
		httputil.RespondError(w, http.StatusNotFound, "folder not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListFolders returns every folder sorted by name
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.vfs.ListFolders())
}

// UpdateFolder renames and/or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "Folder")
	if !ok {
		return
	}

	var req UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update: provide name and/or folder_id")
		return
	}

	if req.Name != nil {
		if _, err := h.vfs.RenameFolder(r.Context(), id, *req.Name); err != nil {
			handleError(w, err)
			return
		}
	}
	if req.ParentID.Present {
		if _, err := h.vfs.MoveFolder(r.Context(), id, req.ParentID.Value); err != nil {
			handleError(w, err)
			return
		}
	}

	folder, found := h.vfs.FindFolderByID(id)
	if !found {
		httputil.RespondError(w, http.StatusNotFound, "folder not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything inside it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "Folder")
	if !ok {
		return
	}

	if err := h.vfs.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
