package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
	"storm/internal/languages"
)

// TreeHandler serves the read-only projections of the file system
type TreeHandler struct {
	vfs       docsysSvc.VFS
	languages *languages.Registry
	logger    *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(vfs docsysSvc.VFS, registry *languages.Registry, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		vfs:       vfs,
		languages: registry,
		logger:    logger,
	}
}

// GetTree returns the nested folder/file tree, without content
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.vfs.Tree())
}

// ListLanguages returns the supported languages and their extensions
// GET /api/languages
func (h *TreeHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.languages.List())
}
