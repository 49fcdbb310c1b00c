package handler

import (
	"log/slog"
	"net/http"

	models "storm/internal/domain/models/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
	"storm/internal/realtime"
)

// EditorBuffer is the server-side editor state the handlers read and feed
type EditorBuffer interface {
	State() realtime.EditorState
	UpdateBuffer(text string)
}

// EditorHandler exposes the shared editor session
type EditorHandler struct {
	vfs    docsysSvc.VFS
	buffer EditorBuffer
	logger *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(vfs docsysSvc.VFS, buffer EditorBuffer, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		vfs:    vfs,
		buffer: buffer,
		logger: logger,
	}
}

// EditorResponse describes what the editor shows
type EditorResponse struct {
	ActiveFile *models.File `json:"active_file"`
	Value      string       `json:"value"`
	Language   string       `json:"language"`
	Dirty      bool         `json:"dirty"`
}

// UpdateBufferRequest carries the full unsaved editor text
type UpdateBufferRequest struct {
	Value string `json:"value"`
}

// GetEditor returns the active file and the live buffer
// GET /api/editor
func (h *EditorHandler) GetEditor(w http.ResponseWriter, r *http.Request) {
	state := h.buffer.State()
	resp := EditorResponse{
		Value:    state.Value,
		Language: state.Language,
	}
	if f, ok := h.vfs.ActiveFile(); ok {
		resp.ActiveFile = f
		resp.Dirty = f.Content != state.Value
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// UpdateBuffer records unsaved edits
// PUT /api/editor/buffer
func (h *EditorHandler) UpdateBuffer(w http.ResponseWriter, r *http.Request) {
	var req UpdateBufferRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.buffer.UpdateBuffer(req.Value)
	w.WriteHeader(http.StatusNoContent)
}

// SaveActive writes the buffer into the active file
// POST /api/editor/save
func (h *EditorHandler) SaveActive(w http.ResponseWriter, r *http.Request) {
	f, err := h.vfs.SaveActiveFile(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, f)
}
