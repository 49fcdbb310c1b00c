package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
)

// TabsHandler handles the open-tab strip
type TabsHandler struct {
	vfs    docsysSvc.VFS
	logger *slog.Logger
}

// NewTabsHandler creates a new tabs handler
func NewTabsHandler(vfs docsysSvc.VFS, logger *slog.Logger) *TabsHandler {
	return &TabsHandler{
		vfs:    vfs,
		logger: logger,
	}
}

// GetTabs returns the open tabs and the active file
// GET /api/tabs
func (h *TabsHandler) GetTabs(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.vfs.Tabs())
}

// OpenTab opens or re-activates a file
// POST /api/tabs/{id}
func (h *TabsHandler) OpenTab(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	if err := h.vfs.OpenFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.vfs.Tabs())
}

// CloseTab closes a file's tab
// DELETE /api/tabs/{id}
func (h *TabsHandler) CloseTab(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "File")
	if !ok {
		return
	}

	if err := h.vfs.CloseFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.vfs.Tabs())
}
