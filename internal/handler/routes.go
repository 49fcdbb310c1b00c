package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/languages"
)

// Deps are the collaborators the HTTP surface needs
type Deps struct {
	VFS       docsysSvc.VFS
	Languages *languages.Registry
	Editor    EditorBuffer
	WebSocket http.Handler // nil = no /ws route
	Logger    *slog.Logger
}

// RegisterRoutes wires every API route onto mux
func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	fileHandler := NewFileHandler(deps.VFS, deps.Logger)
	folderHandler := NewFolderHandler(deps.VFS, deps.Logger)
	treeHandler := NewTreeHandler(deps.VFS, deps.Languages, deps.Logger)
	tabsHandler := NewTabsHandler(deps.VFS, deps.Logger)
	editorHandler := NewEditorHandler(deps.VFS, deps.Editor, deps.Logger)
	importHandler := NewImportHandler(deps.VFS, deps.Logger)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Tree and languages
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("GET /api/languages", treeHandler.ListLanguages)

	// Files
	mux.HandleFunc("GET /api/files", fileHandler.ListFiles)
	mux.HandleFunc("POST /api/files", fileHandler.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.UpdateFile)
	mux.HandleFunc("PUT /api/files/{id}/content", fileHandler.SaveContent)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)
	mux.HandleFunc("GET /api/files/{id}/export", fileHandler.ExportFile)

	// Import
	mux.HandleFunc("POST /api/import", importHandler.Import)

	// Folders
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Tabs
	mux.HandleFunc("GET /api/tabs", tabsHandler.GetTabs)
	mux.HandleFunc("POST /api/tabs/{id}", tabsHandler.OpenTab)
	mux.HandleFunc("DELETE /api/tabs/{id}", tabsHandler.CloseTab)

	// Editor session
	mux.HandleFunc("GET /api/editor", editorHandler.GetEditor)
	mux.HandleFunc("PUT /api/editor/buffer", editorHandler.UpdateBuffer)
	mux.HandleFunc("POST /api/editor/save", editorHandler.SaveActive)

	if deps.WebSocket != nil {
		mux.Handle("GET /ws", deps.WebSocket)
	}
}
