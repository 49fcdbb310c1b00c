package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"storm/internal/config"
	models "storm/internal/domain/models/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/httputil"
)

// ImportHandler handles document uploads
type ImportHandler struct {
	vfs    docsysSvc.VFS
	logger *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(vfs docsysSvc.VFS, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		vfs:    vfs,
		logger: logger,
	}
}

// ImportSummary counts the outcome of an import request
type ImportSummary struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// ImportError describes one file that could not be imported
type ImportError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ImportResponse represents the response for import operations
type ImportResponse struct {
	Success bool          `json:"success"`
	Summary ImportSummary `json:"summary"`
	Errors  []ImportError `json:"errors"`
	Files   []models.File `json:"files"`
}

// Import reads every uploaded file as text and opens each one in a tab.
// The last imported file ends up active.
// POST /api/import
//
// Query parameters:
//   - folder_id: optional, target folder (empty or unknown = root)
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImportRequestBytes)
	if err := r.ParseMultipartForm(config.MaxImportBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "No files provided")
		return
	}

	folderID := httputil.QueryOptional(r, "folder_id")

	h.logger.Info("starting import",
		"file_count", len(files),
		"folder_id", folderID,
	)

	response := ImportResponse{
		Errors: []ImportError{},
		Files:  []models.File{},
	}

	for _, fileHeader := range files {
		f, err := h.importOne(r, fileHeader, folderID)
		if err != nil {
			h.logger.Warn("import failed", "file", fileHeader.Filename, "error", err)
			response.Errors = append(response.Errors, ImportError{File: fileHeader.Filename, Error: err.Error()})
			response.Summary.Failed++
			continue
		}
		response.Files = append(response.Files, *f)
		response.Summary.Imported++
	}
	response.Success = response.Summary.Failed == 0

	h.logger.Info("import complete",
		"imported", response.Summary.Imported,
		"failed", response.Summary.Failed,
	)

	if response.Summary.Imported == 0 {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "no files could be imported", map[string]interface{}{
			"errors": response.Errors,
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, response)
}

func (h *ImportHandler) importOne(r *http.Request, fileHeader *multipart.FileHeader, folderID *string) (*models.File, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return h.vfs.ImportFile(r.Context(), docsysSvc.UploadedFile{
		Filename: fileHeader.Filename,
		Content:  file,
	}, folderID)
}
