package docsystem

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID prefixes keep file and folder identifiers in disjoint spaces
const (
	FileIDPrefix   = "file-"
	FolderIDPrefix = "folder-"
)

type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	FolderID  *string   `json:"folder_id"` // NULL = root level
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileID returns a fresh, never reused file identifier
func NewFileID() string {
	return FileIDPrefix + uuid.NewString()
}

// IsFileID reports whether id belongs to the file identifier space
func IsFileID(id string) bool {
	return strings.HasPrefix(id, FileIDPrefix) && len(id) > len(FileIDPrefix)
}

// Export is a file rendered for download
type Export struct {
	Filename    string
	ContentType string
	Content     string
}
