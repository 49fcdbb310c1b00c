package docsystem

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"folder_id"` // NULL = root level (JSON uses folder_id for API consistency)
	FileIDs   []string  `json:"file_ids"`
	FolderIDs []string  `json:"folder_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFolderID returns a fresh, never reused folder identifier
func NewFolderID() string {
	return FolderIDPrefix + uuid.NewString()
}

// IsFolderID reports whether id belongs to the folder identifier space
func IsFolderID(id string) bool {
	return strings.HasPrefix(id, FolderIDPrefix) && len(id) > len(FolderIDPrefix)
}
