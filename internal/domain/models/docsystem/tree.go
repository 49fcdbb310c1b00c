package docsystem

import "time"

// TreeNode represents the root of the file tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
	Files   []FileTreeNode    `json:"files"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"folder_id"`
	CreatedAt time.Time         `json:"created_at"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only, no content)
type FileTreeNode struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	FolderID  *string   `json:"folder_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
