package docsystem

import (
	"context"

	"storm/internal/domain/models/docsystem"
)

// VFS is the virtual file system: documents, folders and open tabs.
// Expected failures (unknown id, empty name, tab not open) are returned as
// errors wrapping the domain sentinels; storage failures are never returned
// from mutations.
type VFS interface {
	// CreateFile creates a file at root or inside FolderID
	CreateFile(ctx context.Context, req *CreateFileRequest) (*docsystem.File, error)

	// CreateFolder creates an empty folder at root or inside ParentID
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Folder, error)

	FindFileByID(id string) (*docsystem.File, bool)
	FindFolderByID(id string) (*docsystem.Folder, bool)

	// RenameFile renames a file and re-derives its language
	RenameFile(ctx context.Context, id, newName string) (*docsystem.File, error)
	RenameFolder(ctx context.Context, id, newName string) (*docsystem.Folder, error)

	// MoveFile reparents a file; nil folderID moves it to root
	MoveFile(ctx context.Context, id string, folderID *string) (*docsystem.File, error)

	// MoveFolder reparents a folder; moving into itself or a descendant fails
	MoveFolder(ctx context.Context, id string, parentID *string) (*docsystem.Folder, error)

	// SaveFile overwrites a file's content
	SaveFile(ctx context.Context, id, content string) (*docsystem.File, error)

	// DeleteFile closes the file's tab, unlinks and removes it
	DeleteFile(ctx context.Context, id string) error

	// DeleteFolder deletes all descendants first, then the folder
	DeleteFolder(ctx context.Context, id string) error

	// ImportFile reads an uploaded document as text, creates and opens it
	ImportFile(ctx context.Context, upload UploadedFile, folderID *string) (*docsystem.File, error)

	// ExportFile renders a file for download; it never mutates
	ExportFile(id string) (*docsystem.Export, error)

	// OpenFile opens (or re-activates) a tab and loads it into the editor
	OpenFile(ctx context.Context, id string) error

	// CloseFile closes a tab, activating its nearest neighbour
	CloseFile(ctx context.Context, id string) error

	// SaveActiveFile saves the editor's current text into the active file
	SaveActiveFile(ctx context.Context) (*docsystem.File, error)

	// ActiveFile returns the file loaded in the editor, if any
	ActiveFile() (*docsystem.File, bool)

	Tree() *docsystem.TreeNode
	Tabs() *docsystem.TabState
	ListFiles() []docsystem.File
	ListFolders() []docsystem.Folder
}

// CreateFileRequest represents a file creation request
type CreateFileRequest struct {
	Name     string  `json:"name"`
	FolderID *string `json:"folder_id,omitempty"` // Parent folder ID (null for root)
	Content  *string `json:"content,omitempty"`   // nil = language starter template
	Language string  `json:"language,omitempty"`  // Used only when the extension is unknown
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"folder_id,omitempty"` // Parent folder ID (null for root)
}
