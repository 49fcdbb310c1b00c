package config

const (
	// DefaultSnapshotKey is the key-value entry holding the whole file system.
	DefaultSnapshotKey = "storm_editor_filesystem"

	// MaxFileNameLength is the maximum length for file names, in runes.
	MaxFileNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as file names for consistency.
	MaxFolderNameLength = 255

	// MaxImportBytes caps a single imported document. The editor holds the
	// whole file in memory and in one persisted snapshot, so large uploads
	// are rejected before they are read.
	MaxImportBytes = 5 << 20

	// MaxImportRequestBytes caps a whole multipart import request.
	MaxImportRequestBytes = 50 << 20

	// MaxDocumentBodyBytes caps JSON request bodies that carry file content.
	MaxDocumentBodyBytes = 10 << 20
)
