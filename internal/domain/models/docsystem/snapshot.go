package docsystem

// SnapshotVersion is stamped on every saved snapshot. Snapshots written
// before versioning existed decode with Version 0 and are read as version 1.
const SnapshotVersion = 1

// Snapshot is the persisted form of the whole file system
type Snapshot struct {
	Version int      `json:"version"`
	Files   []File   `json:"files"`
	Folders []Folder `json:"folders"`
}
