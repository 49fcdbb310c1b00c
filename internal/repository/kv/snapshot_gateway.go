package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	models "storm/internal/domain/models/docsystem"
	docsysRepo "storm/internal/domain/repositories/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CorruptSnapshotError reports a stored value that exists but cannot be
// used as a file system snapshot
type CorruptSnapshotError struct {
	Key string
	Err error
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("snapshot %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}

func (e *CorruptSnapshotError) Is(target error) bool {
	return target == docsysRepo.ErrCorruptSnapshot
}

// IsCorruptSnapshot reports whether err came from an unusable stored snapshot
func IsCorruptSnapshot(err error) bool {
	var corrupt *CorruptSnapshotError
	return errors.As(err, &corrupt)
}

// SnapshotGateway stores the whole file system as one JSON value under a
// fixed key
type SnapshotGateway struct {
	store  docsysRepo.KVStore
	key    string
	logger *slog.Logger
}

var _ docsysRepo.PersistenceGateway = (*SnapshotGateway)(nil)

// NewSnapshotGateway creates a gateway writing under key
func NewSnapshotGateway(store docsysRepo.KVStore, key string, logger *slog.Logger) *SnapshotGateway {
	return &SnapshotGateway{store: store, key: key, logger: logger}
}

// Key returns the storage key the snapshot lives under
func (g *SnapshotGateway) Key() string {
	return g.key
}

// Save stamps the current version and overwrites the stored value
func (g *SnapshotGateway) Save(ctx context.Context, snapshot *models.Snapshot) error {
	out := *snapshot
	out.Version = models.SnapshotVersion
	if out.Files == nil {
		out.Files = []models.File{}
	}
	if out.Folders == nil {
		out.Folders = []models.Folder{}
	}

	data, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := g.store.Set(ctx, g.key, string(data)); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	g.logger.Debug("snapshot saved",
		"key", g.key,
		"file_count", len(out.Files),
		"folder_count", len(out.Folders),
		"bytes", len(data),
	)
	return nil
}

// Load returns (nil, nil) when nothing is stored. A value that cannot be
// decoded, has an unknown version or breaks the structural rules is
// reported as a *CorruptSnapshotError.
func (g *SnapshotGateway) Load(ctx context.Context) (*models.Snapshot, error) {
	raw, found, err := g.store.Get(ctx, g.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if !found {
		g.logger.Debug("no stored snapshot", "key", g.key)
		return nil, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, g.corrupt(fmt.Errorf("decode: %w", err))
	}

	// Pre-versioning snapshots carry no version field
	if snap.Version == 0 {
		snap.Version = 1
	}
	if snap.Version > models.SnapshotVersion {
		return nil, g.corrupt(fmt.Errorf("unsupported version %d", snap.Version))
	}

	if err := validateSnapshot(&snap); err != nil {
		return nil, g.corrupt(err)
	}
	rebuildChildLists(&snap)

	return &snap, nil
}

func (g *SnapshotGateway) corrupt(err error) error {
	return &CorruptSnapshotError{Key: g.key, Err: err}
}

func validateSnapshot(snap *models.Snapshot) error {
	folders := make(map[string]*models.Folder, len(snap.Folders))
	for i := range snap.Folders {
		folder := &snap.Folders[i]
		err := validation.ValidateStruct(folder,
			validation.Field(&folder.ID, validation.Required, validation.By(hasPrefix(models.IsFolderID))),
			validation.Field(&folder.Name, validation.Required),
		)
		if err != nil {
			return fmt.Errorf("folder %d: %w", i, err)
		}
		if _, dup := folders[folder.ID]; dup {
			return fmt.Errorf("duplicate folder id %q", folder.ID)
		}
		folders[folder.ID] = folder
	}

	files := make(map[string]bool, len(snap.Files))
	for i := range snap.Files {
		f := &snap.Files[i]
		err := validation.ValidateStruct(f,
			validation.Field(&f.ID, validation.Required, validation.By(hasPrefix(models.IsFileID))),
			validation.Field(&f.Name, validation.Required),
		)
		if err != nil {
			return fmt.Errorf("file %d: %w", i, err)
		}
		if files[f.ID] {
			return fmt.Errorf("duplicate file id %q", f.ID)
		}
		files[f.ID] = true
		if f.FolderID != nil {
			if _, ok := folders[*f.FolderID]; !ok {
				return fmt.Errorf("file %q references missing folder %q", f.ID, *f.FolderID)
			}
		}
	}

	for _, folder := range snap.Folders {
		steps := 0
		for parent := folder.ParentID; parent != nil; steps++ {
			p, ok := folders[*parent]
			if !ok {
				return fmt.Errorf("folder %q references missing parent %q", folder.ID, *parent)
			}
			if p.ID == folder.ID || steps > len(folders) {
				return fmt.Errorf("folder %q is its own ancestor", folder.ID)
			}
			parent = p.ParentID
		}
	}

	return nil
}

func hasPrefix(valid func(string) bool) validation.RuleFunc {
	return func(value interface{}) error {
		id, _ := value.(string)
		if !valid(id) {
			return errors.New("has the wrong id prefix")
		}
		return nil
	}
}

// rebuildChildLists derives every folder's child lists from the entries'
// parent references, which are authoritative. Stored order is kept for
// children that are listed correctly; the rest are appended in snapshot
// order.
func rebuildChildLists(snap *models.Snapshot) {
	index := make(map[string]int, len(snap.Folders))
	wantFiles := make(map[string]map[string]bool, len(snap.Folders))
	wantFolders := make(map[string]map[string]bool, len(snap.Folders))
	for i, folder := range snap.Folders {
		index[folder.ID] = i
		wantFiles[folder.ID] = make(map[string]bool)
		wantFolders[folder.ID] = make(map[string]bool)
	}

	var fileOrder, folderOrder []string
	parentOfFile := make(map[string]string)
	parentOfFolder := make(map[string]string)
	for _, f := range snap.Files {
		if f.FolderID != nil {
			wantFiles[*f.FolderID][f.ID] = true
			parentOfFile[f.ID] = *f.FolderID
			fileOrder = append(fileOrder, f.ID)
		}
	}
	for _, folder := range snap.Folders {
		if folder.ParentID != nil {
			wantFolders[*folder.ParentID][folder.ID] = true
			parentOfFolder[folder.ID] = *folder.ParentID
			folderOrder = append(folderOrder, folder.ID)
		}
	}

	for i := range snap.Folders {
		folder := &snap.Folders[i]
		folder.FileIDs = keepListed(folder.FileIDs, wantFiles[folder.ID])
		folder.FolderIDs = keepListed(folder.FolderIDs, wantFolders[folder.ID])
	}

	// Append children that were missing from their parent's list
	for _, id := range fileOrder {
		folder := &snap.Folders[index[parentOfFile[id]]]
		if !contains(folder.FileIDs, id) {
			folder.FileIDs = append(folder.FileIDs, id)
		}
	}
	for _, id := range folderOrder {
		folder := &snap.Folders[index[parentOfFolder[id]]]
		if !contains(folder.FolderIDs, id) {
			folder.FolderIDs = append(folder.FolderIDs, id)
		}
	}
}

// keepListed filters ids down to the first occurrence of each wanted id
func keepListed(ids []string, want map[string]bool) []string {
	out := make([]string, 0, len(want))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if want[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
