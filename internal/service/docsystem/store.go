package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"storm/internal/domain"
	models "storm/internal/domain/models/docsystem"
	docsysRepo "storm/internal/domain/repositories/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/languages"
)

var (
	// ErrNotOpen is returned when closing a file that has no tab
	ErrNotOpen = fmt.Errorf("file is not open: %w", domain.ErrNotFound)

	// ErrNoActiveFile is returned when saving with no active tab
	ErrNoActiveFile = fmt.Errorf("no active file: %w", domain.ErrConflict)

	// ErrWritesHeld is returned by SaveFileSystem after the persisted
	// snapshot could not be read
	ErrWritesHeld = errors.New("persistence held: stored file system was not read")
)

// Store is the virtual file system of one editor session. It owns every
// File and Folder, the open tabs and the active-file pointer. All public
// methods are serialized by one mutex and run to completion, so no two
// mutations interleave.
type Store struct {
	mu       sync.Mutex
	files    map[string]*models.File
	folders  map[string]*models.Folder
	tabs     []models.OpenFile
	activeID string // "" = no active file

	gateway   docsysRepo.PersistenceGateway
	languages *languages.Registry
	editor    docsysSvc.EditorSurface
	notifier  docsysSvc.Notifier
	logger    *slog.Logger

	// Set when the last load could not read the store; nothing is written
	// while it is non-nil
	writesHeld error

	debugChecks bool
	now         func() time.Time
}

var _ docsysSvc.VFS = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithDebugChecks runs CheckConsistency after every mutation and logs
// violations at error level
func WithDebugChecks(enabled bool) Option {
	return func(s *Store) { s.debugChecks = enabled }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Call LoadFileSystem before serving.
// A nil editor or notifier is replaced by a no-op.
func NewStore(
	gateway docsysRepo.PersistenceGateway,
	registry *languages.Registry,
	editor docsysSvc.EditorSurface,
	notifier docsysSvc.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Store {
	if editor == nil {
		editor = nopEditor{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	s := &Store{
		files:     make(map[string]*models.File),
		folders:   make(map[string]*models.Folder),
		gateway:   gateway,
		languages: registry,
		editor:    editor,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// reparentFile is the only place a file's parent link changes. It updates
// the old parent's child list, the file, and the new parent's child list
// together. The caller has verified that parentID (if any) exists.
func (s *Store) reparentFile(f *models.File, parentID *string) {
	if f.FolderID != nil {
		if old, ok := s.folders[*f.FolderID]; ok {
			old.FileIDs = removeID(old.FileIDs, f.ID)
		}
	}
	f.FolderID = nil

	if parentID != nil {
		parent := s.folders[*parentID]
		parent.FileIDs = append(parent.FileIDs, f.ID)
		f.FolderID = stringPtr(parent.ID)
	}
}

// reparentFolder is the folder counterpart of reparentFile
func (s *Store) reparentFolder(folder *models.Folder, parentID *string) {
	if folder.ParentID != nil {
		if old, ok := s.folders[*folder.ParentID]; ok {
			old.FolderIDs = removeID(old.FolderIDs, folder.ID)
		}
	}
	folder.ParentID = nil

	if parentID != nil {
		parent := s.folders[*parentID]
		parent.FolderIDs = append(parent.FolderIDs, folder.ID)
		folder.ParentID = stringPtr(parent.ID)
	}
}

// resolveParent maps an optional parent id to an existing folder id.
// Empty or unknown ids resolve to root.
func (s *Store) resolveParent(parentID *string) *string {
	if parentID == nil || *parentID == "" {
		return nil
	}
	if _, ok := s.folders[*parentID]; !ok {
		return nil
	}
	return parentID
}

// requireParent is resolveParent for explicit moves: an unknown id fails
func (s *Store) requireParent(parentID *string) (*string, error) {
	if parentID == nil || *parentID == "" {
		return nil, nil
	}
	if _, ok := s.folders[*parentID]; !ok {
		return nil, folderNotFound(*parentID)
	}
	return parentID, nil
}

// structureChanged persists the file system and refreshes the tree view
func (s *Store) structureChanged(ctx context.Context, op string) {
	s.persist(ctx, op)
	s.notifier.RenderFileTree(s.treeLocked())
}

// persist writes the snapshot. Failures are logged, never returned: the
// in-memory state stays the working copy until the next successful save.
func (s *Store) persist(ctx context.Context, op string) {
	if s.writesHeld != nil {
		s.logger.Warn("skipping persist, stored file system was not read",
			"op", op,
			"error", s.writesHeld,
		)
	} else if s.gateway != nil {
		if err := s.gateway.Save(ctx, s.snapshotLocked()); err != nil {
			s.logger.Error("failed to persist file system",
				"op", op,
				"error", err,
			)
		}
	}
	s.debugCheck(op)
}

func (s *Store) debugCheck(op string) {
	if !s.debugChecks {
		return
	}
	if err := s.checkConsistencyLocked(); err != nil {
		s.logger.Error("file system invariant violated",
			"op", op,
			"error", err,
		)
	}
}

// snapshotLocked copies the current state in a stable order
func (s *Store) snapshotLocked() *models.Snapshot {
	snap := &models.Snapshot{
		Version: models.SnapshotVersion,
		Files:   make([]models.File, 0, len(s.files)),
		Folders: make([]models.Folder, 0, len(s.folders)),
	}
	for _, f := range s.files {
		snap.Files = append(snap.Files, *cloneFile(f))
	}
	for _, folder := range s.folders {
		snap.Folders = append(snap.Folders, *cloneFolder(folder))
	}

	sort.Slice(snap.Files, func(i, j int) bool {
		return createdBefore(snap.Files[i].CreatedAt, snap.Files[i].ID, snap.Files[j].CreatedAt, snap.Files[j].ID)
	})
	sort.Slice(snap.Folders, func(i, j int) bool {
		return createdBefore(snap.Folders[i].CreatedAt, snap.Folders[i].ID, snap.Folders[j].CreatedAt, snap.Folders[j].ID)
	})
	return snap
}

func createdBefore(a time.Time, aID string, b time.Time, bID string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}

func fileNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("file %q not found", id)}
}

func folderNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("folder %q not found", id)}
}

// IsNotFound reports whether err is an expected "no such entity" outcome
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func cloneFile(f *models.File) *models.File {
	c := *f
	if f.FolderID != nil {
		c.FolderID = stringPtr(*f.FolderID)
	}
	return &c
}

func cloneFolder(f *models.Folder) *models.Folder {
	c := *f
	if f.ParentID != nil {
		c.ParentID = stringPtr(*f.ParentID)
	}
	c.FileIDs = append([]string{}, f.FileIDs...)
	c.FolderIDs = append([]string{}, f.FolderIDs...)
	return &c
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}

type nopEditor struct{}

func (nopEditor) GetValue() string        { return "" }
func (nopEditor) SetValue(string)         {}
func (nopEditor) SetModelLanguage(string) {}

type nopNotifier struct{}

func (nopNotifier) RenderFileTree(*models.TreeNode) {}
func (nopNotifier) RenderTabs(*models.TabState)     {}
