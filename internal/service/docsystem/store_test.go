package docsystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"storm/internal/domain"
	models "storm/internal/domain/models/docsystem"
	docsysRepo "storm/internal/domain/repositories/docsystem"
	docsysSvc "storm/internal/domain/services/docsystem"
	"storm/internal/languages"
)

// recordingEditor captures everything the store pushes to the editor
type recordingEditor struct {
	value     string
	language  string
	setValues []string
}

func (e *recordingEditor) GetValue() string { return e.value }

func (e *recordingEditor) SetValue(text string) {
	e.value = text
	e.setValues = append(e.setValues, text)
}

func (e *recordingEditor) SetModelLanguage(language string) { e.language = language }

type recordingNotifier struct {
	trees []*models.TreeNode
	tabs  []*models.TabState
}

func (n *recordingNotifier) RenderFileTree(tree *models.TreeNode) { n.trees = append(n.trees, tree) }
func (n *recordingNotifier) RenderTabs(tabs *models.TabState)     { n.tabs = append(n.tabs, tabs) }

// fakeGateway keeps the last saved snapshot in memory
type fakeGateway struct {
	mu      sync.Mutex
	stored  *models.Snapshot
	saves   int
	saveErr error
	loadErr error
}

func (g *fakeGateway) Load(ctx context.Context) (*models.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loadErr != nil {
		return nil, g.loadErr
	}
	return g.stored, nil
}

func (g *fakeGateway) Save(ctx context.Context, snap *models.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	g.stored = snap
	return nil
}

type fixture struct {
	store    *Store
	editor   *recordingEditor
	notifier *recordingNotifier
	gateway  *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry, err := languages.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &fixture{
		editor:   &recordingEditor{},
		notifier: &recordingNotifier{},
		gateway:  &fakeGateway{},
	}
	f.store = NewStore(f.gateway, registry, f.editor, f.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithDebugChecks(true),
		WithClock(func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		}),
	)
	return f
}

func (f *fixture) mustCreateFile(t *testing.T, name string, folderID *string) *models.File {
	t.Helper()
	file, err := f.store.CreateFile(context.Background(), &docsysSvc.CreateFileRequest{Name: name, FolderID: folderID})
	if err != nil {
		t.Fatalf("CreateFile(%q) failed: %v", name, err)
	}
	return file
}

func (f *fixture) mustCreateFolder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := f.store.CreateFolder(context.Background(), &docsysSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("CreateFolder(%q) failed: %v", name, err)
	}
	return folder
}

func (f *fixture) mustOpen(t *testing.T, id string) {
	t.Helper()
	if err := f.store.OpenFile(context.Background(), id); err != nil {
		t.Fatalf("OpenFile(%q) failed: %v", id, err)
	}
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	if err := f.store.CheckConsistency(); err != nil {
		t.Fatalf("inconsistent: %v", err)
	}
}

func tabIDs(state *models.TabState) []string {
	ids := make([]string, len(state.Tabs))
	for i, tab := range state.Tabs {
		ids[i] = tab.ID
	}
	return ids
}

func activeID(state *models.TabState) string {
	if state.ActiveFileID == nil {
		return ""
	}
	return *state.ActiveFileID
}

func TestCreateFile_LanguageFromExtension(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file := f.mustCreateFile(t, "index.html", nil)
	if file.Language != "html" {
		t.Fatalf("language = %q, want html", file.Language)
	}
	if !strings.Contains(file.Content, "<html") {
		t.Errorf("expected html starter template, got %q", file.Content)
	}
	if !file.CreatedAt.Equal(file.UpdatedAt) {
		t.Error("createdAt and updatedAt should match on create")
	}

	f.mustOpen(t, file.ID)

	renamed, err := f.store.RenameFile(ctx, file.ID, "index.txt")
	if err != nil {
		t.Fatalf("RenameFile() failed: %v", err)
	}
	if renamed.Language != "plaintext" {
		t.Errorf("language after rename = %q, want plaintext", renamed.Language)
	}
	if f.editor.language != "plaintext" {
		t.Errorf("editor language = %q, want plaintext", f.editor.language)
	}
	if tab := f.store.Tabs().Tabs[0]; tab.Name != "index.txt" || tab.Language != "plaintext" {
		t.Errorf("tab = %+v, want renamed plaintext tab", tab)
	}
}

func TestCreateFile_LanguageFallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      docsysSvc.CreateFileRequest
		wantLang string
	}{
		{"extension wins over caller", docsysSvc.CreateFileRequest{Name: "a.py", Language: "go"}, "python"},
		{"caller language for unknown extension", docsysSvc.CreateFileRequest{Name: "Makefile", Language: "shell"}, "shell"},
		{"plaintext when nothing is known", docsysSvc.CreateFileRequest{Name: "notes.zzz"}, "plaintext"},
		{"case-insensitive extension", docsysSvc.CreateFileRequest{Name: "README.MD"}, "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := f.store.CreateFile(ctx, &tt.req)
			if err != nil {
				t.Fatalf("CreateFile() failed: %v", err)
			}
			if file.Language != tt.wantLang {
				t.Errorf("language = %q, want %q", file.Language, tt.wantLang)
			}
		})
	}
}

func TestRenameFile_UnknownExtensionKeepsLanguage(t *testing.T) {
	f := newFixture(t)

	file := f.mustCreateFile(t, "main.go", nil)
	renamed, err := f.store.RenameFile(context.Background(), file.ID, "main.backup")
	if err != nil {
		t.Fatalf("RenameFile() failed: %v", err)
	}
	if renamed.Language != "go" {
		t.Errorf("language = %q, want go", renamed.Language)
	}
}

func TestCreateFile_ContentAndParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty := ""
	file, err := f.store.CreateFile(ctx, &docsysSvc.CreateFileRequest{Name: "a.js", Content: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if file.Content != "" {
		t.Errorf("explicit empty content replaced by %q", file.Content)
	}

	missing := "folder-missing"
	orphan := f.mustCreateFile(t, "b.js", &missing)
	if orphan.FolderID != nil {
		t.Errorf("unknown folder should leave the file at root, got %q", *orphan.FolderID)
	}

	src := f.mustCreateFolder(t, "src", nil)
	child := f.mustCreateFile(t, "c.js", &src.ID)
	if child.FolderID == nil || *child.FolderID != src.ID {
		t.Fatalf("folder_id = %v, want %s", child.FolderID, src.ID)
	}
	got, _ := f.store.FindFolderByID(src.ID)
	if len(got.FileIDs) != 1 || got.FileIDs[0] != child.ID {
		t.Errorf("folder file_ids = %v, want [%s]", got.FileIDs, child.ID)
	}
	f.assertConsistent(t)
}

func TestCreate_RejectsBadNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "a/b", "..", strings.Repeat("x", 256)} {
		if _, err := f.store.CreateFile(ctx, &docsysSvc.CreateFileRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateFile(%q) error = %v, want ErrValidation", name, err)
		}
		if _, err := f.store.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateFolder(%q) error = %v, want ErrValidation", name, err)
		}
	}
	if len(f.store.ListFiles()) != 0 || len(f.store.ListFolders()) != 0 {
		t.Error("rejected names must not create anything")
	}
}

func TestUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, ok := f.store.FindFileByID("file-nope"); ok {
		t.Error("FindFileByID found a missing file")
	}
	if _, err := f.store.RenameFile(ctx, "file-nope", "x"); !IsNotFound(err) {
		t.Errorf("RenameFile error = %v", err)
	}
	if _, err := f.store.RenameFolder(ctx, "folder-nope", "x"); !IsNotFound(err) {
		t.Errorf("RenameFolder error = %v", err)
	}
	if _, err := f.store.SaveFile(ctx, "file-nope", "x"); !IsNotFound(err) {
		t.Errorf("SaveFile error = %v", err)
	}
	if err := f.store.DeleteFile(ctx, "file-nope"); !IsNotFound(err) {
		t.Errorf("DeleteFile error = %v", err)
	}
	if err := f.store.DeleteFolder(ctx, "folder-nope"); !IsNotFound(err) {
		t.Errorf("DeleteFolder error = %v", err)
	}
	if _, err := f.store.ExportFile("file-nope"); !IsNotFound(err) {
		t.Errorf("ExportFile error = %v", err)
	}
	if err := f.store.OpenFile(ctx, "file-nope"); !IsNotFound(err) {
		t.Errorf("OpenFile error = %v", err)
	}
	if err := f.store.CloseFile(ctx, "file-nope"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("CloseFile error = %v, want ErrNotOpen", err)
	}
	if _, err := f.store.SaveActiveFile(ctx); !errors.Is(err, ErrNoActiveFile) {
		t.Errorf("SaveActiveFile error = %v, want ErrNoActiveFile", err)
	}
}

func TestSaveFile_LeavesTabsAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFile(t, "a.txt", nil)
	b := f.mustCreateFile(t, "b.txt", nil)
	f.mustOpen(t, a.ID)
	before := f.store.Tabs()

	saved, err := f.store.SaveFile(ctx, b.ID, "new body")
	if err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}
	if saved.Content != "new body" || !saved.UpdatedAt.After(b.UpdatedAt) {
		t.Errorf("saved = %+v", saved)
	}

	after := f.store.Tabs()
	if strings.Join(tabIDs(before), ",") != strings.Join(tabIDs(after), ",") || activeID(before) != activeID(after) {
		t.Errorf("tabs changed: %v -> %v", before, after)
	}
}

func TestDeleteFolder_Cascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src := f.mustCreateFolder(t, "src", nil)
	lib := f.mustCreateFolder(t, "lib", &src.ID)
	a := f.mustCreateFile(t, "a.js", &src.ID)
	b := f.mustCreateFile(t, "b.js", &lib.ID)
	keep := f.mustCreateFile(t, "keep.js", nil)
	f.mustOpen(t, keep.ID)
	f.mustOpen(t, a.ID)
	f.mustOpen(t, b.ID)

	if err := f.store.DeleteFolder(ctx, src.ID); err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}

	for _, id := range []string{a.ID, b.ID} {
		if _, ok := f.store.FindFileByID(id); ok {
			t.Errorf("file %s survived the cascade", id)
		}
	}
	for _, id := range []string{src.ID, lib.ID} {
		if _, ok := f.store.FindFolderByID(id); ok {
			t.Errorf("folder %s survived the cascade", id)
		}
	}

	tabs := f.store.Tabs()
	if ids := tabIDs(tabs); len(ids) != 1 || ids[0] != keep.ID {
		t.Errorf("tabs = %v, want [%s]", ids, keep.ID)
	}
	if activeID(tabs) != keep.ID {
		t.Errorf("active = %q, want %q", activeID(tabs), keep.ID)
	}
	for _, file := range f.store.ListFiles() {
		if file.FolderID != nil && (*file.FolderID == src.ID || *file.FolderID == lib.ID) {
			t.Errorf("file %s still points at a deleted folder", file.ID)
		}
	}
	f.assertConsistent(t)
}

func TestOpenFile_Idempotent(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreateFile(t, "a.css", nil)
	f.mustOpen(t, a.ID)
	f.mustOpen(t, a.ID)

	tabs := f.store.Tabs()
	if len(tabs.Tabs) != 1 || activeID(tabs) != a.ID {
		t.Fatalf("tabs = %+v, want one active tab", tabs)
	}
	if f.editor.value != a.Content || f.editor.language != "css" {
		t.Errorf("editor = (%q, %q), want file content in css", f.editor.value, f.editor.language)
	}
}

func TestCloseFile_NeighbourRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFile(t, "a.txt", nil)
	b := f.mustCreateFile(t, "b.txt", nil)
	c := f.mustCreateFile(t, "c.txt", nil)
	for _, id := range []string{a.ID, b.ID, c.ID} {
		f.mustOpen(t, id)
	}

	// b is not active: c stays active
	if err := f.store.CloseFile(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	tabs := f.store.Tabs()
	if got := strings.Join(tabIDs(tabs), ","); got != a.ID+","+c.ID || activeID(tabs) != c.ID {
		t.Fatalf("tabs = %s active %s", got, activeID(tabs))
	}

	// b active in the middle: the tab at its index (c) takes over
	f.mustOpen(t, b.ID)
	f.mustOpen(t, a.ID)
	if err := f.store.CloseFile(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	tabs = f.store.Tabs()
	if got := strings.Join(tabIDs(tabs), ","); got != c.ID+","+b.ID || activeID(tabs) != c.ID {
		t.Fatalf("after closing first tab: tabs = %s active %s", got, activeID(tabs))
	}

	// Closing the last tab when active falls back to the new last tab
	f.mustOpen(t, b.ID)
	if err := f.store.CloseFile(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if activeID(f.store.Tabs()) != c.ID {
		t.Fatalf("active = %q, want %q", activeID(f.store.Tabs()), c.ID)
	}
}

func TestCloseFile_TwoTabsAndOnlyTab(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFile(t, "a.txt", nil)
	b := f.mustCreateFile(t, "b.txt", nil)
	if _, err := f.store.SaveFile(ctx, a.ID, "content of a"); err != nil {
		t.Fatal(err)
	}
	f.mustOpen(t, a.ID)
	f.mustOpen(t, b.ID)

	if err := f.store.CloseFile(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if activeID(f.store.Tabs()) != a.ID || f.editor.value != "content of a" {
		t.Fatalf("remaining tab not activated: active=%q editor=%q", activeID(f.store.Tabs()), f.editor.value)
	}

	if err := f.store.CloseFile(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	tabs := f.store.Tabs()
	if len(tabs.Tabs) != 0 || tabs.ActiveFileID != nil {
		t.Fatalf("tabs = %+v, want none", tabs)
	}
	if f.editor.value != "" {
		t.Errorf("editor = %q, want blank", f.editor.value)
	}
	if _, ok := f.store.ActiveFile(); ok {
		t.Error("ActiveFile reported a file with no tabs open")
	}
}

func TestDeleteFile_ClosesTab(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFile(t, "a.txt", nil)
	f.mustOpen(t, a.ID)

	if err := f.store.DeleteFile(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if len(f.store.Tabs().Tabs) != 0 {
		t.Error("deleted file still has a tab")
	}
	f.assertConsistent(t)
}

func TestSaveActiveFile(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreateFile(t, "a.py", nil)
	f.mustOpen(t, a.ID)
	f.editor.value = "print('edited')"

	saved, err := f.store.SaveActiveFile(context.Background())
	if err != nil {
		t.Fatalf("SaveActiveFile() failed: %v", err)
	}
	if saved.ID != a.ID || saved.Content != "print('edited')" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestMoveFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFolder(t, "a", nil)
	b := f.mustCreateFolder(t, "b", &a.ID)
	c := f.mustCreateFolder(t, "c", nil)

	if _, err := f.store.MoveFolder(ctx, a.ID, &a.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("move into self error = %v", err)
	}
	if _, err := f.store.MoveFolder(ctx, a.ID, &b.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("move into descendant error = %v", err)
	}
	missing := "folder-missing"
	if _, err := f.store.MoveFolder(ctx, a.ID, &missing); !IsNotFound(err) {
		t.Errorf("move into missing folder error = %v", err)
	}

	moved, err := f.store.MoveFolder(ctx, b.ID, &c.ID)
	if err != nil {
		t.Fatalf("MoveFolder() failed: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != c.ID {
		t.Errorf("parent = %v, want %s", moved.ParentID, c.ID)
	}
	if got, _ := f.store.FindFolderByID(a.ID); len(got.FolderIDs) != 0 {
		t.Errorf("old parent still lists child: %v", got.FolderIDs)
	}

	if _, err := f.store.MoveFolder(ctx, b.ID, nil); err != nil {
		t.Fatal(err)
	}
	f.assertConsistent(t)
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.store.ImportFile(ctx, docsysSvc.UploadedFile{
		Filename: `C:\Users\me\report.json`,
		Content:  strings.NewReader(`{"ok":true}`),
	}, nil)
	if err != nil {
		t.Fatalf("ImportFile() failed: %v", err)
	}
	if file.Name != "report.json" || file.Language != "json" || file.Content != `{"ok":true}` {
		t.Errorf("imported = %+v", file)
	}
	if activeID(f.store.Tabs()) != file.ID || f.editor.value != `{"ok":true}` {
		t.Error("imported file should be open and active")
	}

	plain, err := f.store.ImportFile(ctx, docsysSvc.UploadedFile{
		Filename: "LICENSE",
		Content:  strings.NewReader("MIT"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Language != "plaintext" {
		t.Errorf("language = %q, want plaintext", plain.Language)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

func TestImportFile_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.ImportFile(ctx, docsysSvc.UploadedFile{Filename: "a.txt", Content: failingReader{}}, nil); err == nil {
		t.Error("expected read failure")
	}

	big := strings.NewReader(strings.Repeat("x", 5<<20+1))
	if _, err := f.store.ImportFile(ctx, docsysSvc.UploadedFile{Filename: "big.txt", Content: big}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized import error = %v, want ErrValidation", err)
	}

	if len(f.store.ListFiles()) != 0 || len(f.store.Tabs().Tabs) != 0 {
		t.Error("failed imports must not create files or tabs")
	}
}

func TestExportFile(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreateFile(t, "a.sql", nil)
	saves := f.gateway.saves

	export, err := f.store.ExportFile(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if export.Filename != "a.sql" || export.Content != a.Content {
		t.Errorf("export = %+v", export)
	}
	if f.gateway.saves != saves {
		t.Error("export must not persist")
	}
}

func TestLoadFileSystem_StarterFiles(t *testing.T) {
	f := newFixture(t)
	f.store.LoadFileSystem(context.Background())

	files := f.store.ListFiles()
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	if got := strings.Join(names, ","); got != "index.html,README.md,script.js,styles.css" {
		t.Errorf("starter files = %s", got)
	}
	if f.gateway.stored == nil {
		t.Error("starter files should be persisted")
	}
	if len(f.notifier.trees) == 0 || len(f.notifier.tabs) == 0 {
		t.Error("load should refresh both views")
	}
}

func TestLoadFileSystem_CorruptSnapshotFallsBack(t *testing.T) {
	f := newFixture(t)
	f.gateway.loadErr = fmt.Errorf("decode: %w", docsysRepo.ErrCorruptSnapshot)

	f.store.LoadFileSystem(context.Background())

	if len(f.store.ListFiles()) != 4 {
		t.Errorf("got %d files, want the 4 starter files", len(f.store.ListFiles()))
	}
	if f.gateway.stored == nil || len(f.gateway.stored.Files) != 4 {
		t.Error("starter files should replace a corrupt snapshot")
	}
}

func TestLoadFileSystem_ReadErrorKeepsStoredSnapshot(t *testing.T) {
	f := newFixture(t)
	f.store.LoadFileSystem(context.Background())
	keep := "package main"
	if _, err := f.store.CreateFile(context.Background(), &docsysSvc.CreateFileRequest{Name: "precious.go", Content: &keep}); err != nil {
		t.Fatal(err)
	}
	before := f.gateway.stored
	saves := f.gateway.saves

	f.gateway.loadErr = errors.New("connection refused")
	f.store.LoadFileSystem(context.Background())

	if len(f.store.ListFiles()) != 4 {
		t.Errorf("got %d files in memory, want the 4 starter files", len(f.store.ListFiles()))
	}
	if _, err := f.store.CreateFile(context.Background(), &docsysSvc.CreateFileRequest{Name: "scratch.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := f.store.SaveFileSystem(context.Background()); !errors.Is(err, ErrWritesHeld) {
		t.Errorf("SaveFileSystem() error = %v, want ErrWritesHeld", err)
	}
	if f.gateway.saves != saves || f.gateway.stored != before {
		t.Fatalf("stored snapshot was written %d times after a failed read", f.gateway.saves-saves)
	}
	if len(before.Files) != 5 {
		t.Errorf("stored snapshot has %d files, want 5", len(before.Files))
	}

	// A later successful read lifts the hold
	f.gateway.loadErr = nil
	f.store.LoadFileSystem(context.Background())
	if len(f.store.ListFiles()) != 5 {
		t.Errorf("got %d files after reload, want 5", len(f.store.ListFiles()))
	}
	if err := f.store.SaveFileSystem(context.Background()); err != nil {
		t.Errorf("SaveFileSystem() after reload failed: %v", err)
	}
}

func TestLoadFileSystem_InconsistentSnapshotFallsBack(t *testing.T) {
	f := newFixture(t)
	dangling := "folder-gone"
	f.gateway.stored = &models.Snapshot{
		Version: 1,
		Files:   []models.File{{ID: "file-1", Name: "a.txt", FolderID: &dangling}},
	}

	f.store.LoadFileSystem(context.Background())

	if _, ok := f.store.FindFileByID("file-1"); ok {
		t.Error("inconsistent snapshot should have been discarded")
	}
	f.assertConsistent(t)
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.LoadFileSystem(ctx)

	src := f.mustCreateFolder(t, "src", nil)
	nested := f.mustCreateFolder(t, "nested", &src.ID)
	f.mustCreateFile(t, "main.go", &nested.ID)
	f.mustCreateFile(t, "a.js", &src.ID)

	want := f.store.Snapshot()
	if err := f.store.SaveFileSystem(ctx); err != nil {
		t.Fatalf("SaveFileSystem() failed: %v", err)
	}

	// A fresh store over the same gateway
	g := newFixture(t)
	g.gateway = f.gateway
	g.store.gateway = f.gateway
	g.store.LoadFileSystem(ctx)

	got := g.store.Snapshot()
	if len(got.Files) != len(want.Files) || len(got.Folders) != len(want.Folders) {
		t.Fatalf("sizes differ: got %d/%d want %d/%d", len(got.Files), len(got.Folders), len(want.Files), len(want.Folders))
	}
	for i := range want.Files {
		wf, gf := want.Files[i], got.Files[i]
		if wf.ID != gf.ID || wf.Name != gf.Name || wf.Content != gf.Content || wf.Language != gf.Language || ptrString(wf.FolderID) != ptrString(gf.FolderID) {
			t.Errorf("file %d: got %+v want %+v", i, gf, wf)
		}
	}
	for i := range want.Folders {
		wf, gf := want.Folders[i], got.Folders[i]
		if wf.ID != gf.ID || wf.Name != gf.Name || ptrString(wf.ParentID) != ptrString(gf.ParentID) ||
			strings.Join(wf.FileIDs, ",") != strings.Join(gf.FileIDs, ",") ||
			strings.Join(wf.FolderIDs, ",") != strings.Join(gf.FolderIDs, ",") {
			t.Errorf("folder %d: got %+v want %+v", i, gf, wf)
		}
	}
}

func ptrString(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestPersistFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.gateway.saveErr = errors.New("quota exceeded")

	file, err := f.store.CreateFile(context.Background(), &docsysSvc.CreateFileRequest{Name: "a.txt"})
	if err != nil {
		t.Fatalf("CreateFile() returned the storage error: %v", err)
	}
	if _, ok := f.store.FindFileByID(file.ID); !ok {
		t.Error("in-memory state lost after failed save")
	}
	if err := f.store.SaveFileSystem(context.Background()); err == nil {
		t.Error("explicit SaveFileSystem should report the failure")
	}
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateFile(t, "a.txt", nil)
	trees := len(f.notifier.trees)

	if _, err := f.store.SaveFile(ctx, a.ID, "x"); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.trees) != trees {
		t.Error("content saves should not refresh the tree")
	}

	f.mustOpen(t, a.ID)
	if len(f.notifier.tabs) == 0 {
		t.Error("open should refresh tabs")
	}
}

// TestRandomOperations drives the store with seeded random operation
// sequences and checks the structural invariants after every step
func TestRandomOperations(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		f := newFixture(t)
		ctx := context.Background()

		pick := func(ids []string) *string {
			if len(ids) == 0 || rng.Intn(4) == 0 {
				return nil
			}
			return &ids[rng.Intn(len(ids))]
		}

		for step := 0; step < 200; step++ {
			var fileIDs, folderIDs []string
			for _, file := range f.store.ListFiles() {
				fileIDs = append(fileIDs, file.ID)
			}
			for _, folder := range f.store.ListFolders() {
				folderIDs = append(folderIDs, folder.ID)
			}

			var op string
			switch rng.Intn(10) {
			case 0, 1:
				op = "create_file"
				f.store.CreateFile(ctx, &docsysSvc.CreateFileRequest{Name: "f.txt", FolderID: pick(folderIDs)})
			case 2:
				op = "create_folder"
				f.store.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "d", ParentID: pick(folderIDs)})
			case 3:
				op = "rename"
				if id := pick(fileIDs); id != nil {
					f.store.RenameFile(ctx, *id, "r.js")
				}
			case 4:
				op = "delete_file"
				if id := pick(fileIDs); id != nil {
					f.store.DeleteFile(ctx, *id)
				}
			case 5:
				op = "delete_folder"
				if id := pick(folderIDs); id != nil {
					f.store.DeleteFolder(ctx, *id)
				}
			case 6:
				op = "move_file"
				if id := pick(fileIDs); id != nil {
					f.store.MoveFile(ctx, *id, pick(folderIDs))
				}
			case 7:
				op = "move_folder"
				if id := pick(folderIDs); id != nil {
					f.store.MoveFolder(ctx, *id, pick(folderIDs))
				}
			case 8:
				op = "open"
				if id := pick(fileIDs); id != nil {
					f.store.OpenFile(ctx, *id)
				}
			case 9:
				op = "close"
				tabs := f.store.Tabs()
				if len(tabs.Tabs) > 0 {
					f.store.CloseFile(ctx, tabs.Tabs[rng.Intn(len(tabs.Tabs))].ID)
				}
			}

			if err := f.store.CheckConsistency(); err != nil {
				t.Fatalf("seed %d step %d (%s): %v", seed, step, op, err)
			}
		}
	}
}
