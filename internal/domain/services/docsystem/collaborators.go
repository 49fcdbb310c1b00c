package docsystem

import "storm/internal/domain/models/docsystem"

// EditorSurface is the text-editing widget the VFS loads files into.
// The widget itself lives in the browser; implementations relay calls.
type EditorSurface interface {
	// GetValue returns the current, possibly unsaved, text
	GetValue() string

	// SetValue replaces the displayed text
	SetValue(text string)

	// SetModelLanguage switches syntax highlighting
	SetModelLanguage(language string)
}

// Notifier receives refresh hooks after structural mutations.
// Calls must not block and must not call back into the VFS.
type Notifier interface {
	RenderFileTree(tree *docsystem.TreeNode)
	RenderTabs(tabs *docsystem.TabState)
}
