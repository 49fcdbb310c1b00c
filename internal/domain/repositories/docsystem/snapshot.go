package docsystem

import (
	"context"
	"errors"

	"storm/internal/domain/models/docsystem"
)

// ErrCorruptSnapshot is matched by Load errors for a stored value that
// exists but is unusable. Any other Load error means the store could not be
// read at all.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// PersistenceGateway loads and saves the whole file system in one piece.
// Saves are last-write-wins; there is no merge.
type PersistenceGateway interface {
	// Load returns the stored snapshot, or (nil, nil) when none exists.
	// A stored value that cannot be decoded or validated is an error
	// matching ErrCorruptSnapshot.
	Load(ctx context.Context) (*docsystem.Snapshot, error)

	// Save overwrites the stored snapshot
	Save(ctx context.Context, snapshot *docsystem.Snapshot) error
}
