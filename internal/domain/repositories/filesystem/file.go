package filesystem

import (
	"context"

	"filebox/internal/domain/models/filesystem"
)

// FileRepository defines data access operations for file entries
type FileRepository interface {
	// Create creates a new entry and fills in its generated ID
	Create(ctx context.Context, file *filesystem.FileEntry) error

	// GetByID retrieves an entry scoped to a workspace
	GetByID(ctx context.Context, id, workspaceID string) (*filesystem.FileEntry, error)

	// GetByIDOnly retrieves an entry by ID without workspace scoping (used for authorization)
	GetByIDOnly(ctx context.Context, id string) (*filesystem.FileEntry, error)

	// Update updates name, parent and size of an entry
	Update(ctx context.Context, file *filesystem.FileEntry) error

	// Delete deletes a single entry
	Delete(ctx context.Context, id, workspaceID string) error

	// ListChildren lists immediate children of parentID ("" for root)
	ListChildren(ctx context.Context, parentID, workspaceID string) ([]filesystem.FileEntry, error)

	// ListAll retrieves all entries of a workspace as a flat list in creation order.
	// An empty entryType returns every entry.
	ListAll(ctx context.Context, workspaceID, entryType string) ([]filesystem.FileEntry, error)

	// GetPath computes the slash-separated display path of an entry
	GetPath(ctx context.Context, id, workspaceID string) (string, error)
}
