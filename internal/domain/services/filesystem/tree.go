package filesystem

import (
	"context"

	"filebox/internal/domain/models/filesystem"
)

// Tree build modes
const (
	ModeLenient = "lenient"
	ModeStrict  = "strict"
)

// TreeService defines operations for building directory trees
type TreeService interface {
	// GetDirectoryTree fetches the flat entries of a workspace and nests them.
	// userID is used for authorization check
	GetDirectoryTree(ctx context.Context, userID, workspaceID string, opts TreeOptions) (*filesystem.DirectoryTree, error)
}

// TreeOptions controls how the tree is built
type TreeOptions struct {
	Mode         string // ModeLenient (default) or ModeStrict
	IncludeFiles bool   // include file entries, not only directories
}
