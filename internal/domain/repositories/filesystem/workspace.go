package filesystem

import (
	"context"

	"filebox/internal/domain/models/filesystem"
)

// WorkspaceRepository defines data access operations for workspaces
type WorkspaceRepository interface {
	// Create creates a new workspace and fills in its generated ID
	Create(ctx context.Context, workspace *filesystem.Workspace) error

	// GetByID retrieves a workspace owned by userID
	GetByID(ctx context.Context, id, userID string) (*filesystem.Workspace, error)

	// GetByName retrieves a workspace by owner and name
	GetByName(ctx context.Context, userID, name string) (*filesystem.Workspace, error)

	// List lists all workspaces owned by userID
	List(ctx context.Context, userID string) ([]filesystem.Workspace, error)
}
