package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Services call the authorizer before operating on resources.
type ResourceAuthorizer interface {
	// CanAccessWorkspace checks if user can access a workspace
	CanAccessWorkspace(ctx context.Context, userID, workspaceID string) error

	// CanAccessFile checks if user can access a file entry (via its workspace)
	CanAccessFile(ctx context.Context, userID, fileID string) error
}
