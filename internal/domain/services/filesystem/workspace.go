package filesystem

import (
	"context"

	"filebox/internal/domain/models/filesystem"
)

// WorkspaceService handles workspace business logic
type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, req *CreateWorkspaceRequest) (*filesystem.Workspace, error)
	GetWorkspace(ctx context.Context, userID, id string) (*filesystem.Workspace, error)
	ListWorkspaces(ctx context.Context, userID string) ([]filesystem.Workspace, error)

	// EnsureWorkspace returns the named workspace, creating it when missing
	EnsureWorkspace(ctx context.Context, userID, name string) (*filesystem.Workspace, error)
}

// CreateWorkspaceRequest represents a workspace creation request
type CreateWorkspaceRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
}
