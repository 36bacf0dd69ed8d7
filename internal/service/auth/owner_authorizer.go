package auth

import (
	"context"
	"errors"
	"fmt"

	"filebox/internal/domain"
	fsRepo "filebox/internal/domain/repositories/filesystem"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a resource if they own the workspace that contains it.
type OwnerBasedAuthorizer struct {
	workspaceRepo fsRepo.WorkspaceRepository
	fileRepo      fsRepo.FileRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	workspaceRepo fsRepo.WorkspaceRepository,
	fileRepo fsRepo.FileRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		workspaceRepo: workspaceRepo,
		fileRepo:      fileRepo,
	}
}

// CanAccessWorkspace checks if user owns the workspace
func (a *OwnerBasedAuthorizer) CanAccessWorkspace(ctx context.Context, userID, workspaceID string) error {
	// WorkspaceRepository.GetByID already filters by userID (ownership check)
	_, err := a.workspaceRepo.GetByID(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to workspace %s: %w", workspaceID, domain.ErrForbidden)
		}
		return fmt.Errorf("check workspace access: %w", err)
	}
	return nil
}

// CanAccessFile checks if user can access a file entry (via its workspace)
func (a *OwnerBasedAuthorizer) CanAccessFile(ctx context.Context, userID, fileID string) error {
	file, err := a.fileRepo.GetByIDOnly(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file for auth: %w", err)
	}
	return a.CanAccessWorkspace(ctx, userID, file.WorkspaceID)
}
