package filesystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"filebox/internal/config"
	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// workspaceService implements the WorkspaceService interface
type workspaceService struct {
	workspaceRepo fsRepo.WorkspaceRepository
	logger        *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo fsRepo.WorkspaceRepository,
	logger *slog.Logger,
) fsSvc.WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		logger:        logger,
	}
}

// CreateWorkspace creates a new workspace
func (s *workspaceService) CreateWorkspace(ctx context.Context, req *fsSvc.CreateWorkspaceRequest) (*models.Workspace, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.workspaceRepo.GetByName(ctx, req.UserID, req.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a workspace named %q already exists", req.Name),
			ResourceType: "workspace",
			ResourceID:   existing.ID,
		}
	}

	now := time.Now()
	workspace := &models.Workspace{
		UserID:    req.UserID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		"id", workspace.ID,
		"name", workspace.Name,
		"user_id", req.UserID,
	)

	return workspace, nil
}

// GetWorkspace retrieves a workspace owned by userID
func (s *workspaceService) GetWorkspace(ctx context.Context, userID, id string) (*models.Workspace, error) {
	return s.workspaceRepo.GetByID(ctx, id, userID)
}

// ListWorkspaces retrieves all workspaces for a user
func (s *workspaceService) ListWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error) {
	workspaces, err := s.workspaceRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	return workspaces, nil
}

// EnsureWorkspace returns the named workspace, creating it on first use
func (s *workspaceService) EnsureWorkspace(ctx context.Context, userID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	workspace, err := s.workspaceRepo.GetByName(ctx, userID, name)
	if err == nil {
		return workspace, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	workspace, err = s.CreateWorkspace(ctx, &fsSvc.CreateWorkspaceRequest{UserID: userID, Name: name})
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent creator
		return s.workspaceRepo.GetByName(ctx, userID, name)
	}
	return workspace, err
}

// validateCreateRequest validates a workspace creation request
func (s *workspaceService) validateCreateRequest(req *fsSvc.CreateWorkspaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxWorkspaceNameLength)),
	)
}
