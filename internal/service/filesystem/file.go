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
	"filebox/internal/domain/repositories"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	"filebox/internal/domain/services"
	fsSvc "filebox/internal/domain/services/filesystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type fileService struct {
	fileRepo   fsRepo.FileRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo fsRepo.FileRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) fsSvc.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateFile creates a new directory or file
func (s *fileService) CreateFile(ctx context.Context, req *fsSvc.CreateFileRequest) (*models.FileEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.authorizer.CanAccessWorkspace(ctx, req.UserID, req.WorkspaceID); err != nil {
		return nil, err
	}

	parentPath := ""
	if req.ParentID != models.RootParentID {
		parent, err := s.getParentDir(ctx, req.ParentID, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		parentPath = s.pathOf(ctx, parent)
	}

	if len(joinPath(parentPath, req.Name)) > config.MaxFilePathLength {
		return nil, fmt.Errorf("%w: path exceeds %d characters", domain.ErrValidation, config.MaxFilePathLength)
	}

	if err := s.checkSiblingName(ctx, req.WorkspaceID, req.ParentID, req.Name, ""); err != nil {
		return nil, err
	}

	size := req.Size
	if req.Type == models.TypeDir {
		size = 0
	}

	now := time.Now()
	file := &models.FileEntry{
		WorkspaceID: req.WorkspaceID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Type:        req.Type,
		Size:        size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}
	file.Path = joinPath(parentPath, file.Name)

	s.logger.Info("file created",
		"id", file.ID,
		"name", file.Name,
		"type", file.Type,
		"workspace_id", file.WorkspaceID,
		"pid", file.ParentID,
		"path", file.Path,
	)

	return file, nil
}

// GetFile retrieves an entry with its computed path
func (s *fileService) GetFile(ctx context.Context, userID, id string) (*models.FileEntry, error) {
	if err := s.authorizer.CanAccessFile(ctx, userID, id); err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	file.Path = s.pathOf(ctx, file)

	return file, nil
}

// UpdateFile renames and/or moves an entry
func (s *fileService) UpdateFile(ctx context.Context, userID, id string, req *fsSvc.UpdateFileRequest) (*models.FileEntry, error) {
	if err := s.authorizer.CanAccessFile(ctx, userID, id); err != nil {
		return nil, err
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		file.Name = strings.TrimSpace(*req.Name)
	}

	// Tri-state: only move if the field was present in the request
	if req.ParentID.Present {
		newParentID := req.ParentID.ValueOr(models.RootParentID)

		if newParentID != models.RootParentID {
			if _, err := s.getParentDir(ctx, newParentID, file.WorkspaceID); err != nil {
				return nil, err
			}
			if err := s.validateNoCircularReference(ctx, file.ID, newParentID, file.WorkspaceID); err != nil {
				return nil, err
			}
		}

		s.logger.Debug("moving file",
			"id", file.ID,
			"from_pid", file.ParentID,
			"to_pid", newParentID,
		)
		file.ParentID = newParentID
	}

	if err := s.checkSiblingName(ctx, file.WorkspaceID, file.ParentID, file.Name, file.ID); err != nil {
		return nil, err
	}

	if err := s.checkPathLength(ctx, file); err != nil {
		return nil, err
	}

	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}
	file.Path = s.pathOf(ctx, file)

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"pid", file.ParentID,
		"path", file.Path,
	)

	return file, nil
}

// DeleteFile deletes an entry and all of its descendants in one transaction
func (s *fileService) DeleteFile(ctx context.Context, userID, id string) error {
	if err := s.authorizer.CanAccessFile(ctx, userID, id); err != nil {
		return err
	}

	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return err
	}

	deleted := 0
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		n, err := s.deleteDescendants(txCtx, file)
		if err != nil {
			return err
		}
		if err := s.fileRepo.Delete(txCtx, file.ID, file.WorkspaceID); err != nil {
			return err
		}
		deleted = n + 1
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"id", file.ID,
		"name", file.Name,
		"workspace_id", file.WorkspaceID,
		"deleted_count", deleted,
	)

	return nil
}

// deleteDescendants deletes everything below a directory, deepest entries first.
func (s *fileService) deleteDescendants(ctx context.Context, root *models.FileEntry) (int, error) {
	order, err := s.descendants(ctx, root)
	if err != nil {
		return 0, err
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := s.fileRepo.Delete(ctx, order[i].ID, root.WorkspaceID); err != nil {
			return 0, fmt.Errorf("delete %q: %w", order[i].Name, err)
		}
		s.logger.Debug("deleted descendant", "id", order[i].ID, "name", order[i].Name)
	}

	return len(order), nil
}

// descendants lists everything below a directory breadth-first, so parents precede children.
func (s *fileService) descendants(ctx context.Context, root *models.FileEntry) ([]models.FileEntry, error) {
	if !root.IsDir() {
		return nil, nil
	}

	var order []models.FileEntry
	visited := map[string]struct{}{root.ID: {}}
	queue := []string{root.ID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		children, err := s.fileRepo.ListChildren(ctx, parentID, root.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", parentID, err)
		}
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			order = append(order, child)
			if child.IsDir() {
				queue = append(queue, child.ID)
			}
		}
	}
	return order, nil
}

// longestSuffix returns the length of the longest relative path below root ("/a/b" is 4).
func (s *fileService) longestSuffix(ctx context.Context, root *models.FileEntry) (int, error) {
	order, err := s.descendants(ctx, root)
	if err != nil {
		return 0, err
	}

	suffix := map[string]int{root.ID: 0}
	longest := 0
	for _, child := range order {
		n := suffix[child.ParentID] + 1 + len(child.Name)
		suffix[child.ID] = n
		longest = max(longest, n)
	}
	return longest, nil
}

// checkPathLength rejects a rename or move that would push the entry, or anything
// below it, past the path limit.
func (s *fileService) checkPathLength(ctx context.Context, file *models.FileEntry) error {
	parentPath := ""
	if file.ParentID != models.RootParentID {
		path, err := s.fileRepo.GetPath(ctx, file.ParentID, file.WorkspaceID)
		if err != nil {
			return fmt.Errorf("%w: parent %s has no path to the root", domain.ErrMalformedHierarchy, file.ParentID)
		}
		parentPath = path
	}

	longest, err := s.longestSuffix(ctx, file)
	if err != nil {
		return err
	}
	if len(joinPath(parentPath, file.Name))+longest > config.MaxFilePathLength {
		return fmt.Errorf("%w: path exceeds %d characters", domain.ErrValidation, config.MaxFilePathLength)
	}
	return nil
}

// ListFiles lists one directory level
func (s *fileService) ListFiles(ctx context.Context, req *fsSvc.ListFilesRequest) ([]models.FileEntry, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Type, validation.In(models.TypeDir, models.TypeFile)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.authorizer.CanAccessWorkspace(ctx, req.UserID, req.WorkspaceID); err != nil {
		return nil, err
	}

	parentPath := ""
	if req.ParentID != models.RootParentID {
		parent, err := s.fileRepo.GetByID(ctx, req.ParentID, req.WorkspaceID)
		if err != nil {
			return nil, err
		}
		parentPath = s.pathOf(ctx, parent)
	}

	children, err := s.fileRepo.ListChildren(ctx, req.ParentID, req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(req.Name))
	files := make([]models.FileEntry, 0, len(children))
	for _, child := range children {
		if req.Type != "" && child.Type != req.Type {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(child.Name), needle) {
			continue
		}
		child.Path = joinPath(parentPath, child.Name)
		files = append(files, child)
	}

	return files, nil
}

// getParentDir loads a prospective parent and checks it is a directory
func (s *fileService) getParentDir(ctx context.Context, parentID, workspaceID string) (*models.FileEntry, error) {
	parent, err := s.fileRepo.GetByID(ctx, parentID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent directory %s does not exist", domain.ErrValidation, parentID)
		}
		return nil, err
	}
	if !parent.IsDir() {
		return nil, fmt.Errorf("%w: parent %q is not a directory", domain.ErrValidation, parent.Name)
	}
	return parent, nil
}

// checkSiblingName rejects a name already used by another entry in the same directory
func (s *fileService) checkSiblingName(ctx context.Context, workspaceID, parentID, name, selfID string) error {
	siblings, err := s.fileRepo.ListChildren(ctx, parentID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != selfID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("an entry named %q already exists in this location", name),
				ResourceType: sibling.Type,
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

// validateNoCircularReference ensures moving an entry won't make it its own ancestor
func (s *fileService) validateNoCircularReference(ctx context.Context, fileID, newParentID, workspaceID string) error {
	if fileID == newParentID {
		return fmt.Errorf("%w: cannot move an entry into itself", domain.ErrValidation)
	}

	visited := make(map[string]struct{})
	currentID := newParentID
	for currentID != models.RootParentID {
		if _, seen := visited[currentID]; seen {
			return fmt.Errorf("%w: ancestor chain of %s loops", domain.ErrCyclicHierarchy, newParentID)
		}
		visited[currentID] = struct{}{}

		parent, err := s.fileRepo.GetByID(ctx, currentID, workspaceID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: ancestor chain of %s ends at a missing entry", domain.ErrMalformedHierarchy, newParentID)
		}
		if err != nil {
			return err
		}
		if parent.ParentID == fileID {
			return fmt.Errorf("%w: cannot move an entry into its own descendant", domain.ErrValidation)
		}
		currentID = parent.ParentID
	}

	return nil
}

// pathOf computes the display path, falling back to the bare name
func (s *fileService) pathOf(ctx context.Context, file *models.FileEntry) string {
	path, err := s.fileRepo.GetPath(ctx, file.ID, file.WorkspaceID)
	if err != nil {
		s.logger.Warn("failed to compute path", "id", file.ID, "error", err)
		return file.Name
	}
	return path
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// validateCreateRequest validates a file creation request
func (s *fileService) validateCreateRequest(req *fsSvc.CreateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name, entryNameRules()...),
		validation.Field(&req.Type, validation.Required, validation.In(models.TypeDir, models.TypeFile)),
		validation.Field(&req.Size, validation.Min(int64(0))),
	)
}

// validateUpdateRequest validates a rename/move request
func (s *fileService) validateUpdateRequest(req *fsSvc.UpdateFileRequest) error {
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}
	if req.Name == nil {
		return nil
	}
	name := strings.TrimSpace(*req.Name)
	return validation.Validate(name, entryNameRules()...)
}
