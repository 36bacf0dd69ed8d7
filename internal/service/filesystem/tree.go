package filesystem

import (
	"context"
	"fmt"
	"log/slog"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	"filebox/internal/domain/services"
	fsSvc "filebox/internal/domain/services/filesystem"
)

// treeService implements the TreeService interface
type treeService struct {
	fileRepo    fsRepo.FileRepository
	authorizer  services.ResourceAuthorizer
	defaultMode string
	logger      *slog.Logger
}

// NewTreeService creates a new tree service. defaultMode applies when a request does not
// name a mode.
func NewTreeService(
	fileRepo fsRepo.FileRepository,
	authorizer services.ResourceAuthorizer,
	defaultMode string,
	logger *slog.Logger,
) fsSvc.TreeService {
	if defaultMode == "" {
		defaultMode = fsSvc.ModeLenient
	}
	return &treeService{
		fileRepo:    fileRepo,
		authorizer:  authorizer,
		defaultMode: defaultMode,
		logger:      logger,
	}
}

// GetDirectoryTree builds and returns the nested directory tree for a workspace
func (s *treeService) GetDirectoryTree(ctx context.Context, userID, workspaceID string, opts fsSvc.TreeOptions) (*models.DirectoryTree, error) {
	mode := opts.Mode
	if mode == "" {
		mode = s.defaultMode
	}
	if mode != fsSvc.ModeLenient && mode != fsSvc.ModeStrict {
		return nil, fmt.Errorf("%w: unknown tree mode %q", domain.ErrValidation, mode)
	}

	if err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	entryType := models.TypeDir
	if opts.IncludeFiles {
		entryType = ""
	}
	entries, err := s.fileRepo.ListAll(ctx, workspaceID, entryType)
	if err != nil {
		return nil, fmt.Errorf("list workspace entries: %w", err)
	}

	records := make([]models.DirectoryRecord, len(entries))
	for i := range entries {
		records[i] = entries[i].Record()
	}

	forest, err := Build(records, BuildOptions{Strict: mode == fsSvc.ModeStrict})
	if err != nil {
		s.logger.Warn("directory tree rejected",
			"workspace_id", workspaceID,
			"record_count", len(records),
			"error", err,
		)
		return nil, err
	}

	if n := len(forest.Orphans) + len(forest.Cycles) + len(forest.Duplicates); n > 0 {
		s.logger.Warn("directory tree has unplaced records",
			"workspace_id", workspaceID,
			"orphans", len(forest.Orphans),
			"cycles", len(forest.Cycles),
			"duplicates", len(forest.Duplicates),
		)
	}

	s.logger.Info("directory tree built",
		"workspace_id", workspaceID,
		"mode", mode,
		"record_count", len(records),
		"root_count", len(forest.Roots),
	)

	return &models.DirectoryTree{
		WorkspaceID: workspaceID,
		Mode:        mode,
		RecordCount: len(records),
		Roots:       forest.Roots,
		Orphans:     forest.Orphans,
		Cycles:      forest.Cycles,
		Duplicates:  forest.Duplicates,
	}, nil
}
