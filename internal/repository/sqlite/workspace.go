package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"

	"github.com/google/uuid"
)

// WorkspaceRepository implements the WorkspaceRepository interface on SQLite
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) fsRepo.WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row rowScanner) (*models.Workspace, error) {
	var ws models.Workspace
	var created, updated int64
	if err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &created, &updated); err != nil {
		return nil, err
	}
	ws.CreatedAt = time.UnixMilli(created)
	ws.UpdatedAt = time.UnixMilli(updated)
	return &ws, nil
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.db.tables.Workspaces)

	id := uuid.NewString()
	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		id,
		workspace.UserID,
		workspace.Name,
		workspace.CreatedAt.UnixMilli(),
		workspace.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("workspace '%s': %w", workspace.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	workspace.ID = id
	return nil
}

// GetByID retrieves a workspace owned by userID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id, userID string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE id = ? AND user_id = ?
	`, r.db.tables.Workspaces)

	ws, err := scanWorkspace(r.db.executor(ctx).QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return ws, nil
}

// GetByName retrieves a workspace by owner and name
func (r *WorkspaceRepository) GetByName(ctx context.Context, userID, name string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE user_id = ? AND name = ?
	`, r.db.tables.Workspaces)

	ws, err := scanWorkspace(r.db.executor(ctx).QueryRowContext(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace by name: %w", err)
	}
	return ws, nil
}

// List lists all workspaces owned by userID
func (r *WorkspaceRepository) List(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, r.db.tables.Workspaces)

	rows, err := r.db.executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, *ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}
