package filesystem

import (
	"context"
	"fmt"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	"filebox/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *postgres.RepositoryConfig) fsRepo.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Workspaces)

	id := uuid.NewString()
	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		id,
		workspace.UserID,
		workspace.Name,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("workspace '%s': %w", workspace.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	workspace.ID = id
	return nil
}

// GetByID retrieves a workspace owned by userID
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id, userID string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&ws.ID,
		&ws.UserID,
		&ws.Name,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &ws, nil
}

// GetByName retrieves a workspace by owner and name
func (r *PostgresWorkspaceRepository) GetByName(ctx context.Context, userID, name string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE user_id = $1 AND name = $2
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID, name).Scan(
		&ws.ID,
		&ws.UserID,
		&ws.Name,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace by name: %w", err)
	}

	return &ws, nil
}

// List lists all workspaces owned by userID
func (r *PostgresWorkspaceRepository) List(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC, name ASC
	`, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}

	return workspaces, nil
}
