package filesystem

import (
	"context"
	"fmt"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	"filebox/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, workspace_id, parent_id, name, type, size, created_at, updated_at`

// maxPathDepth bounds the recursive path query on malformed (cyclic) data
const maxPathDepth = 1024

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) fsRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFile(row pgx.Row) (*models.FileEntry, error) {
	var file models.FileEntry
	err := row.Scan(
		&file.ID,
		&file.WorkspaceID,
		&file.ParentID,
		&file.Name,
		&file.Type,
		&file.Size,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Create creates a new file entry
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.FileEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Files, fileColumns)

	id := uuid.NewString()
	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		id,
		file.WorkspaceID,
		file.ParentID,
		file.Name,
		file.Type,
		file.Size,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Name, domain.ErrConflict)
		}
		if postgres.IsPgCheckViolation(err) {
			return fmt.Errorf("file '%s': %w: %v", file.Name, domain.ErrValidation, err)
		}
		return fmt.Errorf("create file: %w", err)
	}

	file.ID = id
	return nil
}

// GetByID retrieves an entry scoped to a workspace
func (r *PostgresFileRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.FileEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, fileColumns, r.tables.Files)

	file, err := scanFile(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// GetByIDOnly retrieves an entry by ID without workspace scoping
func (r *PostgresFileRepository) GetByIDOnly(ctx context.Context, id string) (*models.FileEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, fileColumns, r.tables.Files)

	file, err := scanFile(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// Update updates name, parent and size of an entry
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.FileEntry) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, size = $3, updated_at = $4
		WHERE id = $5 AND workspace_id = $6
	`, r.tables.Files)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query,
		file.ParentID,
		file.Name,
		file.Size,
		file.UpdatedAt,
		file.ID,
		file.WorkspaceID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Name, domain.ErrConflict)
		}
		if postgres.IsPgCheckViolation(err) {
			return fmt.Errorf("file '%s': %w: %v", file.Name, domain.ErrValidation, err)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes a single entry
func (r *PostgresFileRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Files)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListChildren lists immediate children of parentID, directories first
func (r *PostgresFileRepository) ListChildren(ctx context.Context, parentID, workspaceID string) ([]models.FileEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND parent_id = $2
		ORDER BY type ASC, name ASC
	`, fileColumns, r.tables.Files)

	return r.queryFiles(ctx, query, workspaceID, parentID)
}

// ListAll retrieves all entries of a workspace (flat list) in creation order
func (r *PostgresFileRepository) ListAll(ctx context.Context, workspaceID, entryType string) ([]models.FileEntry, error) {
	if entryType == "" {
		query := fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace_id = $1
			ORDER BY created_at ASC, id ASC
		`, fileColumns, r.tables.Files)
		return r.queryFiles(ctx, query, workspaceID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND type = $2
		ORDER BY created_at ASC, id ASC
	`, fileColumns, r.tables.Files)
	return r.queryFiles(ctx, query, workspaceID, entryType)
}

// GetPath computes the path of an entry using a recursive CTE
func (r *PostgresFileRepository) GetPath(ctx context.Context, id, workspaceID string) (string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE file_path AS (
			SELECT id, parent_id, name::text AS path, 1 AS depth
			FROM %s
			WHERE id = $1 AND workspace_id = $2
			UNION ALL
			SELECT f.id, f.parent_id, f.name || '/' || fp.path, fp.depth + 1
			FROM %s f
			JOIN file_path fp ON f.id = fp.parent_id AND f.workspace_id = $2
			WHERE fp.depth < %d
		)
		SELECT path FROM file_path WHERE parent_id = '' LIMIT 1
	`, r.tables.Files, r.tables.Files, maxPathDepth)

	var path string
	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, workspaceID).Scan(&path)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("path of file %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get file path: %w", err)
	}
	return path, nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, query string, args ...any) ([]models.FileEntry, error) {
	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var files []models.FileEntry
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}
