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

const fileColumns = `id, workspace_id, parent_id, name, type, size, created_at, updated_at`

// maxPathDepth bounds the recursive path query on malformed (cyclic) data
const maxPathDepth = 1024

// FileRepository implements the FileRepository interface on SQLite
type FileRepository struct {
	db *DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *DB) fsRepo.FileRepository {
	return &FileRepository{db: db}
}

func scanFile(row rowScanner) (*models.FileEntry, error) {
	var file models.FileEntry
	var created, updated int64
	err := row.Scan(
		&file.ID,
		&file.WorkspaceID,
		&file.ParentID,
		&file.Name,
		&file.Type,
		&file.Size,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	file.CreatedAt = time.UnixMilli(created)
	file.UpdatedAt = time.UnixMilli(updated)
	return &file, nil
}

// Create creates a new file entry
func (r *FileRepository) Create(ctx context.Context, file *models.FileEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.db.tables.Files, fileColumns)

	id := uuid.NewString()
	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		id,
		file.WorkspaceID,
		file.ParentID,
		file.Name,
		file.Type,
		file.Size,
		file.CreatedAt.UnixMilli(),
		file.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("file '%s': %w", file.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create file: %w", err)
	}

	file.ID = id
	return nil
}

// GetByID retrieves an entry scoped to a workspace
func (r *FileRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.FileEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND workspace_id = ?`, fileColumns, r.db.tables.Files)

	file, err := scanFile(r.db.executor(ctx).QueryRowContext(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// GetByIDOnly retrieves an entry by ID without workspace scoping
func (r *FileRepository) GetByIDOnly(ctx context.Context, id string) (*models.FileEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, fileColumns, r.db.tables.Files)

	file, err := scanFile(r.db.executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// Update updates name, parent and size of an entry
func (r *FileRepository) Update(ctx context.Context, file *models.FileEntry) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = ?, name = ?, size = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?
	`, r.db.tables.Files)

	result, err := r.db.executor(ctx).ExecContext(ctx, query,
		file.ParentID,
		file.Name,
		file.Size,
		file.UpdatedAt.UnixMilli(),
		file.ID,
		file.WorkspaceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("file '%s': %w", file.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes a single entry
func (r *FileRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND workspace_id = ?`, r.db.tables.Files)

	result, err := r.db.executor(ctx).ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListChildren lists immediate children of parentID, directories first
func (r *FileRepository) ListChildren(ctx context.Context, parentID, workspaceID string) ([]models.FileEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = ? AND parent_id = ?
		ORDER BY type ASC, name ASC
	`, fileColumns, r.db.tables.Files)

	return r.queryFiles(ctx, query, workspaceID, parentID)
}

// ListAll retrieves all entries of a workspace (flat list) in creation order
func (r *FileRepository) ListAll(ctx context.Context, workspaceID, entryType string) ([]models.FileEntry, error) {
	if entryType == "" {
		query := fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace_id = ?
			ORDER BY created_at ASC, rowid ASC
		`, fileColumns, r.db.tables.Files)
		return r.queryFiles(ctx, query, workspaceID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = ? AND type = ?
		ORDER BY created_at ASC, rowid ASC
	`, fileColumns, r.db.tables.Files)
	return r.queryFiles(ctx, query, workspaceID, entryType)
}

// GetPath computes the path of an entry using a recursive CTE
func (r *FileRepository) GetPath(ctx context.Context, id, workspaceID string) (string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE file_path(id, parent_id, path, depth) AS (
			SELECT id, parent_id, name, 1
			FROM %s
			WHERE id = ? AND workspace_id = ?
			UNION ALL
			SELECT f.id, f.parent_id, f.name || '/' || fp.path, fp.depth + 1
			FROM %s f
			JOIN file_path fp ON f.id = fp.parent_id
			WHERE f.workspace_id = ? AND fp.depth < %d
		)
		SELECT path FROM file_path WHERE parent_id = '' LIMIT 1
	`, r.db.tables.Files, r.db.tables.Files, maxPathDepth)

	var path string
	err := r.db.executor(ctx).QueryRowContext(ctx, query, id, workspaceID, workspaceID).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("path of file %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get file path: %w", err)
	}
	return path, nil
}

func (r *FileRepository) queryFiles(ctx context.Context, query string, args ...any) ([]models.FileEntry, error) {
	rows, err := r.db.executor(ctx).QueryContext(ctx, query, args...)
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
