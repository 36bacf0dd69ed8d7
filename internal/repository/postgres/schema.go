package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the workspace and file tables when they do not exist.
// parent_id stores "" for root entries and has no foreign key, so rows whose parent
// disappeared stay visible to the tree builder as orphans.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Workspaces + ` (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL REFERENCES ` + tables.Workspaces + `(id) ON DELETE CASCADE,
			parent_id TEXT NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('dir', 'file')),
			size BIGINT NOT NULL DEFAULT 0 CHECK (size >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(workspace_id, parent_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `files_workspace_parent ON ` + tables.Files + `(workspace_id, parent_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the prefixed tables, files first.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Files, tables.Workspaces} {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
