// Package repository opens the configured storage backend.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"filebox/internal/config"
	"filebox/internal/domain/repositories"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	"filebox/internal/repository/postgres"
	pgFS "filebox/internal/repository/postgres/filesystem"
	"filebox/internal/repository/sqlite"
)

// Store bundles the repositories of one backend
type Store struct {
	Driver     string // "postgres" or "sqlite"
	Workspaces fsRepo.WorkspaceRepository
	Files      fsRepo.FileRepository
	TxManager  repositories.TransactionManager

	close func() error
}

// Open connects to PostgreSQL when dsn is a postgres:// URL and opens a SQLite file
// otherwise. The schema is created when missing.
func Open(ctx context.Context, dsn, tablePrefix string, logger *slog.Logger) (*Store, error) {
	if config.IsPostgresURL(dsn) {
		return openPostgres(ctx, dsn, tablePrefix, logger)
	}
	return openSQLite(ctx, dsn, tablePrefix, logger)
}

// Close releases the underlying connections
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openPostgres(ctx context.Context, dsn, tablePrefix string, logger *slog.Logger) (*Store, error) {
	pool, err := postgres.CreateConnectionPool(ctx, dsn)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(tablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	logger.Info("database connected", "driver", "postgres", "table_prefix", tablePrefix)

	return &Store{
		Driver:     "postgres",
		Workspaces: pgFS.NewWorkspaceRepository(repoConfig),
		Files:      pgFS.NewFileRepository(repoConfig),
		TxManager:  postgres.NewTransactionManager(pool, logger),
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, path, tablePrefix string, logger *slog.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, path, tablePrefix)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	logger.Info("database connected", "driver", "sqlite", "path", db.Path(), "table_prefix", tablePrefix)

	return &Store{
		Driver:     "sqlite",
		Workspaces: sqlite.NewWorkspaceRepository(db),
		Files:      sqlite.NewFileRepository(db),
		TxManager:  sqlite.NewTransactionManager(db, logger),
		close:      db.Close,
	}, nil
}
