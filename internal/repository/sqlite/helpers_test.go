package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createEntryCtx(t *testing.T, ctx context.Context, repo fsRepo.FileRepository, workspaceID, name string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.FileEntry{
		WorkspaceID: workspaceID,
		Name:        name,
		Type:        models.TypeDir,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}
