package filesystem

import (
	"context"
	"io"
	"log/slog"
	"testing"

	models "filebox/internal/domain/models/filesystem"
	fsRepo "filebox/internal/domain/repositories/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/repository/sqlite"
	"filebox/internal/service/auth"

	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

// fixture wires the services over an in-memory SQLite store
type fixture struct {
	ctx        context.Context
	files      fsRepo.FileRepository
	workspaces fsSvc.WorkspaceService
	fileSvc    fsSvc.FileService
	treeSvc    fsSvc.TreeService
	workspace  *models.Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(ctx, ":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	workspaceRepo := sqlite.NewWorkspaceRepository(db)
	fileRepo := sqlite.NewFileRepository(db)
	authorizer := auth.NewOwnerBasedAuthorizer(workspaceRepo, fileRepo)

	f := &fixture{
		ctx:        ctx,
		files:      fileRepo,
		workspaces: NewWorkspaceService(workspaceRepo, logger),
		fileSvc:    NewFileService(fileRepo, sqlite.NewTransactionManager(db, logger), authorizer, logger),
		treeSvc:    NewTreeService(fileRepo, authorizer, "", logger),
	}

	f.workspace, err = f.workspaces.EnsureWorkspace(ctx, testUser, "default")
	require.NoError(t, err)
	return f
}

func (f *fixture) mkdir(t *testing.T, parentID, name string) *models.FileEntry {
	t.Helper()
	return f.create(t, parentID, name, models.TypeDir)
}

func (f *fixture) touch(t *testing.T, parentID, name string) *models.FileEntry {
	t.Helper()
	return f.create(t, parentID, name, models.TypeFile)
}

func (f *fixture) create(t *testing.T, parentID, name, entryType string) *models.FileEntry {
	t.Helper()
	file, err := f.fileSvc.CreateFile(f.ctx, &fsSvc.CreateFileRequest{
		UserID:      testUser,
		WorkspaceID: f.workspace.ID,
		ParentID:    parentID,
		Type:        entryType,
		Name:        name,
	})
	require.NoError(t, err)
	return file
}
