package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:", "test_")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createWorkspace(t *testing.T, db *DB, userID, name string) *models.Workspace {
	t.Helper()
	now := time.Now()
	ws := &models.Workspace{UserID: userID, Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewWorkspaceRepository(db).Create(context.Background(), ws))
	return ws
}

func createEntry(t *testing.T, db *DB, workspaceID, parentID, name, entryType string) *models.FileEntry {
	t.Helper()
	now := time.Now()
	file := &models.FileEntry{
		WorkspaceID: workspaceID,
		ParentID:    parentID,
		Name:        name,
		Type:        entryType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, NewFileRepository(db).Create(context.Background(), file))
	return file
}

func TestOpen_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// Reopening applies the schema again without error
	db, err = Open(context.Background(), path, "")
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestWorkspaceRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewWorkspaceRepository(db)

	ws := createWorkspace(t, db, "user-1", "notes")
	require.NotEmpty(t, ws.ID)

	got, err := repo.GetByID(ctx, ws.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "notes", got.Name)
	assert.Equal(t, ws.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	_, err = repo.GetByID(ctx, ws.ID, "user-2")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	byName, err := repo.GetByName(ctx, "user-1", "notes")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, byName.ID)

	dup := &models.Workspace{UserID: "user-1", Name: "notes", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	assert.True(t, errors.Is(repo.Create(ctx, dup), domain.ErrConflict))

	createWorkspace(t, db, "user-1", "archive")
	createWorkspace(t, db, "user-2", "other")

	list, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "notes", list[0].Name)
	assert.Equal(t, "archive", list[1].Name)
}

func TestFileRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)
	ws := createWorkspace(t, db, "user-1", "default")

	docs := createEntry(t, db, ws.ID, models.RootParentID, "docs", models.TypeDir)
	readme := createEntry(t, db, ws.ID, docs.ID, "readme.md", models.TypeFile)

	got, err := repo.GetByID(ctx, readme.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, docs.ID, got.ParentID)
	assert.Equal(t, models.TypeFile, got.Type)

	_, err = repo.GetByID(ctx, readme.ID, "other-workspace")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	only, err := repo.GetByIDOnly(ctx, readme.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, only.WorkspaceID)

	dup := &models.FileEntry{WorkspaceID: ws.ID, ParentID: docs.ID, Name: "readme.md", Type: models.TypeFile}
	assert.True(t, errors.Is(repo.Create(ctx, dup), domain.ErrConflict))

	got.Name = "README.md"
	got.Size = 42
	got.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, readme.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "README.md", updated.Name)
	assert.Equal(t, int64(42), updated.Size)

	require.NoError(t, repo.Delete(ctx, readme.ID, ws.ID))
	_, err = repo.GetByIDOnly(ctx, readme.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, readme.ID, ws.ID), domain.ErrNotFound))

	missing := &models.FileEntry{ID: "nope", WorkspaceID: ws.ID, Name: "x"}
	assert.True(t, errors.Is(repo.Update(ctx, missing), domain.ErrNotFound))
}

func TestFileRepository_Listing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)
	ws := createWorkspace(t, db, "user-1", "default")

	src := createEntry(t, db, ws.ID, models.RootParentID, "src", models.TypeDir)
	createEntry(t, db, ws.ID, models.RootParentID, "main.go", models.TypeFile)
	createEntry(t, db, ws.ID, models.RootParentID, "bin", models.TypeDir)
	createEntry(t, db, ws.ID, src.ID, "lib.go", models.TypeFile)

	root, err := repo.ListChildren(ctx, models.RootParentID, ws.ID)
	require.NoError(t, err)
	names := make([]string, len(root))
	for i, f := range root {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"bin", "src", "main.go"}, names)

	all, err := repo.ListAll(ctx, ws.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "src", all[0].Name)
	assert.Equal(t, "lib.go", all[3].Name)

	dirs, err := repo.ListAll(ctx, ws.ID, models.TypeDir)
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, "src", dirs[0].Name)
	assert.Equal(t, "bin", dirs[1].Name)

	empty, err := repo.ListAll(ctx, "no-such-workspace", "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileRepository_GetPath(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)
	ws := createWorkspace(t, db, "user-1", "default")

	a := createEntry(t, db, ws.ID, models.RootParentID, "a", models.TypeDir)
	b := createEntry(t, db, ws.ID, a.ID, "b", models.TypeDir)
	c := createEntry(t, db, ws.ID, b.ID, "c.txt", models.TypeFile)

	path, err := repo.GetPath(ctx, c.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.txt", path)

	path, err = repo.GetPath(ctx, a.ID, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", path)

	// A detached entry has no path to a root
	lost := createEntry(t, db, ws.ID, "gone", "lost", models.TypeDir)
	_, err = repo.GetPath(ctx, lost.ID, ws.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFileRepository_GetPathTerminatesOnCycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)
	ws := createWorkspace(t, db, "user-1", "default")

	x := createEntry(t, db, ws.ID, models.RootParentID, "x", models.TypeDir)
	y := createEntry(t, db, ws.ID, x.ID, "y", models.TypeDir)
	x.ParentID = y.ID
	require.NoError(t, repo.Update(ctx, x))

	_, err := repo.GetPath(ctx, y.ID, ws.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransactionManager(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)
	tm := NewTransactionManager(db, discardLogger())
	ws := createWorkspace(t, db, "user-1", "default")

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		createEntryCtx(t, txCtx, repo, ws.ID, "rolled-back")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.ListAll(ctx, ws.ID, "")
	require.NoError(t, err)
	assert.Empty(t, all)

	err = tm.ExecTx(ctx, func(txCtx context.Context) error {
		createEntryCtx(t, txCtx, repo, ws.ID, "outer")
		return tm.ExecTx(txCtx, func(inner context.Context) error {
			createEntryCtx(t, inner, repo, ws.ID, "inner")
			return nil
		})
	})
	require.NoError(t, err)

	all, err = repo.ListAll(ctx, ws.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
