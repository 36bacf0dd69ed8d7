package filesystem

import (
	"errors"
	"testing"
	"time"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertRaw writes an entry straight through the repository, skipping service checks
func (f *fixture) insertRaw(t *testing.T, parentID, name string) *models.FileEntry {
	t.Helper()
	now := time.Now()
	file := &models.FileEntry{
		WorkspaceID: f.workspace.ID,
		ParentID:    parentID,
		Name:        name,
		Type:        models.TypeDir,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.files.Create(f.ctx, file))
	return file
}

func TestTreeService_EmptyWorkspace(t *testing.T) {
	f := newFixture(t)

	tree, err := f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, f.workspace.ID, tree.WorkspaceID)
	assert.Equal(t, fsSvc.ModeLenient, tree.Mode)
	assert.Zero(t, tree.RecordCount)
	require.NotNil(t, tree.Roots)
	assert.Empty(t, tree.Roots)
}

func TestTreeService_DirectoriesOnlyByDefault(t *testing.T) {
	f := newFixture(t)
	src := f.mkdir(t, models.RootParentID, "src")
	internal := f.mkdir(t, src.ID, "internal")
	f.touch(t, src.ID, "main.go")
	docs := f.mkdir(t, models.RootParentID, "docs")

	tree, err := f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, tree.RecordCount)
	assert.Equal(t, []string{src.ID, docs.ID}, keys(tree.Roots))
	assert.Equal(t, []string{internal.ID}, keys(tree.Roots[0].Children))
	assert.Equal(t, src.ID, tree.Roots[0].Children[0].PKey)
	assert.Equal(t, "internal", tree.Roots[0].Children[0].Title)

	withFiles, err := f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{IncludeFiles: true})
	require.NoError(t, err)
	assert.Equal(t, 4, withFiles.RecordCount)
	assert.Len(t, withFiles.Roots[0].Children, 2)
}

func TestTreeService_OrphansAndCycles(t *testing.T) {
	f := newFixture(t)
	root := f.mkdir(t, models.RootParentID, "root")
	orphan := f.insertRaw(t, "deleted-parent", "orphan")

	a := f.mkdir(t, models.RootParentID, "a")
	b := f.mkdir(t, models.RootParentID, "b")
	a.ParentID = b.ID
	require.NoError(t, f.files.Update(f.ctx, a))
	b.ParentID = a.ID
	require.NoError(t, f.files.Update(f.ctx, b))

	tree, err := f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{root.ID}, keys(tree.Roots))
	assert.Equal(t, []string{orphan.ID}, recordIDs(tree.Orphans))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, recordIDs(tree.Cycles))

	_, err = f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{Mode: fsSvc.ModeStrict})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCyclicHierarchy))

	var hierErr *domain.HierarchyError
	require.True(t, errors.As(err, &hierErr))
	assert.Equal(t, []string{orphan.ID}, hierErr.Orphans)
}

func TestTreeService_Rejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.treeSvc.GetDirectoryTree(f.ctx, testUser, f.workspace.ID, fsSvc.TreeOptions{Mode: "loose"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.treeSvc.GetDirectoryTree(f.ctx, "intruder", f.workspace.ID, fsSvc.TreeOptions{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
