package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/middleware"
	"filebox/internal/repository/sqlite"
	"filebox/internal/service/auth"
	fsService "filebox/internal/service/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "local"

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *sqlite.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(context.Background(), ":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	workspaceRepo := sqlite.NewWorkspaceRepository(db)
	fileRepo := sqlite.NewFileRepository(db)
	authorizer := auth.NewOwnerBasedAuthorizer(workspaceRepo, fileRepo)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Workspaces: NewWorkspaceHandler(fsService.NewWorkspaceService(workspaceRepo, logger), logger),
		Files:      NewFileHandler(fsService.NewFileService(fileRepo, sqlite.NewTransactionManager(db, logger), authorizer, logger), logger),
		Tree:       NewTreeHandler(fsService.NewTreeService(fileRepo, authorizer, "lenient", logger), logger),
	})

	return &testServer{
		t:       t,
		handler: middleware.Chain(mux, middleware.Recovery(logger), middleware.LocalUser(testUser)),
		db:      db,
	}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) workspace() models.Workspace {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/workspaces", `{"name":"default"}`)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Workspace](s.t, w)
}

func (s *testServer) create(workspaceID, pid, name, entryType string) models.FileEntry {
	s.t.Helper()
	body, err := json.Marshal(map[string]any{"workspace_id": workspaceID, "pid": pid, "name": name, "type": entryType})
	require.NoError(s.t, err)
	w := s.do(http.MethodPost, "/api/files", string(body))
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.FileEntry](s.t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
}

func TestWorkspaceRoutes(t *testing.T) {
	s := newTestServer(t)
	ws := s.workspace()
	assert.Equal(t, testUser, ws.UserID)

	// Creating the same name again returns the existing workspace with 409
	w := s.do(http.MethodPost, "/api/workspaces", `{"name":"default"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ws.ID, decode[models.Workspace](t, w).ID)

	w = s.do(http.MethodGet, "/api/workspaces", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Workspace](t, w), 1)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/workspaces/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/workspaces", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/workspaces", `{"name":"x","unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreeRoute(t *testing.T) {
	s := newTestServer(t)
	ws := s.workspace()

	w := s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"workspace_id":"`+ws.ID+`","mode":"lenient","record_count":0,"roots":[],"orphans":[],"cycles":[],"duplicates":[]}`, w.Body.String())

	root := s.create(ws.ID, "", "root", models.TypeDir)
	a := s.create(ws.ID, root.ID, "a", models.TypeDir)
	s.create(ws.ID, root.ID, "b", models.TypeDir)
	s.create(ws.ID, a.ID, "c", models.TypeDir)
	s.create(ws.ID, a.ID, "notes.txt", models.TypeFile)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[models.DirectoryTree](t, w)
	assert.Equal(t, 4, tree.RecordCount)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "root", tree.Roots[0].Title)
	assert.Empty(t, tree.Roots[0].PKey)
	require.Len(t, tree.Roots[0].Children, 2)
	assert.Equal(t, root.ID, tree.Roots[0].Children[0].PKey)
	assert.Len(t, tree.Roots[0].Children[0].Children, 1)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree?files=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[models.DirectoryTree](t, w).RecordCount)

	// The root node encodes without a pkey
	var raw struct {
		Roots []map[string]any `json:"roots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	_, hasPKey := raw.Roots[0]["pkey"]
	assert.False(t, hasPKey)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree?mode=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreeRoute_StrictRejectsOrphans(t *testing.T) {
	s := newTestServer(t)
	ws := s.workspace()
	s.create(ws.ID, "", "root", models.TypeDir)

	// A row whose parent no longer exists, as left behind by an external import
	now := time.Now()
	require.NoError(t, sqlite.NewFileRepository(s.db).Create(context.Background(), &models.FileEntry{
		WorkspaceID: ws.ID, ParentID: "vanished", Name: "lost", Type: models.TypeDir, CreatedAt: now, UpdatedAt: now,
	}))

	w := s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[models.DirectoryTree](t, w)
	assert.Len(t, tree.Roots, 1)
	require.Len(t, tree.Orphans, 1)
	assert.Equal(t, "lost", tree.Orphans[0].Name)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tree?mode=strict", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	problem := decode[map[string]any](t, w)
	assert.Equal(t, "malformed hierarchy", problem["kind"])
	assert.Len(t, problem["orphans"], 1)
	assert.Empty(t, problem["cycles"])
}

func TestFileRoutes(t *testing.T) {
	s := newTestServer(t)
	ws := s.workspace()
	docs := s.create(ws.ID, "", "docs", models.TypeDir)
	archive := s.create(ws.ID, "", "archive", models.TypeDir)
	note := s.create(ws.ID, docs.ID, "note.md", models.TypeFile)
	assert.Equal(t, "docs/note.md", note.Path)

	// Duplicate sibling name returns the existing entry with 409
	w := s.do(http.MethodPost, "/api/files", `{"workspace_id":"`+ws.ID+`","pid":"`+docs.ID+`","name":"note.md","type":"file"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, note.ID, decode[models.FileEntry](t, w).ID)

	w = s.do(http.MethodGet, "/api/files/"+note.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs/note.md", decode[models.FileEntry](t, w).Path)

	w = s.do(http.MethodPatch, "/api/files/"+note.ID, `{"pid":"`+archive.ID+`","name":"old.md"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "archive/old.md", decode[models.FileEntry](t, w).Path)

	w = s.do(http.MethodPatch, "/api/files/"+docs.ID, `{"pid":"`+docs.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/files?parent_id="+archive.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]models.FileEntry](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, "old.md", listed[0].Name)

	w = s.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/files?type=dir", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.FileEntry](t, w), 2)

	w = s.do(http.MethodDelete, "/api/files/"+archive.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/files/"+note.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Absent pid keeps the parent, null moves to the root
	x := s.create(ws.ID, docs.ID, "x.md", models.TypeFile)
	w = s.do(http.MethodPatch, "/api/files/"+x.ID, `{"name":"y.md"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "docs/y.md", decode[models.FileEntry](t, w).Path)

	w = s.do(http.MethodPatch, "/api/files/"+x.ID, `{"pid":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "y.md", decode[models.FileEntry](t, w).Path)
}

type failingTrees struct{ err error }

func (s failingTrees) GetDirectoryTree(context.Context, string, string, fsSvc.TreeOptions) (*models.DirectoryTree, error) {
	return nil, s.err
}

func TestGetTree_UnexpectedErrorIsLoggedByHandler(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/workspaces/{id}/tree", NewTreeHandler(failingTrees{err: errors.New("disk on fire")}, logger).GetTree)
	h := middleware.Chain(mux, middleware.RequestLogger(slog.New(slog.DiscardHandler)))

	r := httptest.NewRequest(http.MethodGet, "/api/workspaces/ws-1/tree", nil)
	r.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
	assert.Contains(t, logs.String(), `"msg":"unhandled error"`)
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), "disk on fire")
}
