package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"filebox/internal/config"
	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/repository"
	authService "filebox/internal/service/auth"
	fsService "filebox/internal/service/filesystem"
)

// options are the persistent flags shared by every command
type options struct {
	database  string
	prefix    string
	workspace string
	user      string
	verbose   bool
}

// app is the wired service graph for one CLI invocation
type app struct {
	store      *repository.Store
	workspaces fsSvc.WorkspaceService
	files      fsSvc.FileService
	trees      fsSvc.TreeService
	logger     *slog.Logger
	userID     string
	workspace  *models.Workspace
}

func openApp(ctx context.Context, opts *options, cfg *config.Config) (*app, error) {
	logOut := io.Discard
	if opts.verbose {
		logOut = os.Stderr
	}
	logger := config.NewLogger(cfg.Environment, logOut)

	store, err := repository.Open(ctx, opts.database, opts.prefix, logger)
	if err != nil {
		return nil, err
	}

	authorizer := authService.NewOwnerBasedAuthorizer(store.Workspaces, store.Files)
	a := &app{
		store:      store,
		workspaces: fsService.NewWorkspaceService(store.Workspaces, logger),
		files:      fsService.NewFileService(store.Files, store.TxManager, authorizer, logger),
		trees:      fsService.NewTreeService(store.Files, authorizer, cfg.TreeMode, logger),
		logger:     logger,
		userID:     opts.user,
	}

	a.workspace, err = a.workspaces.EnsureWorkspace(ctx, opts.user, opts.workspace)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// splitPath turns "a/b/c" into its non-empty segments
func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

// child returns the entry called name directly under parentID, or nil
func (a *app) child(ctx context.Context, parentID, name string) (*models.FileEntry, error) {
	entries, err := a.files.ListFiles(ctx, &fsSvc.ListFilesRequest{
		UserID:      a.userID,
		WorkspaceID: a.workspace.ID,
		ParentID:    parentID,
		Name:        name,
	})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Name == name {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// resolve walks a slash-separated path from the workspace root.
// The empty path resolves to the root (nil entry); a missing segment matches domain.ErrNotFound.
func (a *app) resolve(ctx context.Context, p string) (*models.FileEntry, error) {
	var current *models.FileEntry
	parentID := models.RootParentID
	for _, part := range splitPath(p) {
		entry, err := a.child(ctx, parentID, part)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fmt.Errorf("%s: no such file or directory: %w", p, domain.ErrNotFound)
		}
		current = entry
		parentID = entry.ID
	}
	return current, nil
}

// resolveDir resolves p and checks it is a directory; returns the parent id to use
func (a *app) resolveDir(ctx context.Context, p string) (string, error) {
	entry, err := a.resolve(ctx, p)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return models.RootParentID, nil
	}
	if !entry.IsDir() {
		return "", fmt.Errorf("%s: not a directory", p)
	}
	return entry.ID, nil
}

// parentAndBase splits a path into its directory and final element
func parentAndBase(p string) (string, string) {
	clean := path.Clean("/" + p)
	return strings.TrimPrefix(path.Dir(clean), "/"), path.Base(clean)
}
