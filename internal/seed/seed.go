// Package seed loads YAML workspace layouts and creates them through the file service.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"

	"gopkg.in/yaml.v3"
)

// Document is a seed file: a workspace name and its entry tree.
//
//	workspace: default
//	entries:
//	  - name: docs
//	    children:
//	      - name: readme.md
//	        type: file
//	        size: 120
type Document struct {
	Workspace string  `yaml:"workspace"`
	Entries   []Entry `yaml:"entries"`
}

// Entry is one directory or file. Type defaults to "dir" when the entry has children
// and to "file" otherwise.
type Entry struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Size     int64   `yaml:"size"`
	Children []Entry `yaml:"children"`
}

// Result counts what Apply did
type Result struct {
	WorkspaceID string
	Created     int
	Skipped     int
}

// Load parses a seed document
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty seed document")
		}
		return nil, fmt.Errorf("parse seed document: %w", err)
	}
	if doc.Workspace == "" {
		doc.Workspace = "default"
	}
	if err := normalize(doc.Entries, "/"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads and parses a seed document from disk
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func normalize(entries []Entry, parent string) error {
	for i := range entries {
		e := &entries[i]
		if e.Type == "" {
			e.Type = models.TypeFile
			if len(e.Children) > 0 {
				e.Type = models.TypeDir
			}
		}
		if e.Type == models.TypeFile && len(e.Children) > 0 {
			return fmt.Errorf("seed entry %s%s: a file cannot have children", parent, e.Name)
		}
		if err := normalize(e.Children, parent+e.Name+"/"); err != nil {
			return err
		}
	}
	return nil
}

// Seeder applies seed documents for one user
type Seeder struct {
	workspaces fsSvc.WorkspaceService
	files      fsSvc.FileService
	logger     *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(workspaces fsSvc.WorkspaceService, files fsSvc.FileService, logger *slog.Logger) *Seeder {
	return &Seeder{workspaces: workspaces, files: files, logger: logger}
}

// Apply creates the document's workspace (if missing) and every entry beneath it.
// Entries that already exist are skipped; their children are still applied.
func (s *Seeder) Apply(ctx context.Context, userID string, doc *Document) (*Result, error) {
	workspace, err := s.workspaces.EnsureWorkspace(ctx, userID, doc.Workspace)
	if err != nil {
		return nil, fmt.Errorf("ensure workspace %q: %w", doc.Workspace, err)
	}

	result := &Result{WorkspaceID: workspace.ID}

	type pending struct {
		parentID string
		entry    Entry
	}
	queue := make([]pending, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		queue = append(queue, pending{parentID: models.RootParentID, entry: e})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		id, err := s.createEntry(ctx, userID, workspace.ID, item.parentID, item.entry, result)
		if err != nil {
			return result, err
		}
		for _, child := range item.entry.Children {
			queue = append(queue, pending{parentID: id, entry: child})
		}
	}

	s.logger.Info("seed applied",
		"workspace", workspace.Name,
		"workspace_id", workspace.ID,
		"created", result.Created,
		"skipped", result.Skipped,
	)

	return result, nil
}

// Clear deletes every top-level entry (and so everything) in the named workspace.
// It returns the number of top-level entries removed.
func (s *Seeder) Clear(ctx context.Context, userID, workspaceName string) (int, error) {
	workspace, err := s.workspaces.EnsureWorkspace(ctx, userID, workspaceName)
	if err != nil {
		return 0, fmt.Errorf("ensure workspace %q: %w", workspaceName, err)
	}

	roots, err := s.files.ListFiles(ctx, &fsSvc.ListFilesRequest{
		UserID:      userID,
		WorkspaceID: workspace.ID,
		ParentID:    models.RootParentID,
	})
	if err != nil {
		return 0, err
	}

	for _, entry := range roots {
		if err := s.files.DeleteFile(ctx, userID, entry.ID); err != nil {
			return 0, fmt.Errorf("clear %q: %w", entry.Name, err)
		}
	}

	s.logger.Info("workspace cleared", "workspace_id", workspace.ID, "removed", len(roots))
	return len(roots), nil
}

func (s *Seeder) createEntry(ctx context.Context, userID, workspaceID, parentID string, e Entry, result *Result) (string, error) {
	file, err := s.files.CreateFile(ctx, &fsSvc.CreateFileRequest{
		UserID:      userID,
		WorkspaceID: workspaceID,
		ParentID:    parentID,
		Type:        e.Type,
		Name:        e.Name,
		Size:        e.Size,
	})
	if err == nil {
		result.Created++
		return file.ID, nil
	}

	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		return "", fmt.Errorf("seed %q: %w", e.Name, err)
	}
	if len(e.Children) > 0 && conflictErr.ResourceType != models.TypeDir {
		return "", fmt.Errorf("seed %q: existing entry is a %s, not a directory", e.Name, conflictErr.ResourceType)
	}

	s.logger.Debug("seed entry exists", "name", e.Name, "id", conflictErr.ResourceID)
	result.Skipped++
	return conflictErr.ResourceID, nil
}
