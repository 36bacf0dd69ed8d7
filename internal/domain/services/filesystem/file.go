package filesystem

import (
	"context"

	"filebox/internal/domain/models/filesystem"
)

// FileService handles file and directory business logic
type FileService interface {
	// CreateFile creates a directory or file under ParentID ("" for root)
	CreateFile(ctx context.Context, req *CreateFileRequest) (*filesystem.FileEntry, error)

	// GetFile retrieves an entry with its computed path
	GetFile(ctx context.Context, userID, id string) (*filesystem.FileEntry, error)

	// UpdateFile renames and/or moves an entry
	UpdateFile(ctx context.Context, userID, id string, req *UpdateFileRequest) (*filesystem.FileEntry, error)

	// DeleteFile deletes an entry and, for directories, everything beneath it
	DeleteFile(ctx context.Context, userID, id string) error

	// ListFiles lists one directory level, optionally filtered by name and type
	ListFiles(ctx context.Context, req *ListFilesRequest) ([]filesystem.FileEntry, error)
}

// CreateFileRequest represents a file creation request
type CreateFileRequest struct {
	UserID      string `json:"-"`
	WorkspaceID string `json:"workspace_id"`
	ParentID    string `json:"pid"` // "" for root
	Type        string `json:"type"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
}

// OptionalParentID carries the tri-state "pid" of a move. Handlers map it from
// httputil.OptionalString.
//   - Present=false: leave the parent alone
//   - Present=true, Value=nil or &"": move to the root
//   - Present=true, Value=&"id": move under id
type OptionalParentID struct {
	Present bool
	Value   *string
}

// ValueOr returns the target parent, or fallback when none was given
func (o OptionalParentID) ValueOr(fallback string) string {
	if o.Value == nil {
		return fallback
	}
	return *o.Value
}

// UpdateFileRequest represents a rename/move request
type UpdateFileRequest struct {
	Name     *string          // rename
	ParentID OptionalParentID // move
}

// ListFilesRequest represents a directory listing request
type ListFilesRequest struct {
	UserID      string
	WorkspaceID string
	ParentID    string // "" for root
	Name        string // case-insensitive substring filter
	Type        string // "", "dir" or "file"
}
