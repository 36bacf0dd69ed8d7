package filesystem

import (
	"time"
)

// Entry types
const (
	TypeDir  = "dir"
	TypeFile = "file"
)

// RootParentID is the parent id of top-level entries.
const RootParentID = ""

type FileEntry struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	ParentID    string    `json:"pid" db:"parent_id"` // "" = root level
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Size        int64     `json:"size" db:"size"`
	Path        string    `json:"path,omitempty"` // Computed display path, not stored in DB
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsDir reports whether the entry is a directory
func (f *FileEntry) IsDir() bool {
	return f.Type == TypeDir
}

// Record returns the flat tree record for this entry
func (f *FileEntry) Record() DirectoryRecord {
	return DirectoryRecord{ID: f.ID, PID: f.ParentID, Name: f.Name}
}
