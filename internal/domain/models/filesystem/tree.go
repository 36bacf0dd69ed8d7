package filesystem

// DirectoryRecord is one flat entry of a parent-pointer hierarchy.
// PID is the parent's ID, or RootParentID for a top-level entry.
type DirectoryRecord struct {
	ID   string `json:"id"`
	PID  string `json:"pid"`
	Name string `json:"name"`
}

// TreeNode is a node of the nested directory tree.
// Children is never nil so it always encodes as a JSON array.
type TreeNode struct {
	Key      string      `json:"key"`
	Title    string      `json:"title"`
	PKey     string      `json:"pkey,omitempty"` // empty for roots
	Children []*TreeNode `json:"children"`
}

// DirectoryTree is the forest for a workspace plus the records that could not be placed.
type DirectoryTree struct {
	WorkspaceID string            `json:"workspace_id"`
	Mode        string            `json:"mode"`
	RecordCount int               `json:"record_count"`
	Roots       []*TreeNode       `json:"roots"`
	Orphans     []DirectoryRecord `json:"orphans"`
	Cycles      []DirectoryRecord `json:"cycles"`
	Duplicates  []DirectoryRecord `json:"duplicates"`
}
