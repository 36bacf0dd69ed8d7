package config

const (
	// MaxWorkspaceNameLength is the maximum length for workspace names.
	// Limited to 255 to fit in VARCHAR(255) columns.
	MaxWorkspaceNameLength = 255

	// MaxFileNameLength is the maximum length for file and directory names.
	// Matches the common filesystem limit for a single path segment.
	MaxFileNameLength = 255

	// MaxFilePathLength is the maximum length for computed display paths.
	MaxFilePathLength = 4096
)
