package handler

import "net/http"

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Workspaces *WorkspaceHandler
	Files      *FileHandler
	Tree       *TreeHandler
}

// RegisterRoutes registers all API routes on mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Workspace routes
	mux.HandleFunc("GET /api/workspaces", h.Workspaces.ListWorkspaces)
	mux.HandleFunc("POST /api/workspaces", h.Workspaces.CreateWorkspace)
	mux.HandleFunc("GET /api/workspaces/{id}", h.Workspaces.GetWorkspace)
	mux.HandleFunc("GET /api/workspaces/{id}/tree", h.Tree.GetTree)
	mux.HandleFunc("GET /api/workspaces/{id}/files", h.Files.ListFiles)

	// File routes
	mux.HandleFunc("POST /api/files", h.Files.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", h.Files.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", h.Files.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.Files.DeleteFile)
}
