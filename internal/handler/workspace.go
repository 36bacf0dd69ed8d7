package handler

import (
	"log/slog"
	"net/http"

	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/httputil"
)

// WorkspaceHandler handles workspace HTTP requests
type WorkspaceHandler struct {
	workspaceService fsSvc.WorkspaceService
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService fsSvc.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// ListWorkspaces retrieves all workspaces for the user
// GET /api/workspaces
func (h *WorkspaceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	workspaces, err := h.workspaceService.ListWorkspaces(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, workspaces)
}

// CreateWorkspace creates a new workspace
// POST /api/workspaces
// Returns 201 if created, 409 with the existing workspace if the name is taken
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req fsSvc.CreateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	workspace, err := h.workspaceService.CreateWorkspace(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, r, h.logger, err, func(id string) (*models.Workspace, error) {
			return h.workspaceService.GetWorkspace(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, workspace)
}

// GetWorkspace retrieves a workspace by ID
// GET /api/workspaces/{id}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	workspace, err := h.workspaceService.GetWorkspace(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, workspace)
}
