package handler

import (
	"log/slog"
	"net/http"

	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService fsSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService fsSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested directory tree for a workspace
// GET /api/workspaces/{id}/tree?mode=strict|lenient&files=true
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("id")
	if workspaceID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	tree, err := h.treeService.GetDirectoryTree(r.Context(), httputil.GetUserID(r), workspaceID, fsSvc.TreeOptions{
		Mode:         r.URL.Query().Get("mode"),
		IncludeFiles: httputil.QueryBool(r, "files"),
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
