package handler

import (
	"log/slog"
	"net/http"

	models "filebox/internal/domain/models/filesystem"
	fsSvc "filebox/internal/domain/services/filesystem"
	"filebox/internal/httputil"
)

// FileHandler handles file and directory HTTP requests
type FileHandler struct {
	fileService fsSvc.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService fsSvc.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// CreateFile creates a directory or file
// POST /api/files
// Returns 201 if created, 409 with the existing entry if the name is taken
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req fsSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	file, err := h.fileService.CreateFile(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, r, h.logger, err, func(id string) (*models.FileEntry, error) {
			return h.fileService.GetFile(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves an entry with its computed path
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	file, err := h.fileService.GetFile(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// updateFileBody is the PATCH payload; "pid": null moves to the root
type updateFileBody struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"pid"`
}

// UpdateFile renames and/or moves an entry
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	var body updateFileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &fsSvc.UpdateFileRequest{
		Name:     body.Name,
		ParentID: fsSvc.OptionalParentID{Present: body.ParentID.Present, Value: body.ParentID.Value},
	}
	file, err := h.fileService.UpdateFile(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes an entry and everything beneath it
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFiles lists one directory level of a workspace
// GET /api/workspaces/{id}/files?parent_id=&name=&type=
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("id")
	if workspaceID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	query := r.URL.Query()
	files, err := h.fileService.ListFiles(r.Context(), &fsSvc.ListFilesRequest{
		UserID:      httputil.GetUserID(r),
		WorkspaceID: workspaceID,
		ParentID:    query.Get("parent_id"),
		Name:        query.Get("name"),
		Type:        query.Get("type"),
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}
