package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"filebox/internal/domain"
	"filebox/internal/httputil"
)

// statusFor maps a domain error to its HTTP status; 0 means unexpected
func statusFor(err error) int {
	var httpErr domain.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, domain.ErrCyclicHierarchy), errors.Is(err, domain.ErrMalformedHierarchy):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return 0
}

// handleError writes the problem response for err. A rejected tree carries the offending ids.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == 0 {
		logger.Error("unhandled error",
			"error", err,
			"request_id", httputil.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var hierarchyErr *domain.HierarchyError
	if errors.As(err, &hierarchyErr) {
		httputil.RespondErrorWithExtras(w, status, hierarchyErr.Error(), map[string]interface{}{
			"kind":       hierarchyErr.Kind.Error(),
			"orphans":    nonNil(hierarchyErr.Orphans),
			"cycles":     nonNil(hierarchyErr.Cycles),
			"duplicates": nonNil(hierarchyErr.Duplicates),
		})
		return
	}

	httputil.RespondError(w, status, err.Error())
}

// HandleCreateConflict answers a create that hit an existing resource with 409 and that
// resource as the body, so clients can reuse it. Other errors go through handleError.
func HandleCreateConflict[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) || conflictErr.ResourceID == "" {
		handleError(w, r, logger, err)
		return
	}

	existing, fetchErr := fetchFn(conflictErr.ResourceID)
	if fetchErr != nil {
		handleError(w, r, logger, fetchErr)
		return
	}
	httputil.RespondJSON(w, http.StatusConflict, existing)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
