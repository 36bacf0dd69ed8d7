package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrMalformedHierarchy is returned in strict mode when records cannot all be
	// placed under a root (unknown parent, duplicate id).
	ErrMalformedHierarchy = errors.New("malformed hierarchy")

	// ErrCyclicHierarchy is returned in strict mode when a parent chain loops.
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (file, workspace)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// HierarchyError describes the records that prevented a strict tree build.
// It matches ErrValidation and either ErrMalformedHierarchy or ErrCyclicHierarchy.
type HierarchyError struct {
	Kind       error    // ErrMalformedHierarchy or ErrCyclicHierarchy
	Orphans    []string // ids whose ancestor chain ends at an unknown parent
	Cycles     []string // ids whose ancestor chain loops
	Duplicates []string // ids that occur more than once
}

func (e *HierarchyError) Error() string {
	var parts []string
	if len(e.Cycles) > 0 {
		parts = append(parts, fmt.Sprintf("cyclic ids [%s]", strings.Join(e.Cycles, ", ")))
	}
	if len(e.Orphans) > 0 {
		parts = append(parts, fmt.Sprintf("orphaned ids [%s]", strings.Join(e.Orphans, ", ")))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate ids [%s]", strings.Join(e.Duplicates, ", ")))
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

// StatusCode implements the HTTPError interface
func (e *HierarchyError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *HierarchyError) Is(target error) bool {
	return target == e.Kind || target == ErrValidation
}
