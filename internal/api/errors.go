package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the classified failure categories. Callers check
// these with errors.Is; the raw transport or body detail stays wrapped.
var (
	// ErrAuthenticationRequired is returned when the server rejects the
	// session cookie (HTTP 401).
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrPermissionDenied is returned when the authenticated user lacks
	// the required role (HTTP 403).
	ErrPermissionDenied = errors.New("insufficient permissions")

	// ErrNotFound is returned for a missing resource (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrServerFault is returned for any 5xx response.
	ErrServerFault = errors.New("server error")

	// ErrNetworkUnreachable is returned when the request never produced a
	// response. Distinct from ErrServerFault.
	ErrNetworkUnreachable = errors.New("network error")
)

// Error is a classified, user-displayable API failure. Message comes from
// the response body when the server sent one.
type Error struct {
	Status  int
	Message string
	Kind    error // sentinel category, if the status is in the table
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// ValidationError carries the per-field messages of a rejected request
// body, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
