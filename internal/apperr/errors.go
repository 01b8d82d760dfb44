// Package apperr holds the error taxonomy shared by the authentication,
// permission and query layers. Rendering these errors into text is left to
// the presentation layer.
package apperr

import (
	"errors"
	"fmt"
)

// Authentication errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Kind classifies an error for callers that need to branch on it.
type Kind string

const (
	KindUserNotFound     Kind = "user_not_found"
	KindNotAuthenticated Kind = "not_authenticated"
	KindPermissionDenied Kind = "permission_denied"
	KindInvalidFilter    Kind = "invalid_filter"
	KindBackend          Kind = "backend_error"
	KindUnknown          Kind = "unknown"
)

// PermissionDeniedError is returned when an identity lacks a capability or
// asks for an entity outside its scope.
type PermissionDeniedError struct {
	Role       string
	Capability string
	// Resource names the specific entity that was refused, if any.
	Resource string
}

func (e *PermissionDeniedError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("permission denied: role %q cannot access %s", e.Role, e.Resource)
	}
	return fmt.Sprintf("permission denied: role %q lacks %q", e.Role, e.Capability)
}

// InvalidFilterError reports a request whose filter cannot be built safely.
type InvalidFilterError struct {
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return "invalid filter: " + e.Reason
}

// BackendError wraps a failure of the remote store.
type BackendError struct {
	Cause error
}

func (e *BackendError) Error() string {
	if e.Cause == nil {
		return "backend error"
	}
	return "backend error: " + e.Cause.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Denied builds a PermissionDeniedError for a missing capability.
func Denied(role, capability string) error {
	return &PermissionDeniedError{Role: role, Capability: capability}
}

// DeniedResource builds a PermissionDeniedError for an out-of-scope entity.
func DeniedResource(role, capability, resource string) error {
	return &PermissionDeniedError{Role: role, Capability: capability, Resource: resource}
}

// InvalidFilter builds an InvalidFilterError.
func InvalidFilter(format string, args ...interface{}) error {
	return &InvalidFilterError{Reason: fmt.Sprintf(format, args...)}
}

// Backend wraps cause as a BackendError. A nil cause yields nil.
func Backend(cause error) error {
	if cause == nil {
		return nil
	}
	var be *BackendError
	if errors.As(cause, &be) {
		return be
	}
	return &BackendError{Cause: cause}
}

// KindOf classifies err. Nil errors report an empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		denied  *PermissionDeniedError
		invalid *InvalidFilterError
		backend *BackendError
	)

	switch {
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.As(err, &denied):
		return KindPermissionDenied
	case errors.As(err, &invalid):
		return KindInvalidFilter
	case errors.As(err, &backend):
		return KindBackend
	default:
		return KindUnknown
	}
}
