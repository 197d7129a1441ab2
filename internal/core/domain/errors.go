package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for conditions that carry no extra state. Cross-owner
// access is reported as ErrNotFound so that existence never leaks.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError reports a duplicate active profile name for an owner.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("profile with name %q already exists", e.Name)
}

// VersionConflictError reports a stale concurrency token. Current is the
// version the caller must re-fetch and present to retry.
type VersionConflictError struct {
	Current int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version mismatch, current version: %d", e.Current)
}

// FieldError is a single field-level constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field violation found in one request so
// the caller can correct them all at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AsValidationErrors unwraps err into ValidationErrors if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
