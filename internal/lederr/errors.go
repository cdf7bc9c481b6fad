// Package lederr defines the error taxonomy shared by every contract
// operation. Hard structural failures (bad schema, missing record, bad
// permission, duplicate id) are returned as typed errors from this package;
// soft business-rule outcomes are returned as result structs by the
// validators and never surface here.
package lederr

import (
	"errors"
	"fmt"
)

// ValidationItem is one coded schema violation.
type ValidationItem struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports one or more schema/shape violations. It is always
// surfaced verbatim to the caller and never retried.
type ValidationError struct {
	Items []ValidationItem `json:"errors"`
}

func (e ValidationError) Error() string {
	if len(e.Items) == 1 {
		return fmt.Sprintf("validation failed: %s (%s)", e.Items[0].Message, e.Items[0].Code)
	}
	return fmt.Sprintf("validation failed: %d violations", len(e.Items))
}

// PermissionError reports a failed capability check.
type PermissionError struct {
	Capability string
	MSPID      string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("caller %q does not hold the %q capability", e.MSPID, e.Capability)
}

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a duplicate id on create.
type ConflictError struct {
	Kind string
	ID   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

// IntegrityError reports an integrity-hash mismatch. Both hashes are carried
// so the caller can report them; the stored record is never auto-corrected.
type IntegrityError struct {
	Kind     string
	ID       string
	Stored   string
	Computed string
}

func (e IntegrityError) Error() string {
	return fmt.Sprintf("%s %s failed integrity check: stored %s, computed %s", e.Kind, e.ID, e.Stored, e.Computed)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}

// IsPermission reports whether err wraps a PermissionError.
func IsPermission(err error) bool {
	var p PermissionError
	return errors.As(err, &p)
}

// Invalid builds a single-item ValidationError.
func Invalid(code, path, message string) ValidationError {
	return ValidationError{Items: []ValidationItem{{Code: code, Path: path, Message: message}}}
}
