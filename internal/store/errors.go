package store

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// ConflictError reports a uniqueness violation or an illegal state
// transition. Reason is safe to surface to the caller.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// isUniqueViolation is the backstop for races that slip past the pre-insert
// uniqueness checks and hit a unique index instead.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
