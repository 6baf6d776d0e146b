package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MsgRequired is the shared validation message for missing required fields.
const MsgRequired = "is required"

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrDomainRule  = errors.New("domain rule violation")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides programmatic access to field-level validation
// failures. Use errors.Is(err, ErrValidation) for simple checks, or
// errors.As(err, &verr) to access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RuleViolationError reports an operation rejected by an aggregate's own
// invariants: an illegal status transition, a mutation of a terminal entity,
// or an action the acting identity's role does not permit. It wraps
// ErrDomainRule so callers can branch with errors.Is.
type RuleViolationError struct {
	Entity string // aggregate kind, e.g. "task"
	ID     string // aggregate identity, may be empty before creation
	Rule   string // human-readable description of the violated rule
}

func (e *RuleViolationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s: %s", ErrDomainRule.Error(), e.Entity, e.Rule)
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrDomainRule.Error(), e.Entity, e.ID, e.Rule)
}

func (e *RuleViolationError) Unwrap() error {
	return ErrDomainRule
}
