package model

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is the root of every ownership denial.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when a mutation arrives without a principal.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrStoreUnavailable wraps repository calls that hit their deadline.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Resource kinds used in authorization decisions.
const (
	ResourceAccount   = "account"
	ResourceProfile   = "profile"
	ResourcePortfolio = "portfolio"
	ResourceComment   = "comment"
	ResourceJob       = "job"
)

// DenyError is an authorization denial. Reason is for logs only; the caller
// sees the same message whether the resource is missing or owned by someone else.
type DenyError struct {
	Resource string
	Reason   string
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("%s: %s denied: %s", ErrForbidden, e.Resource, e.Reason)
}

func (e *DenyError) Unwrap() error {
	return ErrForbidden
}

// Deny builds a DenyError for resource.
func Deny(resource, reason string) error {
	return &DenyError{Resource: resource, Reason: reason}
}
