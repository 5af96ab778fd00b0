package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSiteNotFound     = errors.New("site not found")
	ErrRecordNotFound   = errors.New("dns record not found")
	ErrResourceNotFound = errors.New("provider resource not found")
	ErrMappingExists    = errors.New("domain mapping already exists")
	ErrDomainConflict   = errors.New("Custom domain is already in use")
	ErrKeyNotFound      = errors.New("key not found")
)

// PermissionsError means the caller may not touch the resource.
type PermissionsError struct {
	Err error
}

func (t PermissionsError) Error() string {
	return fmt.Sprintf("error in permissions: %v", t.Err)
}

func (t PermissionsError) Unwrap() error { return t.Err }

// RetryableError marks failures the outbox poller should try again.
type RetryableError struct {
	Err error
}

func (t RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", t.Err)
}

func (t RetryableError) Unwrap() error { return t.Err }

type ValidationError struct {
	Messages []string
}

func (t ValidationError) Error() string {
	return strings.Join(t.Messages, ", ")
}

func NewValidationError(msg ...string) ValidationError {
	return ValidationError{Messages: msg}
}

// ConflictError is returned when another organization owns the domain.
type ConflictError struct {
	Domain string
}

func (t ConflictError) Error() string {
	return ErrDomainConflict.Error()
}

func (t ConflictError) Unwrap() error { return ErrDomainConflict }

// EntitlementError is a plan gate, not an ownership problem.
type EntitlementError struct {
	Reason string
}

func (t EntitlementError) Error() string {
	return t.Reason
}

// StateError signals stores that diverged and need an operator or a re-add.
type StateError struct {
	Err error
}

func (t StateError) Error() string {
	return fmt.Sprintf("inconsistent state: %v", t.Err)
}

func (t StateError) Unwrap() error { return t.Err }

type SSLValidationError struct {
	HostnameID string
	Details    []string
}

func (t SSLValidationError) Error() string {
	if len(t.Details) == 0 {
		return "SSL validation failed"
	}
	return "SSL validation failed: " + strings.Join(t.Details, "; ")
}

// ContentRejectedError is returned when uploaded content is screened out.
type ContentRejectedError struct {
	Patterns []string
}

func (t ContentRejectedError) Error() string {
	return "site content was rejected by content review"
}
