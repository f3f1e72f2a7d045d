package reconcile

import (
	"errors"
	"fmt"
	"net/http"
)

// ProbeError means the current state of a target could not be determined.
// It is deliberately distinct from Absent: a caller that treats "could not
// determine" as "does not exist" risks duplicate creation.
type ProbeError struct {
	Target Target
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s %s: %v", e.Target.Kind, e.Target.Identity, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ValidationError means the desired-state payload is malformed. Fatal,
// never retried.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed during %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransientError means the call failed for a reason that is safe to retry
// (network error, 5xx). The engine does not retry one-shot apply calls
// internally; retry is left to re-invoking the whole run.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ConflictError means the resource changed concurrently; the caller must
// re-probe before acting again.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// AuthError means the credentials were rejected (401/403). Fatal, never
// retried, and never treated as Absent.
type AuthError struct {
	Op     string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected during %s (status %d)", e.Op, e.Status)
}

// DependencyUnmetError means an upstream step's output (a cluster ID, a
// token) is required and absent. Fatal.
type DependencyUnmetError struct {
	Dependency string
}

func (e *DependencyUnmetError) Error() string {
	return fmt.Sprintf("required dependency unmet: %s", e.Dependency)
}

// IsTransient reports whether err classifies as retryable
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsValidation reports whether err classifies as a malformed payload
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err classifies as a concurrent modification
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsAuth reports whether err classifies as rejected credentials
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// ClassifyHTTPStatus maps an HTTP response status to the engine's error
// taxonomy. 2xx returns nil. 401/403 are fatal auth errors, 409 is a
// conflict, other 4xx are validation errors, 5xx and everything else are
// transient.
func ClassifyHTTPStatus(op string, status int, body string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Op: op, Status: status}
	case status == http.StatusConflict:
		return &ConflictError{Op: op, Err: fmt.Errorf("status %d: %s", status, body)}
	case status >= 400 && status < 500:
		return &ValidationError{Op: op, Err: fmt.Errorf("status %d: %s", status, body)}
	default:
		return &TransientError{Op: op, Err: fmt.Errorf("status %d: %s", status, body)}
	}
}
