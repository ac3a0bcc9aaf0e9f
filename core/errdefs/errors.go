package errdefs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MalformedResourceError reports a local resource file that cannot be parsed
// into key/value pairs.
type MalformedResourceError struct {
	// Path is the resource file path relative to the source root.
	Path string
	// Line is the 1-based line of the problem, or 0 when unknown.
	Line int
	// Err is the underlying parse failure.
	Err error
}

func (e *MalformedResourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed resource %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed resource %s: %v", e.Path, e.Err)
}

func (e *MalformedResourceError) Unwrap() error { return e.Err }

// RemoteUnavailableError reports a transient remote failure.
type RemoteUnavailableError struct {
	// Op names the remote operation, e.g. "list files".
	Op string
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	// RetryAfter is the server-suggested wait, if any.
	RetryAfter time.Duration
	// Err is the underlying failure.
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: remote unavailable (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: remote unavailable: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// ValidationError reports a request the remote refused.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: rejected: %s", e.Op, e.Message)
}

// NotFoundError reports a missing remote resource.
type NotFoundError struct {
	Op       string
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Op, e.Resource)
}

// CancelledError reports a cooperative stop.
type CancelledError struct {
	// Err is the error observed when the stop happened (may be nil).
	Err error
}

func (e *CancelledError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cancelled: %v", e.Err)
	}
	return "cancelled"
}

func (e *CancelledError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var unavailable *RemoteUnavailableError
	return errors.As(err, &unavailable)
}

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		malformed  *MalformedResourceError
	)
	return errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &malformed)
}

// IsCancelled reports whether err stems from a cancellation.
func IsCancelled(err error) bool {
	var cancelled *CancelledError
	return errors.As(err, &cancelled) || errors.Is(err, context.Canceled)
}

// RetryAfter returns the server-suggested wait carried by err, if any.
func RetryAfter(err error) time.Duration {
	var unavailable *RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.RetryAfter
	}
	return 0
}
