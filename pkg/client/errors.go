package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// ServiceError is an error answer of the ADT service.
type ServiceError struct {
	StatusCode int
	Method     string
	URL        string

	// Namespace and Type identify the exc:exception, when one was sent.
	Namespace string
	Type      string
	Message   string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.URL, e.StatusCode, msg)
}

// Unwrap returns the errdefs class of the error.
func (e *ServiceError) Unwrap() error {
	return errorClass(e.StatusCode, e.Type)
}

// errorClass maps an exception type, or failing that the status code, to
// an errdefs class.
func errorClass(status int, excType string) error {
	switch excType {
	case "ExceptionResourceNotFound":
		return errdefs.ErrNotFound
	case "ExceptionResourceAlreadyExists":
		return errdefs.ErrAlreadyExists
	case "ExceptionResourceNoAccess":
		return errdefs.ErrPermissionDenied
	case "ExceptionResourceInvalidLockHandle", "ExceptionResourceLockedByAnotherUser":
		return errdefs.ErrConflict
	}

	switch {
	case status == http.StatusBadRequest:
		return errdefs.ErrInvalidArgument
	case status == http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case status == http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case status == http.StatusNotFound:
		return errdefs.ErrNotFound
	case status == http.StatusConflict, status == http.StatusLocked:
		return errdefs.ErrConflict
	case status == http.StatusPreconditionFailed:
		return errdefs.ErrFailedPrecondition
	case status == http.StatusNotImplemented:
		return errdefs.ErrNotImplemented
	case status == http.StatusServiceUnavailable:
		return errdefs.ErrUnavailable
	case status >= 500:
		return errdefs.ErrInternal
	}
	return errdefs.ErrUnknown
}

// errConnectionFailed is returned when the service cannot be reached.
type errConnectionFailed struct {
	error
}

func (e errConnectionFailed) Error() string {
	return e.error.Error()
}

func (e errConnectionFailed) Unwrap() []error {
	return []error{e.error, errdefs.ErrUnavailable}
}

// IsErrConnectionFailed reports whether err was caused by a failure to
// reach the service.
func IsErrConnectionFailed(err error) bool {
	var e errConnectionFailed
	return errors.As(err, &e)
}

// ErrDecode is returned when a response body does not have the expected
// structure.
var ErrDecode = errors.New("cannot decode response")

// ErrResponseTooLarge is returned when a response body exceeds the
// configured size limit.
var ErrResponseTooLarge = errors.New("response too large")
