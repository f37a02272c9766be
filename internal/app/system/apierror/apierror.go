// internal/app/system/apierror/apierror.go
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error; each kind maps to exactly one HTTP status.
type Kind int

const (
	KindValidation     Kind = iota // 400
	KindAuthentication             // 401
	KindAuthorization              // 403
	KindNotFound                   // 404
	KindRateLimited                // 429
	KindServer                     // 500
)

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Error is a domain error that handlers surface to the centralized
// renderer. Message is user-safe; Err (optional) carries the internal
// cause for logging and is never written to the response.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a 400 error with a field-level message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf builds a 400 error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authentication builds a 401 error. Keep the message generic: never
// reveal which credential field was wrong.
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Authorization builds a 403 error.
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NotFound builds a 404 error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// RateLimited builds a 429 error.
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Server wraps an unexpected internal error. The cause is retained for
// logging; the response carries only the generic message.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: "Something went wrong. Please try again.", Err: err}
}

// From extracts an *Error from err, reducing unclassified errors to a
// generic server error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Server(err)
}
