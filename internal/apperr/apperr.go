// Package apperr defines the error taxonomy shared by handlers and
// middleware. Every client-facing failure is an *Error with an explicit
// kind and HTTP status; the top-level error handler translates it into a
// structured JSON body. Anything else is treated as an internal error and
// never leaked to the client.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for exhaustive matching at the boundary.
type Kind int

const (
	KindValidation Kind = iota
	KindDuplicate
	KindInvalidCredentials
	KindUnauthorized
	KindNotFound
	KindQuotaExceeded
	KindUpstream
	KindInternal
)

// FieldError reports a single violated field from request validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a tagged client-facing error. Cause is kept for logging only.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation reports one or more violated fields with status 400.
func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: "Validation failed", Fields: fields}
}

// Duplicate signals a uniqueness-constraint conflict (409).
func Duplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Status: http.StatusConflict, Message: msg}
}

// InvalidCredentials is the single 401 used for both unknown-email and
// wrong-password so account existence cannot be probed.
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials"}
}

// Unauthorized covers missing, malformed, expired or cross-class tokens.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

// NotFound signals a missing (or not owned) resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// QuotaExceeded signals that the caller's plan ran out of daily quota.
func QuotaExceeded() *Error {
	return &Error{Kind: KindQuotaExceeded, Status: http.StatusTooManyRequests, Message: "Daily quota exceeded"}
}

// Upstream signals a dependent external service failure (502).
func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Status: http.StatusBadGateway, Message: msg, Cause: cause}
}

// Internal wraps an unexpected failure. The cause is logged server-side;
// clients only ever see the generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal server error", Cause: cause}
}
