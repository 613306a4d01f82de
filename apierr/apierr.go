package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine-readable code alongside
// the wrapped cause. Handlers map it to a response without exposing internals.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, "VALIDATION", fmt.Errorf(format, args...))
}

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, "NOT_FOUND", fmt.Errorf("%s not found", resource))
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, "FORBIDDEN", fmt.Errorf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, "CONFLICT", fmt.Errorf(format, args...))
}

func TypeNotFound(typeRef string) *Error {
	return New(http.StatusNotFound, "TYPE_NOT_FOUND", fmt.Errorf("quiz type %q not found", typeRef))
}

func EmptyDocumentSet() *Error {
	return New(http.StatusBadRequest, "EMPTY_DOCUMENT_SET", errors.New("at least one source document is required"))
}

func MalformedResponse(err error) *Error {
	return New(http.StatusBadGateway, "MALFORMED_RESPONSE", err)
}

func GenerationFailed(err error) *Error {
	return New(http.StatusInternalServerError, "GENERATION_FAILED", err)
}

func QuestionNotFound(question string) *Error {
	return New(http.StatusBadRequest, "QUESTION_NOT_FOUND", fmt.Errorf("question %q not found in quiz content", question))
}

func Dependency(err error) *Error {
	return New(http.StatusBadGateway, "DEPENDENCY_FAILURE", err)
}

// From classifies an arbitrary error. Unknown errors become a generic
// internal error so no storage or service detail leaks to the caller.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(http.StatusInternalServerError, "INTERNAL", err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
