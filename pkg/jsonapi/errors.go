package jsonapi

import (
	"fmt"
	"strconv"
)

// NewError creates an Error with the given status, code and title.
func NewError(status int, code, title string) Error {
	return Error{
		Status: strconv.Itoa(status),
		Code:   code,
		Title:  title,
	}
}

// StatusCode returns the HTTP status code as an int.
func (e Error) StatusCode() int {
	code, _ := strconv.Atoi(e.Status)
	return code
}

// WithDetail returns a copy of e with the detail message set.
func (e Error) WithDetail(format string, args ...any) Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Common error constructors

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(detail string) Error {
	return NewError(400, "bad_request", "Bad Request").WithDetail("%s", detail)
}

// ErrUnauthorized creates a 401 Unauthorized error.
func ErrUnauthorized(detail string) Error {
	if detail == "" {
		detail = "Authentication required"
	}
	return NewError(401, "unauthorized", "Unauthorized").WithDetail("%s", detail)
}

// ErrForbidden creates a 403 Forbidden error.
func ErrForbidden(detail string) Error {
	if detail == "" {
		detail = "Access denied"
	}
	return NewError(403, "forbidden", "Forbidden").WithDetail("%s", detail)
}

// ErrNotFound creates a 404 Not Found error.
func ErrNotFound(resourceType string) Error {
	return NewError(404, "not_found", "Not Found").
		WithDetail("The requested %s was not found", resourceType)
}

// ErrConflict creates a 409 Conflict error.
func ErrConflict(detail string) Error {
	return NewError(409, "conflict", "Conflict").WithDetail("%s", detail)
}

// ErrValidation creates a 422 Unprocessable Entity error for an invalid
// request body field.
func ErrValidation(field, message string) Error {
	e := NewError(422, "validation_error", "Validation Failed").WithDetail("%s", message)
	e.Source = &ErrorSource{Pointer: "/" + field}
	return e
}

// ErrInvalidParam creates a 422 error for an invalid query parameter.
func ErrInvalidParam(param, message string) Error {
	e := NewError(422, "validation_error", "Validation Failed").WithDetail("%s", message)
	e.Source = &ErrorSource{Parameter: param}
	return e
}

// ErrServiceUnavailable creates a 503 Service Unavailable error.
func ErrServiceUnavailable(detail string) Error {
	return NewError(503, "service_unavailable", "Service Unavailable").WithDetail("%s", detail)
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(detail string) Error {
	if detail == "" {
		detail = "An internal error occurred"
	}
	return NewError(500, "internal_error", "Internal Server Error").WithDetail("%s", detail)
}
