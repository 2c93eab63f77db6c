// Package jsonapi provides the JSON response envelope, error objects and
// pagination helpers shared by all HTTP handlers.
package jsonapi

// ContentType is the media type for all API responses.
const ContentType = "application/json; charset=utf-8"

// Meta holds free-form response metadata (pagination, counts).
type Meta map[string]any

// Document is the top-level response envelope. Exactly one of Data or
// Errors is set.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   Meta    `json:"meta,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error is a single API error object.
type Error struct {
	Status string       `json:"status"`
	Code   string       `json:"code"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the request input that caused the error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}
