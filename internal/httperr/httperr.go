// Package httperr normalizes operation failures to the single JSON
// boundary shape {message, data} with a taxonomy status code. Anything
// that is not an *Error collapses to a generic 500 so internal detail
// never leaves the process.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// FieldError is one entry of the structured validation data returned
// with a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string, fields []FieldError) *Error {
	var data any
	if len(fields) > 0 {
		data = fields
	}
	return &Error{Status: http.StatusUnprocessableEntity, Message: message, Data: data}
}

func Unauthenticated(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Write renders err as the boundary JSON response.
func Write(w http.ResponseWriter, err error) {
	var he *Error
	if !errors.As(err, &he) {
		he = &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Status)
	json.NewEncoder(w).Encode(he)
}
