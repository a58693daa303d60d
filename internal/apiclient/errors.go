package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind tags a normalized API failure.
type Kind string

// Failure kinds. Every failure crossing the transport boundary is tagged
// exactly once here and matched on Kind thereafter; raw transport errors
// never leave this package.
const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindTransport  Kind = "transport"
)

// User-facing default messages.
const (
	MsgIncorrectCredentials = "Incorrect credentials"
	MsgUnexpected           = "An unexpected error has occurred"
)

// FieldError is one per-field message from a validation failure.
type FieldError struct {
	Path string `json:"path"`
	Msg  string `json:"msg"`
}

// Error is the normalized form of any API failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api %s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts a normalized *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

type errorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// normalizeStatus converts a non-2xx response into a tagged Error. A 401 is
// an auth failure; another 4xx with a structured body is a validation
// failure carrying per-field messages; everything else is transport.
func normalizeStatus(status int, body []byte) *Error {
	if status == http.StatusUnauthorized {
		return &Error{Kind: KindAuth, Status: status, Message: MsgIncorrectCredentials}
	}
	if status >= 400 && status < 500 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
			return &Error{Kind: KindValidation, Status: status, Message: eb.Message, Fields: eb.Errors}
		}
	}
	return &Error{Kind: KindTransport, Status: status, Message: MsgUnexpected}
}

// normalizeTransport wraps a network-level failure.
func normalizeTransport(err error) *Error {
	return &Error{Kind: KindTransport, Message: MsgUnexpected, cause: err}
}
