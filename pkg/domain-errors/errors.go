// Package domainerrors carries coded errors across layers.
//
// A Code is the coarse error kind the transport maps to a status. A Reason is
// the precise, machine-readable tag a client branches on. Details hold the
// structured context (item index, record id, missing category) needed to
// render a precise message.
package domainerrors

import (
	"errors"
	"maps"
)

// Code is the coarse kind of a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Reason is a precise tag within a Code, e.g. "ownership_mismatch".
type Reason string

// Error is the concrete domain error. Construct with New or Wrap.
type Error struct {
	Code    Code
	Message string
	Reason  Reason
	// Group is an umbrella reason shared by several reasons, e.g. every
	// taxonomy failure is grouped under "invalid_taxonomy".
	Group   Reason
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithReason returns a copy of e tagged with reason.
func (e *Error) WithReason(reason Reason) *Error {
	c := e.clone()
	c.Reason = reason
	return c
}

// WithGroup returns a copy of e tagged with an umbrella reason.
func (e *Error) WithGroup(group Reason) *Error {
	c := e.clone()
	c.Group = group
	return c
}

// WithDetail returns a copy of e carrying key=value in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any, 1)
	}
	c.Details[key] = value
	return c
}

func (e *Error) clone() *Error {
	c := *e
	if e.Details != nil {
		c.Details = maps.Clone(e.Details)
	}
	return &c
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// As returns the outermost domain error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// CodeOf returns the outermost code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HasReason reports whether any domain error in err's chain carries reason,
// either as its Reason or its Group.
func HasReason(err error, reason Reason) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Reason == reason || de.Group == reason {
			return true
		}
		err = de.Err
	}
	return false
}

// DetailOf returns the detail stored under key on the outermost domain error.
func DetailOf(err error, key string) (any, bool) {
	de, ok := As(err)
	if !ok || de.Details == nil {
		return nil, false
	}
	v, ok := de.Details[key]
	return v, ok
}
