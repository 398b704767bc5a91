// Package domainerrors defines the error taxonomy shared by services and the
// HTTP layer. Services return *Error values; handlers translate the Code into
// a status with ToHTTPStatus and never inspect messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	// CodeValidation: input failed a shape, range or format rule. Carries Field.
	CodeValidation Code = "validation_error"
	// CodeInvalidTransition: the entity's current status does not allow the
	// requested operation. Carries Current and Attempted.
	CodeInvalidTransition Code = "invalid_state_transition"
	// CodeBadRequest: the request could not be decoded at all.
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal covers repository failures and anything unexpected.
	CodeInternal Code = "internal_error"
)

// Error is the typed error returned across service boundaries.
type Error struct {
	Code    Code
	Message string

	// Field names the offending input for CodeValidation.
	Field string
	// Current and Attempted describe a rejected status change.
	Current   string
	Attempted string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap keeps err as the cause so errors.Is still reaches store sentinels.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation reports a rejected input field. The message is user facing.
func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field}
}

// InvalidTransition reports an illegal status change on an entity.
func InvalidTransition(entity, current, attempted string) *Error {
	return &Error{
		Code:      CodeInvalidTransition,
		Message:   fmt.Sprintf("%s cannot move from %s to %s", entity, current, attempted),
		Current:   current,
		Attempted: attempted,
	}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidTransition, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
