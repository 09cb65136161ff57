package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies service failures for callers
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not_found"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeConflict          ErrorCode = "conflict"
	CodeInsufficientFunds ErrorCode = "insufficient_funds"
	CodeInvalidAmount     ErrorCode = "invalid_amount"
	CodeNotAnAngel        ErrorCode = "not_an_angel"
	CodeAlreadyCalculated ErrorCode = "already_calculated"
	CodeNoPitches         ErrorCode = "no_pitches"
	CodeInternal          ErrorCode = "internal"
)

// GenericFailureMessage is shown to users for internal failures
const GenericFailureMessage = "Something went wrong. Please try again later."

// Error is a typed service failure with a user-facing message
type Error struct {
	Code    ErrorCode
	Message string // Safe to show to the user
	Err     error  // Underlying cause, never shown to the user
}

// Sentinels for errors.Is comparisons by code
var (
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrPermissionDenied  = &Error{Code: CodePermissionDenied}
	ErrConflict          = &Error{Code: CodeConflict}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds}
	ErrInvalidAmount     = &Error{Code: CodeInvalidAmount}
	ErrNotAnAngel        = &Error{Code: CodeNotAnAngel}
	ErrAlreadyCalculated = &Error{Code: CodeAlreadyCalculated}
	ErrNoPitches         = &Error{Code: CodeNoPitches}
	ErrInternal          = &Error{Code: CodeInternal}
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func internalError(err error, msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// CodeOf returns the code of a service error, CodeInternal for anything else
func CodeOf(err error) ErrorCode {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return CodeInternal
}

// UserMessage returns the message to show to a user for err
func UserMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Code != CodeInternal && svcErr.Message != "" {
		return svcErr.Message
	}
	return GenericFailureMessage
}
