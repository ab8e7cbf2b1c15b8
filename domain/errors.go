package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeInvalid        ErrorCode = "INVALID"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeCooldown       ErrorCode = "COOLDOWN"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable    ErrorCode = "UNAVAILABLE"
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrCodeQuota          ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrEventNotFound    = NewError(ErrCodeNotFound, "live event not found")
	ErrNoStore          = NewError(ErrCodeNotImplemented, "no backing store configured")
	ErrStaleRevision    = NewError(ErrCodeConflict, "document revision is stale")
	ErrCooldownActive   = NewError(ErrCodeCooldown, "please wait before voting again")
	ErrInvalidScore     = NewError(ErrCodeInvalid, "score must be an integer between 1 and 5")
	ErrInvalidTarget    = NewError(ErrCodeInvalid, "rating type must be \"upcoming\" or \"item\"")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrFeedbackClosed   = NewError(ErrCodeInvalid, "feedback window is closed")
	ErrStoreUnavailable = NewError(ErrCodeUnavailable, "backing store unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
