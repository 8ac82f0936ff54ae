package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Code is a machine-readable failure condition returned by services.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeRedundant        Code = "REDUNDANT"
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	CodeInternal         Code = "INTERNAL"
)

// Error is the failure result of a service operation.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so callers can test against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidRequest   = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrRedundant        = &Error{Code: CodeRedundant, Message: "redundant request"}
	ErrCapacityExceeded = &Error{Code: CodeCapacityExceeded, Message: "visibility full"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) *Error {
	return newError(CodeInvalidRequest, format, args...)
}

// CodeOf extracts the failure code of err. A nil error has no code;
// anything that is not a service error counts as internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CodeNotFound
	}
	return CodeInternal
}

// lookup turns a missing row into a NotFound naming what was looked up.
func lookup(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(CodeNotFound, "%s not found", what)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// surface converts err into the result returned across the service boundary.
// Service errors pass through; anything else is logged once and reported as internal.
func surface(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(CodeNotFound, "%s: not found", op)
	}
	log.Error("operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Code: CodeInternal, Message: "internal error", cause: err}
}
