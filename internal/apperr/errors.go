/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package apperr classifies errors so callers can tell a recoverable,
// per-item failure from one that must abort a run.
package apperr

import (
	"errors"
	"fmt"
)

// ErrorType represents the class of an error.
type ErrorType string

const (
	// ErrorTypeNotFound indicates a lookup matched nothing.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeValidation indicates malformed configuration input.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeLink indicates a linked configuration file could not be used.
	ErrorTypeLink ErrorType = "LINK"
	// ErrorTypeCreation indicates the library rejected a new folder or playlist.
	ErrorTypeCreation ErrorType = "CREATION"
	// ErrorTypeInternal indicates anything else.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is an error tagged with its ErrorType.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an error of the given type.
func New(errorType ErrorType, format string, args ...any) error {
	return &AppError{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a typed message. A nil err yields nil.
func Wrap(errorType ErrorType, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{Type: errorType, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) error {
	return New(ErrorTypeNotFound, format, args...)
}

// Validation creates a validation error.
func Validation(format string, args ...any) error {
	return New(ErrorTypeValidation, format, args...)
}

// TypeOf returns the outermost ErrorType found in err's chain, or
// ErrorTypeInternal when none is present.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool { return is(err, ErrorTypeNotFound) }

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return is(err, ErrorTypeValidation) }

// IsLink checks if an error is a link error.
func IsLink(err error) bool { return is(err, ErrorTypeLink) }

// IsCreation checks if an error is a creation error.
func IsCreation(err error) bool { return is(err, ErrorTypeCreation) }

func is(err error, errorType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errorType {
			return true
		}
		err = appErr.Err
	}
	return false
}
