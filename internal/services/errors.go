package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPages       = NewValidationError("pages", "le nombre de pages doit être un entier positif")
	ErrPagesOutOfRange    = NewValidationError("pages", "le nombre de pages dépasse le maximum autorisé")
	ErrInvalidTransition  = errors.New("operation not allowed in the current order state")
	ErrNotFound           = errors.New("not found")
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrClientNotFound     = fmt.Errorf("client %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("question %w", ErrNotFound)
	ErrPackNotFound       = fmt.Errorf("pack %w", ErrNotFound)
	ErrSettingNotFound    = fmt.Errorf("setting %w", ErrNotFound)
	ErrSessionExpired     = errors.New("admin session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches validation errors on the same field and message, so sentinel
// values such as ErrInvalidPages work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Field == t.Field && e.Message == t.Message
}

// UploadError means the blob store rejected one of the submitted files.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError means a store insert or update failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError means the confirmation could not be delivered.
// It is logged, never returned to the HTTP caller.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
