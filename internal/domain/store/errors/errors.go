package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrFileRejected       = errors.New("file rejected")
)

// Error carries a message meant for the API client next to the sentinel
// that classifies it. errors.Is matches the sentinel.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func NewInvalidArgument(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Message: msg}
}

func NewMissingField(field string) error {
	return &Error{Kind: ErrInvalidArgument, Field: field, Message: field + " is required"}
}

func NewAlreadyExists(field, msg string) error {
	return &Error{Kind: ErrAlreadyExists, Field: field, Message: msg}
}

func NewNotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NewInvalidCredentials(msg string) error {
	return &Error{Kind: ErrInvalidCredentials, Message: msg}
}

func NewTokenExpired(msg string) error {
	return &Error{Kind: ErrTokenExpired, Message: msg}
}

func NewUnauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

func NewForbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func NewNotVerified(msg string) error {
	return &Error{Kind: ErrNotVerified, Message: msg}
}

func NewInvalidToken(msg string) error {
	return &Error{Kind: ErrInvalidToken, Message: msg}
}

func NewFileRejected(msg string) error {
	return &Error{Kind: ErrFileRejected, Message: msg}
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

// Message returns the client-facing text of err, falling back to the
// sentinel text for errors that do not carry one.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// FieldOf reports which input field err refers to, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsNotVerified(err error) bool {
	return errors.Is(err, ErrNotVerified)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

func IsFileRejected(err error) bool {
	return errors.Is(err, ErrFileRejected)
}
