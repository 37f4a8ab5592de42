package booking

import (
	"errors"
	"fmt"

	"github.com/Johnson150/cls-sub000/internal/db"
)

type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

// Error is returned by every Service operation. Code is a stable snake_case
// identifier for clients, Message is human readable.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(code, message string) *Error {
	return &Error{Kind: KindInvalidInput, Code: code, Message: message}
}

func notFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "server_error", Message: err.Error(), Err: err}
}

// AsError classifies err. Constraint violations that slip past the explicit
// checks are reported as invalid input, anything else unknown is internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr
	}
	switch {
	case db.IsUniqueViolation(err):
		return &Error{Kind: KindInvalidInput, Code: "duplicate", Message: err.Error(), Err: err}
	case db.IsForeignKeyViolation(err):
		return &Error{Kind: KindInvalidInput, Code: "invalid_reference", Message: err.Error(), Err: err}
	}
	return internal(err)
}

func IsNotFound(err error) bool {
	var bErr *Error
	return errors.As(err, &bErr) && bErr.Kind == KindNotFound
}

func IsInvalidInput(err error) bool {
	var bErr *Error
	return errors.As(err, &bErr) && bErr.Kind == KindInvalidInput
}
