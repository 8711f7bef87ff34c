// Package apperrors defines the typed errors raised by validators and
// transactional handlers. The response package is the only place that converts
// them to HTTP; handlers themselves never build error JSON.
package apperrors

import (
	"errors"

	"gorm.io/gorm"
)

// Code is a stable machine-readable error code returned alongside the message
type Code int

const (
	CodeValidation     Code = 40001
	CodeAuthentication Code = 40101
	CodePermission     Code = 40301
	CodeNotFound       Code = 40401
	CodeDuplicate      Code = 40901
	CodeRelation       Code = 42201
	CodeInternal       Code = 50001
)

// Error is a typed application error with a stable code
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewAuthentication returns an authentication error (no or invalid session)
func NewAuthentication(msg string) *Error {
	return &Error{Code: CodeAuthentication, Message: msg}
}

// NewValidation returns a validation error (schema or business-rule failure)
func NewValidation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewNotFound returns a not-found error (missing entity)
func NewNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NewPermission returns a permission error (insufficient role)
func NewPermission(msg string) *Error {
	return &Error{Code: CodePermission, Message: msg}
}

// NewDuplicate returns a duplicate error (uniqueness violation)
func NewDuplicate(msg string) *Error {
	return &Error{Code: CodeDuplicate, Message: msg}
}

// NewRelation returns a relation error (ownership/relationship mismatch)
func NewRelation(msg string) *Error {
	return &Error{Code: CodeRelation, Message: msg}
}

// NewInternal returns an internal error
func NewInternal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// IsCode reports whether err is an application error carrying code
func IsCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// FromORM maps known gorm errors to typed application errors. Unknown errors
// come back unchanged so the response layer can treat them as internal.
func FromORM(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFound("Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewDuplicate("Record already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewRelation("Related record does not exist")
	}
	return err
}
