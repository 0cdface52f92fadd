package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// PersistenceError wraps any failure coming out of a repository.
// A batch operation may have partially applied by the time it is raised;
// callers must treat the whole operation as failed and safely retriable.
type PersistenceError struct {
	Err error
}

func NewPersistenceError(err error, msg string) error {
	return &PersistenceError{Err: errors.Wrap(err, msg)}
}

func (err PersistenceError) Error() string {
	return err.Err.Error()
}

func IsPersistenceError(err error) bool {
	_, ok := errors.Cause(err).(*PersistenceError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
