package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies service failures for the HTTP layer. Raw infrastructure
// errors are always wrapped before they reach a caller.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindCapacityConflict
	KindInvalidTransition
	KindValidation
	KindDownstream
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from any error in the chain; unknown errors are
// internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func CapacityConflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindCapacityConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// wrapDB folds a gorm error into the taxonomy: record-not-found becomes
// NotFound with the given entity name, everything else an opaque internal
// error.
func wrapDB(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("%s not found", entity)
	}
	return &Error{Kind: KindInternal, Message: "datastore error on " + entity, Err: err}
}
