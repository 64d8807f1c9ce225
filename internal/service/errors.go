package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflicting state")
	ErrNotFound   = errors.New("requested resource not found")
	ErrTransient  = errors.New("storage temporarily unavailable")
)

// Error carries a message fit for the operator alongside its kind.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Detail: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Detail: fmt.Sprintf(format, args...)}
}

// storeErr classifies a storage failure. Missing rows become NotFound with the
// given subject, everything else is Transient.
func storeErr(subject string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("%s not found", subject)
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return &Error{Kind: ErrTransient, Detail: fmt.Sprintf("failed to access %s, please retry", subject), Err: err}
}
