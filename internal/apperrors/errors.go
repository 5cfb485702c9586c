package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap business-rule violations with one of these;
// handlers classify with errors.Is and map to transport status codes.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
)

type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }

func (e *appError) Unwrap() error { return e.kind }

func Validation(msg string) error {
	return &appError{kind: ErrValidation, msg: msg}
}

func Validationf(format string, args ...any) error {
	return &appError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Authorization(msg string) error {
	return &appError{kind: ErrAuthorization, msg: msg}
}

func NotFound(msg string) error {
	return &appError{kind: ErrNotFound, msg: msg}
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsAuthorization(err error) bool { return errors.Is(err, ErrAuthorization) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
