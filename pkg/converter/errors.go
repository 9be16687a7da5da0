package converter

import (
	"errors"
	"fmt"
)

// Error classes. Every failure returned by Convert is either a validation
// error, a decode error from imagedecode, or an I/O error.
var (
	ErrUsage      = errors.New("usage error")
	ErrValidation = errors.New("validation error")
)

// validationError carries a user facing message and matches ErrValidation.
type validationError struct {
	msg   string
	cause error
}

func (e *validationError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *validationError) Unwrap() error {
	return e.cause
}

func invalidf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

func invalidWrap(err error, format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Usagef builds an error matching ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
