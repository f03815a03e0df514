package errors

import (
	"errors"
)

var (
	ErrRecoverable = errors.New("recoverable err occoured")
	ErrTimeout     = errors.New("hardware wait timed out")
)

func New(msg string) error {
	return errors.New(msg)
}

func Join(err ...error) error {
	return errors.Join(err...)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// NewRecoverable marks an error the caller may retry after
func NewRecoverable(msg string) error {
	return errors.Join(ErrRecoverable, New(msg))
}

// NewTimeout marks a bounded hardware wait that expired
func NewTimeout(msg string) error {
	return errors.Join(ErrTimeout, New(msg))
}
