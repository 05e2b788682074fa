package services

import "errors"

// ErrValidation marks input the caller must fix. Controllers answer 400.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
