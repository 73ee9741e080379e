package th

import (
	"errors"
	"fmt"
)

// #region sentinels
var (
	// ErrInvalidArgument is returned when an argument is outside its domain.
	ErrInvalidArgument = errors.New("th: invalid argument")

	// ErrLength is returned when a sequence argument has the wrong number of elements.
	ErrLength = errors.New("th: length error")
)

// #endregion sentinels

// #region argument-error

// ArgumentError names the offending argument. It unwraps to ErrInvalidArgument
// or ErrLength so callers can match with errors.Is.
type ArgumentError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Name, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

func invalidArg(name, reason string) error {
	return &ArgumentError{Name: name, Reason: reason, Err: ErrInvalidArgument}
}

func lengthErr(name, reason string) error {
	return &ArgumentError{Name: name, Reason: reason, Err: ErrLength}
}

// #endregion argument-error
