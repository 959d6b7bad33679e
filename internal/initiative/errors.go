package initiative

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers malformed ids, unknown file selectors and
	// missing required fields.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates the initiative or one of its files is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating an id that is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrIO wraps unexpected filesystem failures.
	ErrIO = errors.New("io failure")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}

func ioFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
