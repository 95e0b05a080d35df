package console

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenTooLong indicates a token doesn't fit the token buffer.
	ErrTokenTooLong = errors.New("token too long")
	// ErrMissingArgument indicates the line ended before a required argument.
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidNumber indicates an argument is not a decimal integer.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrOutOfRange indicates a numeric argument exceeds its range.
	ErrOutOfRange = errors.New("out of range")
	// ErrNoTransaction indicates a bus transfer or end without spistart.
	ErrNoTransaction = errors.New("no spi transaction, use spistart")
	// ErrTransactionActive indicates spistart while a transaction is open.
	ErrTransactionActive = errors.New("spi transaction already started, use spiend")
)

// ArgError reports a bad argument of a command.
type ArgError struct {
	Arg   string
	Token string
	Err   error
}

// Error implements error.
func (e *ArgError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %v", e.Arg, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Arg, e.Token, e.Err)
}

// Unwrap returns the underlying error.
func (e *ArgError) Unwrap() error {
	return e.Err
}
