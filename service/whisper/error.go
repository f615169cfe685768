package whisper

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Whisper validation and Service.
var (
	ErrInvalidWhisper = errors.New("invalid whisper")
	ErrNotFound       = errors.New("whisper not found")
)

// Error wraps common Whisper errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidWhisper indicates if err is ErrInvalidWhisper.
func IsInvalidWhisper(err error) bool {
	return unwrapError(err) == ErrInvalidWhisper
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err,
			fmt.Sprintf(format, args...),
		),
	}
}
