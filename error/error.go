package error

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// General-purpose errors.
var (
	ErrEmptySource = errors.New("source empty")
	ErrNotFound    = errors.New("not found")
	ErrUserExists  = errors.New("user exists")
)

// Entity errors.
var (
	ErrInvalidComment  = errors.New("invalid comment")
	ErrInvalidProject  = errors.New("invalid project")
	ErrInvalidReaction = errors.New("invalid reaction")
	ErrInvalidWhisper  = errors.New("invalid whisper")
)

// Error wrapper.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsEmptySource indicates if err is ErrEmptySource.
func IsEmptySource(err error) bool {
	return unwrapError(err) == ErrEmptySource
}

// IsInvalidComment indicates if err is ErrInvalidComment.
func IsInvalidComment(err error) bool {
	return unwrapError(err) == ErrInvalidComment
}

// IsInvalidProject indicates if err is ErrInvalidProject.
func IsInvalidProject(err error) bool {
	return unwrapError(err) == ErrInvalidProject
}

// IsInvalidReaction indicates if err is ErrInvalidReaction.
func IsInvalidReaction(err error) bool {
	return unwrapError(err) == ErrInvalidReaction
}

// IsInvalidWhisper indicates if err is ErrInvalidWhisper.
func IsInvalidWhisper(err error) bool {
	return unwrapError(err) == ErrInvalidWhisper
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// IsUserExists indicates if err is ErrUserExists.
func IsUserExists(err error) bool {
	return unwrapError(err) == ErrUserExists
}

// Wrap constructs an Error with proper messaging.
func Wrap(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err, fmt.Sprintf(format, args...),
		),
	}
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}
