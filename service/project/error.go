package project

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Project validation and Service.
var (
	ErrEmptySource    = errors.New("empty source")
	ErrInvalidProject = errors.New("invalid project")
	ErrNotFound       = errors.New("project not found")
)

// Error wraps common Project errors.
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

// IsInvalidProject indicates if err is ErrInvalidProject.
func IsInvalidProject(err error) bool {
	return unwrapError(err) == ErrInvalidProject
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
