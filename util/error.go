package util

import (
	"errors"
	"strings"
)

// -----------------------------------------------------------------------------

type extendedError struct {
	message string
	err     error
}

type classifiedError struct {
	extendedError
	class error
}

// -----------------------------------------------------------------------------

// NewExtendedError creates a new error that wraps an error and includes the given message.
func NewExtendedError(err error, message string) error {
	return &extendedError{
		message: message,
		err:     err,
	}
}

// NewClassifiedError creates a new error that belongs to the given class, wraps an optional
// cause and includes the given message. Both the class and the cause can be matched with
// errors.Is.
func NewClassifiedError(class error, cause error, message string) error {
	return &classifiedError{
		extendedError: extendedError{
			message: class.Error() + ": " + message,
			err:     cause,
		},
		class: class,
	}
}

// Error returns a string representation of the error.
func (w *extendedError) Error() string {
	sb := strings.Builder{}
	_, _ = sb.WriteString(w.message)
	for err := w.err; err != nil; {
		_, _ = sb.WriteString(" [err=")
		switch childW := err.(type) {
		case *extendedError:
			_, _ = sb.WriteString(childW.message)
			err = childW.err

		case *classifiedError:
			_, _ = sb.WriteString(childW.message)
			err = childW.err

		default:
			_, _ = sb.WriteString(err.Error())
			err = errors.Unwrap(err)
		}
		_, _ = sb.WriteString("]")
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (w *extendedError) Unwrap() error {
	return w.err
}

// Unwrap returns the error class and, if present, the underlying cause.
func (w *classifiedError) Unwrap() []error {
	if w.err == nil {
		return []error{w.class}
	}
	return []error{w.class, w.err}
}
