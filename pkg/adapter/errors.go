package adapter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a command could not be built.
type ErrorKind string

const (
	// KindUndetected means the probe ended in an "unknown" sentinel and the
	// host has no supported tool for the requested domain.
	KindUndetected ErrorKind = "undetected"

	// KindUnsupported means the tool family is known but has no row for the
	// requested action.
	KindUnsupported ErrorKind = "unsupported"

	// KindInvalidInput means a required target or rule is missing or
	// malformed.
	KindInvalidInput ErrorKind = "invalid_input"
)

// BuildError is the classified error returned by Build. Callers turn it into
// an error envelope; it never escapes as a panic or a process abort.
type BuildError struct {
	Kind    ErrorKind
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func errUndetectedf(format string, args ...any) *BuildError {
	return &BuildError{Kind: KindUndetected, Message: fmt.Sprintf(format, args...)}
}

func errUnsupportedf(format string, args ...any) *BuildError {
	return &BuildError{Kind: KindUnsupported, Message: fmt.Sprintf(format, args...)}
}

func errInvalidInputf(format string, args ...any) *BuildError {
	return &BuildError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func isKind(err error, kind ErrorKind) bool {
	var e *BuildError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsUndetected reports whether err stems from an undetected tool family.
func IsUndetected(err error) bool { return isKind(err, KindUndetected) }

// IsUnsupported reports whether err stems from an action a detected tool
// family does not support.
func IsUnsupported(err error) bool { return isKind(err, KindUnsupported) }

// IsInvalidInput reports whether err stems from a missing target or a
// malformed rule.
func IsInvalidInput(err error) bool { return isKind(err, KindInvalidInput) }
