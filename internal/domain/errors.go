package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures raised by the evaluation core.
type Kind int

const (
	// KindOutOfRange is a query outside the loaded data coverage.
	KindOutOfRange Kind = iota + 1
	// KindMissingDependency is a model that was not compiled in or not configured.
	KindMissingDependency
	// KindMalformedInput is input data that violates size or ordering preconditions.
	KindMalformedInput
)

func (k Kind) String() string {
	switch k {
	case KindOutOfRange:
		return "out of range"
	case KindMissingDependency:
		return "missing dependency"
	case KindMalformedInput:
		return "malformed input"
	default:
		return "unknown"
	}
}

// Sentinel values for errors.Is checks.
var (
	ErrOutOfRange        = &Error{Kind: KindOutOfRange}
	ErrMissingDependency = &Error{Kind: KindMissingDependency}
	ErrMalformedInput    = &Error{Kind: KindMalformedInput}
)

// Error carries a kind and a diagnostic message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// OutOfRange returns an out-of-range error with a formatted message.
func OutOfRange(format string, args ...any) error {
	return &Error{Kind: KindOutOfRange, Msg: fmt.Sprintf(format, args...)}
}

// MissingDependency returns a missing-dependency error with a formatted message.
func MissingDependency(format string, args ...any) error {
	return &Error{Kind: KindMissingDependency, Msg: fmt.Sprintf(format, args...)}
}

// MalformedInput returns a malformed-input error with a formatted message.
func MalformedInput(format string, args ...any) error {
	return &Error{Kind: KindMalformedInput, Msg: fmt.Sprintf(format, args...)}
}

// WrapMalformed attaches the malformed-input kind to a lower-level error.
func WrapMalformed(err error, format string, args ...any) error {
	return &Error{Kind: KindMalformedInput, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
