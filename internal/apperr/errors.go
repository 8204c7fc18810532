package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the pipeline reacts to it.
type Kind int

const (
	// KindConfig aborts before any output is produced.
	KindConfig Kind = iota + 1
	// KindResource is recovered locally: the item is skipped and mapping continues.
	KindResource
	// KindConsistency aborts the run before a corrupted output is written.
	KindConsistency
	// KindExternal is recovered per unit of work (one fragment, one call).
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "CONFIG"
	case KindResource:
		return "RESOURCE"
	case KindConsistency:
		return "CONSISTENCY"
	case KindExternal:
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the application error carried through the pipeline stages.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

func Config(op string, err error, format string, args ...any) *Error {
	return newError(KindConfig, op, err, format, args...)
}

func Resource(op string, err error, format string, args ...any) *Error {
	return newError(KindResource, op, err, format, args...)
}

func Consistency(op string, format string, args ...any) *Error {
	return newError(KindConsistency, op, nil, format, args...)
}

func External(op string, err error, format string, args ...any) *Error {
	return newError(KindExternal, op, err, format, args...)
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
