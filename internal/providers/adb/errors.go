package adb

import (
	"github.com/pkg/errors"
)

// Kind classifies why an adb invocation did not produce a result.
type Kind int

const (
	KindUnknown Kind = iota
	// KindExecution means adb could not be launched or its output could not be read.
	KindExecution
	// KindAmbiguousDevice means more than one device matched an unscoped command.
	KindAmbiguousDevice
	// KindNoDevices means no device or emulator matched.
	KindNoDevices
	// KindParse means the output did not have the expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindExecution:
		return "execution"
	case KindAmbiguousDevice:
		return "ambiguous_device"
	case KindNoDevices:
		return "no_devices"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the single failure type returned by this package.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := "adb: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through to the underlying I/O failure.
func (e *Error) Cause() error { return e.Err }

func executionError(err error, detail string) *Error {
	return &Error{Kind: KindExecution, Detail: detail, Err: err}
}

func parseError(detail string) *Error {
	return &Error{Kind: KindParse, Detail: detail}
}

// KindOf reports the Kind carried by err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var adbErr *Error
	if errors.As(err, &adbErr) {
		return adbErr.Kind
	}
	return KindUnknown
}
