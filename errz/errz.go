// Package errz defines error types with source locations used by the
// zinc optimizer and virtual machine.
package errz

import "fmt"

// SourceLocation represents a position in script source code.
type SourceLocation struct {
	Filename string
	Line     int // 1-based line number
	Column   int // 1-based column number
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// ErrorKind represents the category of a run-time error.
type ErrorKind int

const (
	// ErrType indicates a run-time type clash on a dynamically typed value.
	ErrType ErrorKind = iota
	// ErrOverflow indicates a numeric overflow during a coercion.
	ErrOverflow
	// ErrValue indicates an invalid value for an operation.
	ErrValue
	// ErrRuntime indicates a general run-time error.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrType:
		return "type clash"
	case ErrOverflow:
		return "overflow"
	case ErrValue:
		return "value error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is a run-time error with a source location. Type clashes and
// overflow diagnostics raised by the virtual machine are always reported
// through this type so the user sees where in the script they occurred.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location SourceLocation
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Location)
}

// New creates an Error with the given kind, location, and message.
func New(kind ErrorKind, loc SourceLocation, message string) *Error {
	return &Error{Kind: kind, Message: message, Location: loc}
}

// Newf creates an Error with a formatted message.
func Newf(kind ErrorKind, loc SourceLocation, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Internalf formats a message describing an internal consistency failure.
// Callers panic with the result: such failures indicate a compiler bug
// rather than a user error, and no recovery is attempted.
func Internalf(format string, args ...any) string {
	return "internal error: " + fmt.Sprintf(format, args...)
}
