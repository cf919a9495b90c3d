// Package fault defines the error taxonomy shared by every pipeline stage.
// Each failure carries a sentinel Kind so callers can branch with errors.Is
// while still seeing the concrete cause and any captured tool output.
package fault

import (
	"errors"
	"fmt"
)

var (
	ErrUsage                   = errors.New("usage error")
	ErrConfig                  = errors.New("invalid configuration")
	ErrCompileFailed           = errors.New("compile failed")
	ErrNoGeneratedOutput       = errors.New("no generated output")
	ErrUnexpectedFederateCount = errors.New("unexpected federate count")
	ErrClassification          = errors.New("classification error")
	ErrArtifactNotFound        = errors.New("artifact not found")
	ErrInvalidRemoteAddress    = errors.New("invalid remote address")
	ErrToolNotFound            = errors.New("tool not found")
	ErrTransferFailed          = errors.New("transfer failed")
	ErrInterrupted             = errors.New("interrupted")
)

// Error is a classified pipeline failure.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Msg describes the failure with the paths and counts involved.
	Msg string
	// Output is captured stdout/stderr of an external tool, if any.
	Output []byte
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an Error of the given kind.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// WithOutput attaches captured tool output and returns the same error.
func (e *Error) WithOutput(out []byte) *Error {
	e.Output = out
	return e
}

// KindOf returns the sentinel kind of err, or nil when err is not classified.
func KindOf(err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return nil
}

// OutputOf returns the captured tool output attached to err, if any.
func OutputOf(err error) []byte {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Output
	}
	return nil
}
