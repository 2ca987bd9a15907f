package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAttach   Phase = "attach"   // push/pop/get against a carrier
	PhaseDecode   Phase = "decode"   // serialized form to value
	PhaseEncode   Phase = "encode"   // value to serialized form
	PhaseDispatch Phase = "dispatch" // selecting an inner transcoder
	PhaseSync     Phase = "sync"     // sharing a store with a child carrier
	PhaseBridge   Phase = "bridge"   // crossing carrier representations
)

// Kind categorizes the error
type Kind string

const (
	KindMissingAttachment  Kind = "missing_attachment"
	KindDispatchFailure    Kind = "dispatch_failure"
	KindKeyDerivation      Kind = "key_derivation"
	KindUnsupportedCarrier Kind = "unsupported_carrier"
	KindHandoffBusy        Kind = "handoff_busy"
	KindTypeMismatch       Kind = "type_mismatch"
	KindFieldMissing       Kind = "field_missing"
	KindInvalidData        Kind = "invalid_data"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindLimitExceeded      Kind = "limit_exceeded"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Key     string
	Detail  string
	Present []string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Key != "" {
		b.WriteString(": attachment [")
		b.WriteString(e.Key)
		b.WriteByte(']')
	}

	if e.Detail != "" {
		if e.Key != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Kind == KindMissingAttachment {
		b.WriteString("; attachments present: [")
		b.WriteString(strings.Join(e.Present, ", "))
		b.WriteByte(']')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Key sets the attachment key name
func (b *Builder) Key(name string) *Builder {
	b.err.Key = name
	return b
}

// Present sets the names of the attachments present at failure time
func (b *Builder) Present(names []string) *Builder {
	b.err.Present = names
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MissingAttachment reports that a required attachment was never pushed by
// an enclosing combinator. present lists the names that were attached.
func MissingAttachment(phase Phase, key string, present []string) *Error {
	if present == nil {
		present = []string{}
	}
	return &Error{
		Phase:   phase,
		Kind:    KindMissingAttachment,
		Key:     key,
		Detail:  "not present",
		Present: present,
	}
}

// UnsupportedCarrier creates an error for a carrier that cannot hold or swap a store
func UnsupportedCarrier(phase Phase, carrier any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedCarrier,
		Detail: fmt.Sprintf("%T: %s", carrier, detail),
		Value:  carrier,
	}
}

// DispatchFailure wraps an error reported by a dispatcher function.
// Structured errors are returned unchanged.
func DispatchFailure(phase Phase, key string, cause error) error {
	var structured *Error
	if stderrors.As(cause, &structured) {
		return cause
	}
	return &Error{
		Phase:  phase,
		Kind:   KindDispatchFailure,
		Key:    key,
		Detail: "dispatcher rejected attachment",
		Cause:  cause,
	}
}

// KeyDerivation creates an error for an encode-time key derivation failure
func KeyDerivation(cause error) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindKeyDerivation,
		Detail: "derive key from value",
		Cause:  cause,
	}
}

// HandoffBusy reports a reentrant use of the goroutine-scoped handoff slot
func HandoffBusy(goroutine uint64) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindHandoffBusy,
		Detail: fmt.Sprintf("handoff slot of goroutine %d already occupied", goroutine),
		Value:  goroutine,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, want string, got any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %T", want, got),
		Value:  got,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, want, available int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, %d available", want, available),
		Value:  want,
	}
}

// LimitExceeded creates an error for a declared length above a configured limit
func LimitExceeded(phase Phase, what string, n, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLimitExceeded,
		Detail: fmt.Sprintf("%s %d exceeds limit %d", what, n, limit),
		Value:  n,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Join combines errors, discarding nils. It returns nil when all are nil
// and the sole error when only one remains.
func Join(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return stderrors.Join(kept...)
}

// Is is stderrors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is stderrors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
