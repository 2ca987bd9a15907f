package codec

import (
	"github.com/wippyai/attachments/errors"
)

// Result is the outcome of a structural decode or encode. A failed result may
// still carry a partial value.
type Result[T any] struct {
	value T
	err   error
	has   bool
}

func Success[T any](v T) Result[T] {
	return Result[T]{value: v, has: true}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Partial is a failure that still produced a usable value.
func Partial[T any](v T, err error) Result[T] {
	if err == nil {
		return Success(v)
	}
	return Result[T]{value: v, err: err, has: true}
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the value of a successful result.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// PartialValue returns the value of a successful or partial result.
func (r Result[T]) PartialValue() (T, bool) {
	return r.value, r.has
}

// Get returns the value, or the zero value, with the error.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Then chains f onto a result that has a value. Errors from both steps are
// kept.
func Then[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.has {
		return Failure[U](r.err)
	}
	next := f(r.value)
	if r.err == nil {
		return next
	}
	err := errors.Join(r.err, next.err)
	if next.has {
		return Partial(next.value, err)
	}
	return Failure[U](err)
}

// Map transforms the value, keeping any error.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.has {
		return Failure[U](r.err)
	}
	return Result[U]{value: f(r.value), err: r.err, has: true}
}

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsPresent() bool {
	return o.ok
}

func (o Optional[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
