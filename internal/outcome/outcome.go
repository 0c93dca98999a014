// package outcome provides the value-or-error pair used as the error-signaling
// convention across the session, cache, and admin components.
//
// Every operation returns a [Result] instead of panicking; only unrecoverable
// startup conditions terminate the process.
package outcome

import "fmt"

// Result holds either a valid value or an error describing the failure.
//
// Exactly one of the two is meaningful. A default value may accompany an error
// for ergonomic fallback, but callers must check Err before using Value.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the result carries a usable value.
func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// Unwrap returns the value and error as a conventional Go pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Wrap builds a Result from a (value, error) pair. When err is non-nil the
// value slot holds the optional default instead of v.
func Wrap[T any](v T, err error, fallback ...T) Result[T] {
	if err != nil {
		var zero T
		if len(fallback) > 0 {
			zero = fallback[0]
		}
		return Result[T]{Value: zero, Err: err}
	}
	return Result[T]{Value: v}
}

// Fail builds an error-only Result with an optional fallback value.
func Fail[T any](err error, fallback ...T) Result[T] {
	var zero T
	return Wrap(zero, err, fallback...)
}

// Value builds a successful Result.
func Value[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Guard executes fn and converts any panic into an error Result, so no panic
// crosses a component boundary.
func Guard[T any](fn func() (T, error), fallback ...T) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			if len(fallback) > 0 {
				zero = fallback[0]
			}
			res = Result[T]{Value: zero, Err: fmt.Errorf("recovered: %v", r)}
		}
	}()

	v, err := fn()
	return Wrap(v, err, fallback...)
}
