// Package errs provides op-tagged error wrapping helpers.
//
// Handlers and services tag errors with a short operation name
// ("api.create_candle") so log lines and error chains stay greppable.
// Sentinel kinds live in each package's errors.go and are attached
// with NewKind/WrapKind so callers can use errors.Is.
package errs

import "fmt"

// Wrap annotates err with the operation that produced it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind produces an op-tagged error of the given sentinel kind.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind attaches both a sentinel kind and an underlying cause.
// errors.Is matches the kind; the cause is kept for the message only.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
