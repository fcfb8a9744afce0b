// Package options implements the functional-options pattern used to
// configure constructors that take a long, optional tail of settings
// (segment.NewWriter's WriterOptions being the one consumer in this
// module) without a builder type or a sprawling parameter list.
package options

// Option configures a target of type T, returning an error if the setting
// it carries is invalid for that target.
type Option[T any] func(T) error

// Apply runs each option against target in order, stopping at the first
// error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt(target); err != nil {
			return err
		}
	}

	return nil
}

// NoError wraps a setter that can't fail into an Option.
func NoError[T any](fn func(T)) Option[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}
