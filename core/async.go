package core

import "context"

// Result carries the single value delivered by an async call.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn on a goroutine. The returned channel receives exactly one
// Result and is then closed.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		value, err := fn(ctx)
		out <- Result[T]{Value: value, Err: err}
	}()
	return out
}
