// Package task models asynchronous operations that may be simulated locally or backed
// by a real remote call, behind one signature.
package task

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

// Func is an asynchronous unit of work producing T.
type Func[T any] func(ctx context.Context) (T, error)

// Result is the outcome of an awaited task.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Simulated wraps fn behind a fixed artificial latency. The wait honours ctx, and fn is
// never invoked once ctx is done.
func Simulated[T any](delay time.Duration, fn Func[T]) Func[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}
		return fn(ctx)
	}
}

// Start launches fn in its own goroutine and returns a channel delivering exactly one
// Result.
func Start[T any](ctx context.Context, fn Func[T]) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		v, err := fn(ctx)
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}

// Await runs fn and waits for it, translating an exceeded deadline into a
// TRANSPORT_FAILURE. Cancellation is returned unchanged.
func Await[T any](ctx context.Context, fn Func[T]) (T, error) {
	var res Result[T]
	select {
	case res = <-Start(ctx, fn):
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if res.Err != nil && errors.Is(res.Err, context.DeadlineExceeded) {
		var zero T
		return zero, appErrors.Wrap(res.Err, appErrors.ErrTransportFailure.Code, appErrors.ErrTransportFailure.Status, appErrors.ErrTransportFailure.Message)
	}
	return res.Value, res.Err
}
