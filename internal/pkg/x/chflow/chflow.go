// Package chflow contains context-aware channel helpers so blocking sends
// and receives always respect cancellation.
package chflow

import "context"

// Receive blocks until a value arrives on ch or ctx is done. The boolean is
// false when the context was canceled or the channel was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send blocks until data is sent on ch or ctx is done, reporting whether
// the send happened.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
