package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait(t *testing.T) {
	t.Run("should only apply the safety delay on the first call", func(t *testing.T) {
		l := New(WithMinInterval(time.Hour), WithSafetyDelay(10*time.Millisecond))

		start := time.Now()
		err := l.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
	})

	t.Run("should space consecutive grants by the interval plus the safety delay", func(t *testing.T) {
		const (
			minInterval = 50 * time.Millisecond
			safetyDelay = 20 * time.Millisecond
		)
		l := New(WithMinInterval(minInterval), WithSafetyDelay(safetyDelay))

		require.NoError(t, l.Wait(context.Background()))
		first := time.Now()

		require.NoError(t, l.Wait(context.Background()))
		gap := time.Since(first)

		assert.GreaterOrEqual(t, gap, minInterval+safetyDelay)
	})

	t.Run("should serialize concurrent callers on the shared clock", func(t *testing.T) {
		const (
			minInterval = 30 * time.Millisecond
			safetyDelay = 10 * time.Millisecond
			callers     = 3
		)
		l := New(WithMinInterval(minInterval), WithSafetyDelay(safetyDelay))

		var (
			mu     sync.Mutex
			grants []time.Time
			wg     sync.WaitGroup
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				require.NoError(t, l.Wait(context.Background()))
				mu.Lock()
				grants = append(grants, time.Now())
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, grants, callers)
		for i := 1; i < len(grants); i++ {
			gap := grants[i].Sub(grants[i-1])
			if gap < 0 {
				gap = -gap
			}
			assert.GreaterOrEqual(t, gap, minInterval)
		}
	})

	t.Run("should abort the wait when the context is canceled", func(t *testing.T) {
		l := New(WithMinInterval(time.Hour), WithSafetyDelay(time.Millisecond))

		require.NoError(t, l.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := l.Wait(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
