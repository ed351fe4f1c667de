package loop_test

import (
	"context"
	"testing"
	"time"

	"github.com/dasdy/softkeys/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fires timers in deadline order", func(t *testing.T) {
		m := loop.NewManual(start)

		var fired []string

		m.After(20*time.Millisecond, func() { fired = append(fired, "b") })
		m.After(10*time.Millisecond, func() { fired = append(fired, "a") })
		m.After(50*time.Millisecond, func() { fired = append(fired, "c") })

		m.Advance(30 * time.Millisecond)

		assert.Equal(t, []string{"a", "b"}, fired)
		assert.Equal(t, 1, m.Pending())
		assert.Equal(t, start.Add(30*time.Millisecond), m.Now())
	})

	t.Run("cancelled timers never fire", func(t *testing.T) {
		m := loop.NewManual(start)
		fired := false

		timer := m.After(10*time.Millisecond, func() { fired = true })

		assert.True(t, timer.Cancel())
		assert.False(t, timer.Cancel(), "second cancel reports nothing pending")

		m.Advance(time.Second)

		assert.False(t, fired)
	})

	t.Run("timers scheduled from callbacks run within the same advance", func(t *testing.T) {
		m := loop.NewManual(start)
		count := 0

		var tick func()
		tick = func() {
			count++
			m.After(10*time.Millisecond, tick)
		}

		m.After(10*time.Millisecond, tick)
		m.Advance(55 * time.Millisecond)

		assert.Equal(t, 5, count)
	})

	t.Run("clock is visible inside callbacks", func(t *testing.T) {
		m := loop.NewManual(start)

		var seen time.Time

		m.After(40*time.Millisecond, func() { seen = m.Now() })
		m.Advance(time.Second)

		assert.Equal(t, start.Add(40*time.Millisecond), seen)
	})
}

func TestLoop(t *testing.T) {
	t.Run("runs posted tasks and timers on the loop", func(t *testing.T) {
		l := loop.New(8)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- l.Run(ctx) }()

		done := make(chan string, 2)
		l.Post(func() { done <- "posted" })
		l.After(5*time.Millisecond, func() { done <- "timer" })

		assert.Equal(t, "posted", <-done)
		assert.Equal(t, "timer", <-done)

		cancel()
		require.ErrorIs(t, <-errCh, context.Canceled)
	})

	t.Run("cancelled timer does not run", func(t *testing.T) {
		l := loop.New(8)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = l.Run(ctx) }()

		fired := make(chan struct{}, 1)
		timer := l.After(20*time.Millisecond, func() { fired <- struct{}{} })

		cancelled := make(chan bool, 1)
		l.Post(func() { cancelled <- timer.Cancel() })
		assert.True(t, <-cancelled)

		select {
		case <-fired:
			t.Fatal("cancelled timer fired")
		case <-time.After(60 * time.Millisecond):
		}
	})
}
