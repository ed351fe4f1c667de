// Package loop runs every input callback on a single goroutine and provides cancellable
// delayed callbacks scheduled against it.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dasdy/softkeys/logging"
)

// Timer is a handle to a pending callback.
type Timer interface {
	// Cancel prevents the callback from running. It reports whether the callback was
	// still pending.
	Cancel() bool
}

// Scheduler schedules callbacks on the input loop.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
}

var logCtx = logging.PackageCtx("loop")

// Loop serialises tasks onto the goroutine that calls Run.
type Loop struct {
	tasks chan func()
	now   func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

func New(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

func (l *Loop) Now() time.Time {
	return l.now()
}

// Post queues fn to run on the loop. Posting after the loop stopped is a no-op.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		slog.DebugContext(logCtx, "dropping task posted after shutdown")
	case l.tasks <- fn:
	}
}

// Run executes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.closeOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

type loopTimer struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

// After schedules fn on the loop. The cancelled flag is checked on the loop goroutine, so
// a timer cancelled after it expired but before its task ran never runs.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.cancelled.Load() {
				return
			}

			t.fired.Store(true)
			fn()
		})
	})

	return t
}

func (t *loopTimer) Cancel() bool {
	t.timer.Stop()

	return !t.fired.Load() && t.cancelled.CompareAndSwap(false, true)
}
