package loop

import (
	"slices"
	"time"
)

// Manual is a Scheduler driven by an explicit clock. Tests and trace replay use it to run
// timers deterministically; it must only be used from one goroutine.
type Manual struct {
	now     time.Time
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	m        *Manual
	deadline time.Time
	seq      int
	fn       func()
	done     bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{m: m, deadline: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)

	return t
}

func (t *manualTimer) Cancel() bool {
	if t.done {
		return false
	}

	t.done = true
	t.m.pending = slices.DeleteFunc(t.m.pending, func(p *manualTimer) bool { return p == t })

	return true
}

// Pending is the number of timers that have not fired or been cancelled.
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Advance moves the clock forward by d, firing due timers in deadline order.
func (m *Manual) Advance(d time.Duration) {
	m.AdvanceTo(m.now.Add(d))
}

// AdvanceTo moves the clock to target. Timers scheduled by fired callbacks run too if
// they fall due before target. Moving backwards is ignored.
func (m *Manual) AdvanceTo(target time.Time) {
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}

		m.now = next.deadline
		next.done = true
		m.pending = slices.DeleteFunc(m.pending, func(p *manualTimer) bool { return p == next })
		next.fn()
	}

	if target.After(m.now) {
		m.now = target
	}
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	var next *manualTimer

	for _, t := range m.pending {
		if t.deadline.After(target) {
			continue
		}

		if next == nil || t.deadline.Before(next.deadline) ||
			(t.deadline.Equal(next.deadline) && t.seq < next.seq) {
			next = t
		}
	}

	return next
}
