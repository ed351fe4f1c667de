package tracelog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/session"
	"github.com/dasdy/softkeys/tracelog"
	"github.com/dasdy/softkeys/tracelog/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One row of four keys at 400x100; key i is centred at (50+100i, 50).
const testLayout = `
keyboards:
  main:
    width: 25
    rows:
      - keys:
          - {click: a, long_click: {text: long}}
          - {click: b}
          - {click: c}
          - {click: d}
`

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	calls []string
}

func (r *recorder) OnPress(model.KeyCode)   {}
func (r *recorder) OnRelease(model.KeyCode) {}

func (r *recorder) OnKey(code model.KeyCode, _ model.Modifier) {
	r.calls = append(r.calls, "key:"+code.DefaultLabel())
}

func (r *recorder) OnEvent(ev *model.Event) {
	r.calls = append(r.calls, "event:"+ev.Label)
}

func (r *recorder) OnText(text string) {
	r.calls = append(r.calls, "text:"+text)
}

func newSession(t *testing.T, sched loop.Scheduler, rec *recorder) *session.Session {
	t.Helper()

	doc, err := layout.Parse(strings.NewReader(testLayout))
	require.NoError(t, err)

	s, err := session.New(doc, session.Options{
		Width:     400,
		Height:    100,
		Gesture:   gesture.DefaultConfig(),
		Keyboard:  keyboard.DefaultOptions(),
		Scheduler: sched,
		Listener:  rec,
	})
	require.NoError(t, err)

	return s
}

func TestReplay(t *testing.T) {
	t.Run("replays a trace on the manual clock", func(t *testing.T) {
		trace := strings.Join([]string{
			"*** Booting touch controller ***",
			"t: 0, id: 0, action: down, x: 50, y: 50",
			"t: 30, id: 0, action: up, x: 50, y: 50",
			"t: later, id: 0, action: down, x: 1, y: 1",
			"t: 200, id: 0, action: down, x: 150, y: 50",
			"t: 190, id: 0, action: up, x: 150, y: 50",
			"t: 500, id: 0, action: down, x: 50, y: 50",
		}, "\n")

		sched := loop.NewManual(start)
		rec := &recorder{}
		s := newSession(t, sched, rec)

		stats, err := tracelog.Replay(context.Background(), ports.ReadFile(strings.NewReader(trace)), s, sched,
			tracelog.ReplayOptions{Tail: tracelog.DefaultTail})
		require.NoError(t, err)

		assert.Equal(t, tracelog.Stats{Lines: 7, Samples: 5, Skipped: 1, Reordered: 1}, stats)
		assert.Equal(t, []string{"key:a", "key:b", "text:long"}, rec.calls)
		assert.Equal(t, start.Add(1500*time.Millisecond), sched.Now())
	})

	t.Run("without a tail pending timers stay pending", func(t *testing.T) {
		sched := loop.NewManual(start)
		rec := &recorder{}
		s := newSession(t, sched, rec)

		_, err := tracelog.Replay(context.Background(),
			ports.ReadFile(strings.NewReader("t: 0, id: 0, action: down, x: 50, y: 50")), s, sched,
			tracelog.ReplayOptions{})
		require.NoError(t, err)

		assert.Empty(t, rec.calls)
		assert.Equal(t, 1, sched.Pending())
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sched := loop.NewManual(start)

		_, err := tracelog.Replay(ctx, make(chan string), newSession(t, sched, &recorder{}), sched,
			tracelog.ReplayOptions{})
		require.ErrorIs(t, err, context.Canceled)
	})
}

type handlerFunc func(ev model.PointerEvent)

func (f handlerFunc) HandlePointer(ev model.PointerEvent) {
	f(ev)
}

func TestTrackLoop(t *testing.T) {
	l := loop.New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Run(ctx) }()

	seen := make(chan model.PointerEvent, 4)
	lines := make(chan string, 4)
	lines <- "t: 0, id: 3, action: down, x: 10, y: 20"
	lines <- "noise"
	lines <- "t: 1, id: nope, action: up, x: 10, y: 20"
	lines <- "t: 9, id: 3, action: up, x: 11, y: 21"
	close(lines)

	before := time.Now()

	require.NoError(t, tracelog.TrackLoop(ctx, lines, l, handlerFunc(func(ev model.PointerEvent) { seen <- ev }), false))

	first := <-seen
	second := <-seen

	assert.Equal(t, model.ActionDown, first.Action)
	assert.Equal(t, 3, first.ID)
	assert.Equal(t, model.ActionUp, second.Action)
	assert.InDelta(t, 11.0, second.X, 0.001)
	assert.False(t, first.Time.Before(before))
}
