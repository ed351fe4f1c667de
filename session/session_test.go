package session_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	calls []string
}

func (r *recorder) OnPress(model.KeyCode)   {}
func (r *recorder) OnRelease(model.KeyCode) {}

func (r *recorder) OnKey(code model.KeyCode, mask model.Modifier) {
	s := "key:" + code.DefaultLabel()
	if mask != model.ModNone {
		s += "+" + mask.String()
	}

	r.calls = append(r.calls, s)
}

func (r *recorder) OnEvent(ev *model.Event) {
	r.calls = append(r.calls, "event:"+ev.Label)
}

func (r *recorder) OnText(text string) {
	r.calls = append(r.calls, "text:"+text)
}

type fixture struct {
	s     *session.Session
	sched *loop.Manual
	rec   *recorder
}

func options(sched loop.Scheduler, rec *recorder) session.Options {
	return session.Options{
		Width:     1000,
		Gesture:   gesture.DefaultConfig(),
		Keyboard:  keyboard.DefaultOptions(),
		Scheduler: sched,
		Listener:  rec,
	}
}

func newFixture(t *testing.T, doc *layout.Document, mutate ...func(*session.Options)) *fixture {
	t.Helper()

	f := &fixture{sched: loop.NewManual(start), rec: &recorder{}}
	opts := options(f.sched, f.rec)

	for _, m := range mutate {
		m(&opts)
	}

	s, err := session.New(doc, opts)
	require.NoError(t, err)

	f.s = s

	return f
}

func loadQwerty(t *testing.T) *layout.Document {
	t.Helper()

	doc, err := layout.LoadFile(filepath.Join("data", "qwerty.yaml"))
	require.NoError(t, err)

	return doc
}

func parse(t *testing.T, src string) *layout.Document {
	t.Helper()

	doc, err := layout.Parse(strings.NewReader(src))
	require.NoError(t, err)

	return doc
}

func (f *fixture) send(action model.PointerAction, x, y float64, ms int) {
	at := start.Add(time.Duration(ms) * time.Millisecond)
	f.sched.AdvanceTo(at)
	f.s.HandlePointer(model.PointerEvent{Action: action, X: x, Y: y, Time: at})
}

// tapKey taps the centre of the first key matching pred.
func (f *fixture) tapKey(t *testing.T, ms int, pred func(*model.Event) bool) {
	t.Helper()

	for _, k := range f.s.Keyboard().Keys() {
		if c := k.Click(); c != nil && pred(c) {
			x, y := k.Center()
			f.send(model.ActionDown, x, y, ms)
			f.send(model.ActionUp, x, y, ms+30)

			return
		}
	}

	t.Fatalf("no matching key on %s", f.s.Current())
}

func selects(name string) func(*model.Event) bool {
	return func(ev *model.Event) bool { return ev.Select == name }
}

func TestNew(t *testing.T) {
	doc := loadQwerty(t)

	t.Run("starts on the document default", func(t *testing.T) {
		f := newFixture(t, doc)

		assert.Equal(t, "qwerty", f.s.Current())
		assert.Equal(t, 33, f.s.Keyboard().Len())
		assert.Equal(t, 1000, f.s.Keyboard().Width())
		assert.Equal(t, 240, f.s.Keyboard().Height())
	})

	t.Run("explicit initial keyboard", func(t *testing.T) {
		f := newFixture(t, doc, func(o *session.Options) { o.Initial = "symbols" })

		assert.Equal(t, "symbols", f.s.Current())
	})

	t.Run("unknown initial keyboard", func(t *testing.T) {
		opts := options(loop.NewManual(start), &recorder{})
		opts.Initial = "dvorak"

		_, err := session.New(doc, opts)
		require.ErrorIs(t, err, session.ErrUnknownKeyboard)
	})

	t.Run("no keyboards", func(t *testing.T) {
		_, err := session.New(nil, options(loop.NewManual(start), &recorder{}))
		require.ErrorIs(t, err, session.ErrNoKeyboards)
	})
}

func TestSelectEventsSwitchKeyboards(t *testing.T) {
	f := newFixture(t, loadQwerty(t))

	f.tapKey(t, 0, selects("symbols"))

	assert.Equal(t, "symbols", f.s.Current())

	f.tapKey(t, 100, func(ev *model.Event) bool { return ev.Label == "1" })
	f.tapKey(t, 200, selects("qwerty"))

	assert.Equal(t, "qwerty", f.s.Current())
	assert.Equal(t, []string{"event:?123", "key:1", "event:ABC"}, f.rec.calls)
}

func TestSpecialSelectTargets(t *testing.T) {
	doc := parse(t, `
default: letters
keyboards:
  letters:
    rows:
      - keys:
          - {click: {select: digits}}
          - {click: a}
  digits:
    rows:
      - keys:
          - {click: {select: .last}}
          - {click: {select: punct}}
  punct:
    rows:
      - keys:
          - {click: {select: .default}}
`)
	f := newFixture(t, doc)

	f.tapKey(t, 0, selects("digits"))
	f.tapKey(t, 100, selects(".last"))

	assert.Equal(t, "letters", f.s.Current())

	f.tapKey(t, 200, selects("digits"))
	f.tapKey(t, 300, selects("punct"))
	f.tapKey(t, 400, selects(".default"))

	assert.Equal(t, "letters", f.s.Current())
}

func TestSwitch(t *testing.T) {
	t.Run("unknown keyboard keeps the current one", func(t *testing.T) {
		f := newFixture(t, loadQwerty(t))

		require.ErrorIs(t, f.s.Switch("dvorak"), session.ErrUnknownKeyboard)
		assert.Equal(t, "qwerty", f.s.Current())
	})

	t.Run("drops pending timers and modifiers", func(t *testing.T) {
		f := newFixture(t, loadQwerty(t))
		kb := f.s.Keyboard()

		for _, k := range kb.Keys() {
			if k.Click().Code == model.KeyCodeDel {
				x, y := k.Center()
				f.send(model.ActionDown, x, y, 0)
			}
		}

		require.Equal(t, 1, f.sched.Pending())

		require.NoError(t, f.s.Switch("symbols"))

		assert.Equal(t, 0, f.sched.Pending())
		assert.Equal(t, model.ModNone, f.s.Keyboard().ModifierState())

		f.sched.Advance(time.Second)

		assert.Empty(t, f.rec.calls)
	})

	t.Run("fresh instance each time", func(t *testing.T) {
		f := newFixture(t, loadQwerty(t))
		first := f.s.Keyboard()

		require.NoError(t, f.s.Switch("qwerty"))

		assert.NotSame(t, first, f.s.Keyboard())
	})
}

func TestResize(t *testing.T) {
	f := newFixture(t, loadQwerty(t))

	require.NoError(t, f.s.Resize(500, 200, false))

	assert.Equal(t, 500, f.s.Keyboard().Width())
	assert.Equal(t, 200, f.s.Keyboard().Height())

	require.NoError(t, f.s.Resize(1600, 0, true))

	assert.Equal(t, 1600, f.s.Keyboard().Width())
	assert.Equal(t, 180, f.s.Keyboard().Height())
	assert.Equal(t, "qwerty", f.s.Current())
}

func TestReload(t *testing.T) {
	f := newFixture(t, loadQwerty(t))
	require.NoError(t, f.s.Switch("symbols"))

	require.NoError(t, f.s.Reload(loadQwerty(t)))
	assert.Equal(t, "symbols", f.s.Current())

	require.NoError(t, f.s.Reload(parse(t, `
keyboards:
  only:
    rows:
      - keys:
          - {click: a}
`)))

	assert.Equal(t, "only", f.s.Current())
	assert.Equal(t, 1, f.s.Keyboard().Len())

	require.ErrorIs(t, f.s.Reload(&layout.Document{}), session.ErrNoKeyboards)
}

func TestFlags(t *testing.T) {
	doc := parse(t, `
keyboards:
  main:
    rows:
      - keys:
          - {click: a, ascii_override: {commit: A}}
`)
	f := newFixture(t, doc)
	f.s.SetFlags(model.EngineFlags{ASCIIMode: true})

	f.tapKey(t, 0, func(*model.Event) bool { return true })

	assert.Equal(t, []string{"event:A"}, f.rec.calls)
}

func TestPopupFromSession(t *testing.T) {
	f := newFixture(t, loadQwerty(t))

	for _, k := range f.s.Keyboard().Keys() {
		if k.Popup == "accents_a" {
			x, y := k.Center()
			f.send(model.ActionDown, x, y, 0)
			f.sched.Advance(400 * time.Millisecond)

			require.True(t, f.s.Popup().IsOpen())
			assert.Equal(t, 5, f.s.Popup().Keyboard().Len())

			f.send(model.ActionUp, x, y, 450)
		}
	}

	require.Len(t, f.rec.calls, 1)
	assert.True(t, strings.HasPrefix(f.rec.calls[0], "text:"))
	assert.False(t, f.s.Popup().IsOpen())
}
