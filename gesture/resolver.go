// Package gesture turns raw pointer events into key dispatches: taps, long-presses,
// swipes, repeats and multi-finger chords.
package gesture

import (
	"log/slog"
	"math"
	"time"

	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
)

var logCtx = logging.PackageCtx("gesture")

// Resolver owns the gesture state for the active keyboard. It must only be used from the
// input loop.
type Resolver struct {
	kb       *keyboard.Keyboard
	listener Listener
	sched    loop.Scheduler
	cfg      Config
	flags    model.EngineFlags
	popup    PopupOpener
	observer Observer

	pointers map[int]*pointer
	primary  *pointer
	pending  []Dispatch
	seq      int
	// gen changes whenever the keyboard is replaced or the gesture cancelled; callbacks
	// from an older generation are ignored.
	gen int

	lastTapKey  int
	lastTapTime time.Time
	tapCount    int
}

func New(kb *keyboard.Keyboard, listener Listener, sched loop.Scheduler, cfg Config) *Resolver {
	return &Resolver{
		kb:         kb,
		listener:   listener,
		sched:      sched,
		cfg:        cfg,
		pointers:   make(map[int]*pointer),
		lastTapKey: keyboard.NotAKey,
	}
}

func (r *Resolver) SetPopup(p PopupOpener) {
	r.popup = p
}

func (r *Resolver) Observe(o Observer) {
	r.observer = o
}

func (r *Resolver) SetFlags(flags model.EngineFlags) {
	r.flags = flags
}

func (r *Resolver) Flags() model.EngineFlags {
	return r.flags
}

func (r *Resolver) Config() Config {
	return r.cfg
}

func (r *Resolver) Keyboard() *keyboard.Keyboard {
	return r.kb
}

// TapCount is the number of consecutive taps on the last tapped key.
func (r *Resolver) TapCount() int {
	return r.tapCount
}

// ActivePointers is the number of pointers currently down.
func (r *Resolver) ActivePointers() int {
	return len(r.pointers)
}

// SetKeyboard installs a new keyboard. Pending timers, gesture state and an open popup
// are dropped so nothing is dispatched against the old geometry.
func (r *Resolver) SetKeyboard(kb *keyboard.Keyboard) {
	r.Cancel()

	r.kb = kb
	r.lastTapKey = keyboard.NotAKey
	r.tapCount = 0

	if kb != nil {
		kb.ResetModifier()
	}
}

// Cancel aborts every pointer without dispatching anything. Keys reported through
// OnPress still get their OnRelease.
func (r *Resolver) Cancel() {
	r.gen++

	for _, p := range r.pointers {
		p.cancelTimers()

		if r.kb != nil {
			r.kb.SetPressed(p.key, false)
			r.releaseHeld(p, keyboard.NotAKey)
		}

		if p.pressed {
			p.pressed = false
			r.listener.OnRelease(p.pressCode)
		}
	}

	clear(r.pointers)
	r.primary = nil
	r.pending = nil

	if r.popup != nil && r.popup.IsOpen() {
		r.popup.Dismiss()
	}

	r.preview(keyboard.NotAKey)
}

// HandleEvent feeds one raw pointer event.
func (r *Resolver) HandleEvent(ev model.PointerEvent) {
	if r.kb.Empty() {
		return
	}

	switch ev.Action {
	case model.ActionDown:
		r.onDown(ev)
	case model.ActionMove:
		r.onMove(ev)
	case model.ActionUp:
		r.onUp(ev)
	case model.ActionCancel:
		slog.DebugContext(logCtx, "Gesture cancelled", "pointers", len(r.pointers))
		r.Cancel()
	}
}

func (r *Resolver) onDown(ev model.PointerEvent) {
	if old, ok := r.pointers[ev.ID]; ok {
		// A repeated down for a live pointer means the host lost its up; drop it.
		old.cancelTimers()
		r.kb.SetPressed(old.key, false)
		r.releaseHeld(old, keyboard.NotAKey)
		delete(r.pointers, ev.ID)

		if r.primary == old {
			r.primary = nil
		}
	}

	if r.popup != nil && r.popup.IsOpen() {
		r.popup.Dismiss()

		for _, p := range r.pointers {
			p.inPopup = false
		}
	}

	r.seq++
	p := newPointer(ev, r.kb.KeyAt(ev.X, ev.Y), r.seq, r.cfg.VelocityHorizon)
	r.pointers[ev.ID] = p

	if r.primary == nil {
		r.primary = p
	}

	r.enterKey(p)

	if k := r.kb.Key(p.key); k != nil && k.Click() != nil {
		p.pressCode = k.Click().Code
		p.pressed = true
		r.listener.OnPress(p.pressCode)
	}

	r.startTimers(p)
}

func (r *Resolver) onMove(ev model.PointerEvent) {
	p, ok := r.pointers[ev.ID]
	if !ok {
		return
	}

	if p.inPopup {
		r.popup.Forward(ev)

		return
	}

	p.track(ev)

	key := r.kb.KeyAt(ev.X, ev.Y)
	old := p.key
	p.key = key

	if key != old {
		p.cancelTimers()
		r.kb.SetPressed(old, false)
		r.releaseHeld(p, keyboard.NotAKey)
		r.enterKey(p)

		if !p.longPressed && !p.repeated {
			r.startLongPress(p)
		}

		return
	}

	if r.cfg.SwipeEnabled && !p.repeated {
		dx, dy := p.displacement()
		if math.Abs(dx) > r.cfg.SwipeTravel || math.Abs(dy) > r.cfg.SwipeTravel {
			p.cancelTimers()
		}
	}
}

func (r *Resolver) onUp(ev model.PointerEvent) {
	p, ok := r.pointers[ev.ID]
	if !ok {
		return
	}

	p.cancelTimers()
	delete(r.pointers, ev.ID)

	if p.inPopup {
		r.popup.Forward(ev)
		r.endPointer(p)
		r.finish(p, action{})

		return
	}

	p.track(ev)
	p.key = r.kb.KeyAt(ev.X, ev.Y)

	a := r.resolve(p, ev.Time)

	gen := r.gen
	r.finish(p, a)

	switch {
	case gen == r.gen:
		r.endPointer(p)
	case p.pressed:
		r.listener.OnRelease(p.pressCode)
	}
}

// enterKey marks the key under the pointer pressed and holds it if it is a modifier.
func (r *Resolver) enterKey(p *pointer) {
	k := r.kb.Key(p.key)
	if k == nil {
		r.preview(keyboard.NotAKey)

		return
	}

	r.kb.SetPressed(p.key, true)

	if k.Modifier() != model.ModNone {
		r.kb.PressModifier(p.key)
		p.heldModifier = p.key
	}

	r.preview(p.key)
}

// releaseHeld lets go of the modifier the pointer is holding unless it is keep, without
// toggling it.
func (r *Resolver) releaseHeld(p *pointer, keep int) {
	if p.heldModifier == keyboard.NotAKey || p.heldModifier == keep {
		return
	}

	r.kb.ReleaseModifier(p.heldModifier, keyboard.Release{Inside: false})
	p.heldModifier = keyboard.NotAKey
}

func (r *Resolver) endPointer(p *pointer) {
	r.kb.SetPressed(p.key, false)
	r.releaseHeld(p, keyboard.NotAKey)

	if p.pressed {
		r.listener.OnRelease(p.pressCode)
	}

	if len(r.pointers) == 0 {
		r.preview(keyboard.NotAKey)
	}
}

func (r *Resolver) preview(key int) {
	pl, ok := r.listener.(PreviewListener)
	if !ok || r.kb == nil {
		return
	}

	k := r.kb.Key(key)
	if k == nil {
		pl.OnPreview(keyboard.NotAKey, "")

		return
	}

	label := r.kb.LabelFor(key, r.flags)
	if ev := k.Resolve(model.InteractionClick, r.flags); ev != nil && ev.Preview != "" {
		label = ev.Preview
	}

	pl.OnPreview(key, label)
}
