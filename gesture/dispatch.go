package gesture

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/model"
)

// action is the outcome of a released pointer: an optional dispatch and, for modifier
// keys, the release to apply to the modifier state.
type action struct {
	d        Dispatch
	ok       bool
	modifier bool
	release  keyboard.Release
}

// resolve decides what a released pointer produces. Swipes win over clicks; clicks are
// debounced.
func (r *Resolver) resolve(p *pointer, at time.Time) action {
	if p.consumed || p.repeated {
		return action{}
	}

	key, interaction := p.debouncedKey(at, r.cfg.DebounceTime), model.InteractionClick
	if swipe, ok := r.detectSwipe(p); ok {
		key, interaction = p.downKey, swipe
	}

	k := r.kb.Key(key)
	if k == nil {
		return action{}
	}

	ev := k.Resolve(interaction, r.flags)
	if ev == nil {
		return action{}
	}

	a := action{
		ok: true,
		d: Dispatch{
			Pointer:     p.id,
			Keyboard:    r.kb.Name(),
			Key:         key,
			Interaction: interaction,
			Event:       ev,
			Mask:        r.kb.ModifierState(),
			seq:         p.seq,
		},
	}

	if interaction != model.InteractionClick {
		return a
	}

	r.countTap(key, at)

	if mod := k.Modifier(); mod != model.ModNone && ev.Modifier() == mod {
		r.releaseHeld(p, key)
		p.heldModifier = keyboard.NotAKey

		a.modifier = true
		a.release = keyboard.Release{
			Inside:      true,
			LongPressed: p.longPressed,
			DoubleTap:   r.tapCount == 2,
			ASCIIMode:   r.flags.ASCIIMode,
			Chorded:     p.chorded,
		}
	}

	return a
}

func (r *Resolver) countTap(key int, at time.Time) {
	if key == r.lastTapKey && at.Sub(r.lastTapTime) <= r.cfg.MultiTapInterval {
		r.tapCount++
	} else {
		r.tapCount = 1
	}

	r.lastTapKey = key
	r.lastTapTime = at
}

// finish routes an action. While a primary pointer is down, releases of other pointers
// are buffered; the primary's release flushes them as one batch.
func (r *Resolver) finish(p *pointer, a action) {
	switch {
	case r.primary != nil && r.primary != p:
		if !a.ok {
			return
		}

		if a.modifier {
			r.kb.ReleaseModifier(a.d.Key, a.release)
		}

		r.pending = append(r.pending, a.d)

		if !a.d.Event.IsModifier() {
			r.primary.chorded = true
		}
	case r.primary == p:
		r.primary = nil
		r.flush(a)
	default:
		r.apply(a)
	}
}

// flush dispatches the chord in pointer-down order. A modifier primary is released last
// so that it applies to the whole batch.
func (r *Resolver) flush(a action) {
	batch := r.pending
	r.pending = nil

	if len(batch) == 0 {
		r.apply(a)

		return
	}

	slices.SortStableFunc(batch, func(x, y Dispatch) int { return cmp.Compare(x.seq, y.seq) })

	if a.ok && !a.modifier {
		batch = append([]Dispatch{a.d}, batch...)
	}

	slog.DebugContext(logCtx, "Dispatching chord", "size", len(batch))

	gen := r.gen

	for _, d := range batch {
		r.emit(d)

		if gen != r.gen {
			return
		}
	}

	if a.modifier {
		a.release.Chorded = true
		r.apply(a)
		batch = append(batch, a.d)
	}

	if r.observer != nil && len(batch) > 1 {
		r.observer.OnBatch(batch)
	}
}

func (r *Resolver) apply(a action) {
	if a.modifier {
		r.kb.ReleaseModifier(a.d.Key, a.release)
	}

	if a.ok {
		r.emit(a.d)
	}
}

// emit hands one dispatch to the listener. Non-modifier dispatches consume one-shot
// modifiers.
func (r *Resolver) emit(d Dispatch) {
	ev := d.Event

	slog.DebugContext(logCtx, "Dispatch",
		"key", d.Key, "interaction", d.Interaction, "event", ev, "mask", d.Mask)

	switch {
	case ev.IsModifier(), ev.Functional, ev.Select != "", ev.Commit != "":
		r.listener.OnEvent(ev)
	case ev.Text != "":
		r.listener.OnText(ev.Text)
	default:
		r.listener.OnKey(ev.Code, ev.Mask|d.Mask)
	}

	if r.observer != nil {
		r.observer.OnDispatch(d)
	}

	if !ev.IsModifier() && r.kb != nil {
		r.kb.RefreshModifier()
	}
}
