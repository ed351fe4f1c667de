package gesture

import (
	"log/slog"

	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/model"
)

// startTimers arms the long-press timer for keys that react to a long-press and the
// repeat timer for repeatable keys. Whichever fires first cancels the other; the
// long-press is armed first so it wins a tie.
func (r *Resolver) startTimers(p *pointer) {
	k := r.kb.Key(p.key)
	if k == nil {
		return
	}

	r.startLongPress(p)

	if click := k.Click(); click != nil && click.Repeatable {
		gen := r.gen
		p.repeatTimer = r.sched.After(r.cfg.RepeatStartDelay, func() { r.repeat(p, gen) })
	}
}

func (r *Resolver) startLongPress(p *pointer) {
	k := r.kb.Key(p.key)
	if k == nil || !r.wantsLongPress(k) {
		return
	}

	gen := r.gen
	p.longPressTimer = r.sched.After(r.cfg.LongPressTimeout, func() { r.longPress(p, gen) })
}

func (r *Resolver) wantsLongPress(k *model.Key) bool {
	return k.HasBinding(model.InteractionLongClick) ||
		(r.cfg.PopupsEnabled && r.popup != nil && k.HasPopup()) ||
		(k.Sticky() && k.Modifier() != model.ModNone)
}

func (r *Resolver) stale(p *pointer, gen int) bool {
	return gen != r.gen || r.pointers[p.id] != p
}

// longPress opens the popup, or fires the long-click binding. For sticky modifiers it
// only records the long-press; the lock is applied on release.
func (r *Resolver) longPress(p *pointer, gen int) {
	if r.stale(p, gen) {
		return
	}

	p.longPressTimer = nil
	p.longPressed = true

	k := r.kb.Key(p.key)
	if k == nil {
		return
	}

	if r.cfg.PopupsEnabled && r.popup != nil && k.HasPopup() {
		if r.popup.Open(r.kb, p.key, p.lastX, p.lastY) {
			p.inPopup = true
			p.consumed = true
			p.cancelRepeat()
			r.releaseHeld(p, keyboard.NotAKey)

			return
		}

		slog.DebugContext(logCtx, "Popup unavailable, falling back to long click", "key", p.key)
	}

	if !k.HasBinding(model.InteractionLongClick) {
		return
	}

	p.consumed = true
	p.cancelRepeat()
	r.releaseHeld(p, keyboard.NotAKey)

	if r.primary != nil && r.primary != p {
		r.primary.chorded = true
	}

	r.emit(Dispatch{
		Pointer:     p.id,
		Keyboard:    r.kb.Name(),
		Key:         p.key,
		Interaction: model.InteractionLongClick,
		Event:       k.Resolve(model.InteractionLongClick, r.flags),
		Mask:        r.kb.ModifierState(),
		seq:         p.seq,
	})

	if !r.stale(p, gen) {
		r.preview(keyboard.NotAKey)
	}
}

// repeat dispatches the held key and re-arms itself.
func (r *Resolver) repeat(p *pointer, gen int) {
	if r.stale(p, gen) {
		return
	}

	p.repeatTimer = nil
	p.cancelLongPress()

	k := r.kb.Key(p.key)
	if k == nil {
		return
	}

	ev := k.Resolve(model.InteractionClick, r.flags)
	if ev == nil {
		return
	}

	p.repeated = true

	r.emit(Dispatch{
		Pointer:     p.id,
		Keyboard:    r.kb.Name(),
		Key:         p.key,
		Interaction: model.InteractionClick,
		Event:       ev,
		Mask:        r.kb.ModifierState(),
		seq:         p.seq,
	})

	if r.stale(p, gen) {
		return
	}

	p.repeatTimer = r.sched.After(r.cfg.RepeatInterval, func() { r.repeat(p, gen) })
}
