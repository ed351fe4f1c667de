package keyboard

import (
	"log/slog"

	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/model"
)

var logCtx = logging.PackageCtx("keyboard")

// Release describes how a modifier key was let go.
type Release struct {
	// Inside is false when the pointer left the key before lifting.
	Inside      bool
	LongPressed bool
	DoubleTap   bool
	ASCIIMode   bool
	// Chorded is set when other keys were dispatched while this one was held.
	Chorded bool
}

// PressModifier marks modifier key i as physically held. Its bit is active until release.
func (kb *Keyboard) PressModifier(i int) {
	k := kb.Key(i)
	if k == nil || k.Modifier() == model.ModNone {
		return
	}

	kb.held[i] = true
	k.Pressed = true
}

// ReleaseModifier applies the sticky and lock rules to a released modifier key.
//
// Non-sticky keys only count while held. A sticky key that is on turns off. Otherwise the
// lock policy decides: none and click lock on tap, long makes a tap one-shot and locks on
// long-press or double tap. Keys used as part of a chord never toggle.
func (kb *Keyboard) ReleaseModifier(i int, r Release) {
	k := kb.Key(i)
	if k == nil || k.Modifier() == model.ModNone {
		return
	}

	kb.held[i] = false
	k.Pressed = false

	if !k.Sticky() || !r.Inside || r.Chorded {
		return
	}

	policy := k.Click().ShiftLock.Effective(r.ASCIIMode)

	switch {
	case r.LongPressed, r.DoubleTap && policy == model.LockLong:
		kb.setOn(i, true, true)
	case k.On:
		kb.setOn(i, false, false)
	case policy == model.LockLong:
		kb.setOn(i, true, false)
	default:
		kb.setOn(i, true, true)
	}

	slog.DebugContext(logCtx, "Modifier released",
		"key", i, "role", k.Modifier(), "on", k.On, "locked", kb.locked[i], "state", kb.ModifierState())
}

func (kb *Keyboard) setOn(i int, on, locked bool) {
	kb.keys[i].On = on
	kb.locked[i] = on && locked
}

// SetModifier switches every key of the given roles on or off. Roles without a key are
// ignored, so the state never holds a bit nothing can clear.
func (kb *Keyboard) SetModifier(mask model.Modifier, on bool) {
	for _, mod := range model.AllModifiers {
		if !mask.Has(mod) {
			continue
		}

		for _, i := range kb.modifierKeys[mod] {
			kb.setOn(i, on, on)
		}
	}
}

// ResetModifier drops held bits, keeping keys that are visually on.
func (kb *Keyboard) ResetModifier() {
	for i := range kb.held {
		if kb.held[i] {
			kb.held[i] = false
			kb.keys[i].Pressed = false
		}
	}
}

// RefreshModifier turns off one-shot modifiers after a dispatch. Locked and held keys
// keep their bits.
func (kb *Keyboard) RefreshModifier() {
	for _, indices := range kb.modifierKeys {
		for _, i := range indices {
			if kb.keys[i].On && !kb.locked[i] && !kb.held[i] {
				kb.keys[i].On = false
			}
		}
	}
}

// ModifierState is the OR of the roles of every key that is on or held.
func (kb *Keyboard) ModifierState() model.Modifier {
	var state model.Modifier

	for mod, indices := range kb.modifierKeys {
		for _, i := range indices {
			if kb.keys[i].On || kb.held[i] {
				state |= mod
			}
		}
	}

	return state
}

func (kb *Keyboard) IsOnlyShiftOn() bool {
	return kb.ModifierState() == model.ModShift
}

func (kb *Keyboard) NeedUpCase() bool {
	return kb.ModifierState().Has(model.ModShift)
}

// IsLocked reports whether key i stays on across dispatches.
func (kb *Keyboard) IsLocked(i int) bool {
	return i >= 0 && i < len(kb.locked) && kb.locked[i]
}

// IsHeld reports whether modifier key i is physically down.
func (kb *Keyboard) IsHeld(i int) bool {
	return i >= 0 && i < len(kb.held) && kb.held[i]
}
