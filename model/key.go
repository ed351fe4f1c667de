package model

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InteractionType selects which binding of a key fires.
type InteractionType int

const (
	InteractionClick InteractionType = iota
	InteractionLongClick
	InteractionSwipeUp
	InteractionSwipeDown
	InteractionSwipeLeft
	InteractionSwipeRight
	InteractionCombo
	InteractionASCII
	InteractionPaging
	InteractionMenu
	InteractionComposing

	InteractionCount
)

var interactionNames = [InteractionCount]string{
	"click",
	"long_click",
	"swipe_up",
	"swipe_down",
	"swipe_left",
	"swipe_right",
	"combo",
	"ascii",
	"paging",
	"has_menu",
	"composing",
}

func (t InteractionType) String() string {
	if t < 0 || t >= InteractionCount {
		return fmt.Sprintf("interaction(%d)", int(t))
	}

	return interactionNames[t]
}

// ParseInteraction is the inverse of InteractionType.String.
func ParseInteraction(name string) (InteractionType, bool) {
	for i, n := range interactionNames {
		if n == name {
			return InteractionType(i), true
		}
	}

	return 0, false
}

// EngineFlags are the live composition-engine flags consulted on every dispatch.
type EngineFlags struct {
	ASCIIMode    bool
	HasLeftPage  bool
	HasRightPage bool
	HasMenu      bool
	Composing    bool
}

// Key is one key of a keyboard. Keys live in the owning keyboard's slice and are
// addressed by Index; they hold no reference back to it.
type Key struct {
	Rect

	Index  int
	Row    int
	Column int
	Edges  EdgeFlags

	Events [InteractionCount]*Event

	// Label overrides the click event's label when set.
	Label string
	// Popup names a nested layout shown on long-press.
	Popup string
	// PopupChars lists characters for an ad-hoc popup.
	PopupChars string

	TextOffset   Offset
	SymbolOffset Offset
	HintOffset   Offset

	Pressed bool
	On      bool
}

func (k *Key) Click() *Event {
	return k.Events[InteractionClick]
}

func (k *Key) HasBinding(t InteractionType) bool {
	return t >= 0 && t < InteractionCount && k.Events[t] != nil
}

// HasPopup reports whether a long-press should open a mini keyboard.
func (k *Key) HasPopup() bool {
	return k.Popup != "" || k.PopupChars != ""
}

// Modifier is the modifier role of the key's click binding.
func (k *Key) Modifier() Modifier {
	return k.Click().Modifier()
}

func (k *Key) Sticky() bool {
	c := k.Click()

	return c != nil && (c.Sticky || c.ShiftLock != LockNone)
}

// Resolve picks the event to fire for an interaction. Precedence: ascii override, paging
// override, menu override, composing override, the interaction's own binding, click.
func (k *Key) Resolve(t InteractionType, flags EngineFlags) *Event {
	switch {
	case flags.ASCIIMode && k.Events[InteractionASCII] != nil:
		return k.Events[InteractionASCII]
	case flags.HasLeftPage && k.Events[InteractionPaging] != nil:
		return k.Events[InteractionPaging]
	case flags.HasMenu && k.Events[InteractionMenu] != nil:
		return k.Events[InteractionMenu]
	case flags.Composing && k.Events[InteractionComposing] != nil:
		return k.Events[InteractionComposing]
	}

	if k.HasBinding(t) {
		return k.Events[t]
	}

	return k.Click()
}

// LabelContext carries the keyboard state needed to render a label.
type LabelContext struct {
	Flags     EngineFlags
	Modifiers Modifier
	// UpperCase is set while shift is active.
	UpperCase bool
	// LabelUppercase forces single-letter labels upper-case outside ASCII mode.
	LabelUppercase  bool
	HookShiftNum    bool
	HookShiftSymbol bool
}

var upper = cases.Upper(language.Und)

// DisplayLabel resolves the label shown on the key for the current state.
func (k *Key) DisplayLabel(ctx LabelContext) string {
	ev := k.Resolve(InteractionClick, ctx.Flags)
	if ev == nil {
		return k.Label
	}

	label := ev.Label
	if ev == k.Click() && k.Label != "" {
		label = k.Label
	}

	if ctx.Modifiers == ModShift && ev.ShiftLabel != "" && !shiftHooked(ev, ctx) {
		return ev.ShiftLabel
	}

	return adjustCase(label, ctx)
}

// shiftHooked reports whether shift on this key is passed through unchanged, so the
// shift label must not be shown.
func shiftHooked(ev *Event, ctx LabelContext) bool {
	return (ev.Code.IsDigit() && ctx.HookShiftNum) || (ev.Code.IsSymbol() && ctx.HookShiftSymbol)
}

func adjustCase(label string, ctx LabelContext) string {
	if utf8.RuneCountInString(label) != 1 {
		return label
	}

	if ctx.UpperCase || (ctx.LabelUppercase && !ctx.Flags.ASCIIMode) {
		return upper.String(label)
	}

	return label
}
