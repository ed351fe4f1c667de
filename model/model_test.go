package model_test

import (
	"testing"

	"github.com/dasdy/softkeys/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	testCases := []struct {
		name     string
		def      string
		expected model.Event
	}{
		{"lower letter", "q", model.Event{Code: model.KeyCodeA + 16, Label: "q"}},
		{"upper letter adds shift", "Q", model.Event{Code: model.KeyCodeA + 16, Mask: model.ModShift, Label: "Q"}},
		{"digit", "7", model.Event{Code: model.KeyCode0 + 7, Label: "7"}},
		{"named key", "shift", model.Event{Code: model.KeyCodeShiftLeft, Label: "⇧"}},
		{"braced name", "{BackSpace}", model.Event{Code: model.KeyCodeDel, Label: "⌫"}},
		{"modifier prefix", "Control+c", model.Event{Code: model.KeyCodeA + 2, Mask: model.ModCtrl, Label: "c"}},
		{"plus is a character", "+", model.Event{Code: model.KeyCodePlus, Label: "+"}},
		{"text", "hello", model.Event{Text: "hello", Label: "hello"}},
	}

	for _, item := range testCases {
		t.Run("parses "+item.name, func(t *testing.T) {
			ev, err := model.ParseEvent(item.def)

			require.NoError(t, err)
			assert.Equal(t, item.expected, *ev)
		})
	}

	errorCases := []struct {
		name string
		def  string
	}{
		{"empty", "  "},
		{"unknown braced name", "{Hyper}"},
		{"unknown name with modifier", "Control+nothing"},
	}

	for _, item := range errorCases {
		t.Run("does not parse "+item.name, func(t *testing.T) {
			ev, err := model.ParseEvent(item.def)

			require.Error(t, err)
			assert.Nil(t, ev)
		})
	}
}

func TestModifierFor(t *testing.T) {
	assert.Equal(t, model.ModShift, model.ModifierFor(model.KeyCodeShiftRight))
	assert.Equal(t, model.ModCtrl, model.ModifierFor(model.KeyCodeCtrlLeft))
	assert.Equal(t, model.ModSym, model.ModifierFor(model.KeyCodeSym))
	assert.Equal(t, model.ModNone, model.ModifierFor(model.KeyCodeSpace))

	assert.Equal(t, "shift+alt", (model.ModShift | model.ModAlt).String())
}

func TestLockPolicy(t *testing.T) {
	p, err := model.ParseLockPolicy("ascii_long")
	require.NoError(t, err)

	assert.Equal(t, model.LockLong, p.Effective(true))
	assert.Equal(t, model.LockClick, p.Effective(false))

	_, err = model.ParseLockPolicy("sometimes")
	assert.Error(t, err)
}

func keyWithAllOverrides() *model.Key {
	k := &model.Key{}
	k.Events[model.InteractionClick] = &model.Event{Label: "click"}
	k.Events[model.InteractionSwipeUp] = &model.Event{Label: "up"}
	k.Events[model.InteractionASCII] = &model.Event{Label: "ascii"}
	k.Events[model.InteractionPaging] = &model.Event{Label: "paging"}
	k.Events[model.InteractionMenu] = &model.Event{Label: "menu"}
	k.Events[model.InteractionComposing] = &model.Event{Label: "composing"}

	return k
}

func TestResolvePrecedence(t *testing.T) {
	testCases := []struct {
		name        string
		interaction model.InteractionType
		flags       model.EngineFlags
		expected    string
	}{
		{"plain click", model.InteractionClick, model.EngineFlags{}, "click"},
		{"own binding", model.InteractionSwipeUp, model.EngineFlags{}, "up"},
		{"missing binding falls back to click", model.InteractionSwipeDown, model.EngineFlags{}, "click"},
		{"composing override", model.InteractionClick, model.EngineFlags{Composing: true}, "composing"},
		{"menu beats composing", model.InteractionClick, model.EngineFlags{Composing: true, HasMenu: true}, "menu"},
		{"paging beats menu", model.InteractionClick, model.EngineFlags{HasMenu: true, HasLeftPage: true}, "paging"},
		{"ascii beats everything", model.InteractionSwipeUp, model.EngineFlags{
			ASCIIMode: true, HasLeftPage: true, HasMenu: true, Composing: true,
		}, "ascii"},
	}

	for _, item := range testCases {
		t.Run(item.name, func(t *testing.T) {
			ev := keyWithAllOverrides().Resolve(item.interaction, item.flags)

			require.NotNil(t, ev)
			assert.Equal(t, item.expected, ev.Label)
		})
	}

	t.Run("spacer resolves to nil", func(t *testing.T) {
		k := &model.Key{}

		assert.Nil(t, k.Resolve(model.InteractionClick, model.EngineFlags{}))
	})
}

func TestDisplayLabel(t *testing.T) {
	letter := &model.Key{}
	letter.Events[model.InteractionClick] = &model.Event{Code: model.KeyCodeA, Label: "a"}

	digit := &model.Key{}
	digit.Events[model.InteractionClick] = &model.Event{Code: model.KeyCode0 + 1, Label: "1", ShiftLabel: "!"}

	t.Run("lower case by default", func(t *testing.T) {
		assert.Equal(t, "a", letter.DisplayLabel(model.LabelContext{}))
	})

	t.Run("upper case while shifted", func(t *testing.T) {
		assert.Equal(t, "A", letter.DisplayLabel(model.LabelContext{UpperCase: true}))
	})

	t.Run("label uppercase ignored in ascii mode", func(t *testing.T) {
		ctx := model.LabelContext{LabelUppercase: true, Flags: model.EngineFlags{ASCIIMode: true}}

		assert.Equal(t, "a", letter.DisplayLabel(ctx))
	})

	t.Run("shift label when only shift is on", func(t *testing.T) {
		assert.Equal(t, "!", digit.DisplayLabel(model.LabelContext{Modifiers: model.ModShift, UpperCase: true}))
	})

	t.Run("no shift label with other modifiers", func(t *testing.T) {
		ctx := model.LabelContext{Modifiers: model.ModShift | model.ModCtrl, UpperCase: true}

		assert.Equal(t, "1", digit.DisplayLabel(ctx))
	})

	t.Run("no shift label when shift-number is hooked", func(t *testing.T) {
		ctx := model.LabelContext{Modifiers: model.ModShift, HookShiftNum: true}

		assert.Equal(t, "1", digit.DisplayLabel(ctx))
	})

	t.Run("key label overrides click label", func(t *testing.T) {
		k := &model.Key{Label: "spc"}
		k.Events[model.InteractionClick] = &model.Event{Code: model.KeyCodeSpace, Label: "␣"}

		assert.Equal(t, "spc", k.DisplayLabel(model.LabelContext{}))
	})
}

func TestRect(t *testing.T) {
	r := model.Rect{X: 10, Y: 20, W: 10, H: 10}

	assert.True(t, r.Contains(10, 20))
	assert.False(t, r.Contains(20, 25), "right edge is exclusive")
	assert.InDelta(t, 50.0, r.SquaredDistanceFrom(20, 30), 1e-9)
}
