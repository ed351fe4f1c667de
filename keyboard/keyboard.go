// Package keyboard holds one built keyboard: its keys, modifier state and hit-testing
// index. A Keyboard is never resized in place; a new one is built instead.
package keyboard

import (
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/model"
)

const DefaultProximityMultiplier = 1.0

type Options struct {
	// ProximityMultiplier scales the near-miss radius; zero disables near-miss matching.
	ProximityMultiplier float64
	LabelUppercase      bool
	HookShiftNum        bool
	HookShiftSymbol     bool
}

func DefaultOptions() Options {
	return Options{ProximityMultiplier: DefaultProximityMultiplier}
}

// Keyboard owns its keys. Keys are addressed by index and carry no back-reference.
type Keyboard struct {
	name        string
	keys        []model.Key
	width       int
	height      int
	roundCorner float64
	opts        Options

	proximity *Proximity

	// modifierKeys holds key indices per modifier role, in role bit order.
	modifierKeys map[model.Modifier][]int
	held         []bool
	locked       []bool
}

// New builds a keyboard from a computed layout. The keys are copied.
func New(name string, res *layout.Result, opts Options) *Keyboard {
	kb := &Keyboard{
		name:         name,
		opts:         opts,
		modifierKeys: make(map[model.Modifier][]int),
	}

	if res != nil {
		kb.keys = append([]model.Key(nil), res.Keys...)
		kb.width = res.Width
		kb.height = res.Height
		kb.roundCorner = res.RoundCorner
	}

	kb.held = make([]bool, len(kb.keys))
	kb.locked = make([]bool, len(kb.keys))

	for i := range kb.keys {
		kb.keys[i].Index = i
		kb.keys[i].Pressed = false
		kb.keys[i].On = false

		if mod := kb.keys[i].Modifier(); mod != model.ModNone {
			kb.modifierKeys[mod] = append(kb.modifierKeys[mod], i)
		}
	}

	kb.proximity = NewProximity(kb.keys, kb.width, kb.height, opts.ProximityMultiplier)

	return kb
}

func (kb *Keyboard) Name() string {
	return kb.name
}

func (kb *Keyboard) Width() int {
	return kb.width
}

func (kb *Keyboard) Height() int {
	return kb.height
}

func (kb *Keyboard) RoundCorner() float64 {
	return kb.roundCorner
}

func (kb *Keyboard) Options() Options {
	return kb.opts
}

func (kb *Keyboard) Len() int {
	return len(kb.keys)
}

// Empty keyboards disable gesture handling.
func (kb *Keyboard) Empty() bool {
	return kb == nil || len(kb.keys) == 0
}

// Key returns the key at index i, or nil when i is out of range.
func (kb *Keyboard) Key(i int) *model.Key {
	if i < 0 || i >= len(kb.keys) {
		return nil
	}

	return &kb.keys[i]
}

func (kb *Keyboard) Keys() []model.Key {
	return kb.keys
}

// KeyAt hit-tests a point in keyboard coordinates.
func (kb *Keyboard) KeyAt(x, y float64) int {
	return kb.proximity.KeyAt(x, y)
}

func (kb *Keyboard) Proximity() *Proximity {
	return kb.proximity
}

// ModifierKeys returns the indices of keys playing the given role.
func (kb *Keyboard) ModifierKeys(mod model.Modifier) []int {
	return kb.modifierKeys[mod]
}

// LabelFor resolves the label of key i for the current modifier state and engine flags.
func (kb *Keyboard) LabelFor(i int, flags model.EngineFlags) string {
	k := kb.Key(i)
	if k == nil {
		return ""
	}

	return k.DisplayLabel(model.LabelContext{
		Flags:           flags,
		Modifiers:       kb.ModifierState(),
		UpperCase:       kb.NeedUpCase(),
		LabelUppercase:  kb.opts.LabelUppercase,
		HookShiftNum:    kb.opts.HookShiftNum,
		HookShiftSymbol: kb.opts.HookShiftSymbol,
	})
}

// SetPressed updates the visual pressed flag of key i.
func (kb *Keyboard) SetPressed(i int, pressed bool) {
	if k := kb.Key(i); k != nil {
		k.Pressed = pressed
	}
}
