package model

import (
	"fmt"
	"strings"
)

// Modifier is a bitmask of logical modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModSym

	ModNone Modifier = 0
)

// AllModifiers lists every modifier role in bit order.
var AllModifiers = []Modifier{ModShift, ModCtrl, ModAlt, ModMeta, ModSym}

type modifierRole struct {
	mod   Modifier
	name  string
	codes []KeyCode
}

// modifierRoles is the single source of truth for code -> role and name -> role lookups.
var modifierRoles = []modifierRole{
	{ModShift, "shift", []KeyCode{KeyCodeShiftLeft, KeyCodeShiftRight}},
	{ModCtrl, "control", []KeyCode{KeyCodeCtrlLeft, KeyCodeCtrlRight}},
	{ModAlt, "alt", []KeyCode{KeyCodeAltLeft, KeyCodeAltRight}},
	{ModMeta, "meta", []KeyCode{KeyCodeMetaLeft, KeyCodeMetaRight}},
	{ModSym, "sym", []KeyCode{KeyCodeSym}},
}

// ModifierFor returns the modifier role of a key code, or ModNone.
func ModifierFor(code KeyCode) Modifier {
	for _, role := range modifierRoles {
		for _, c := range role.codes {
			if c == code {
				return role.mod
			}
		}
	}

	return ModNone
}

// ParseModifier accepts role names ("shift", "control"/"ctrl", "alt", "meta", "sym").
func ParseModifier(name string) (Modifier, bool) {
	name = strings.ToLower(name)
	if name == "ctrl" {
		name = "control"
	}

	for _, role := range modifierRoles {
		if role.name == name {
			return role.mod, true
		}
	}

	return ModNone, false
}

func (m Modifier) Has(other Modifier) bool {
	return m&other != 0
}

func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}

	parts := make([]string, 0, len(modifierRoles))

	for _, role := range modifierRoles {
		if m.Has(role.mod) {
			parts = append(parts, role.name)
		}
	}

	return strings.Join(parts, "+")
}

// LockPolicy decides how a tap or long-press on a sticky modifier locks it.
type LockPolicy int

const (
	LockNone LockPolicy = iota
	// LockClick locks on a plain tap.
	LockClick
	// LockLong makes a tap one-shot; only a long-press (or double tap) locks.
	LockLong
	// LockASCIILong behaves like LockClick outside ASCII mode and LockLong inside it.
	LockASCIILong
)

func ParseLockPolicy(s string) (LockPolicy, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return LockNone, nil
	case "click":
		return LockClick, nil
	case "long":
		return LockLong, nil
	case "ascii_long":
		return LockASCIILong, nil
	default:
		return LockNone, fmt.Errorf("unknown shift lock policy %q", s)
	}
}

func (p LockPolicy) String() string {
	switch p {
	case LockClick:
		return "click"
	case LockLong:
		return "long"
	case LockASCIILong:
		return "ascii_long"
	default:
		return "none"
	}
}

// Effective resolves LockASCIILong against the current ASCII mode.
func (p LockPolicy) Effective(asciiMode bool) LockPolicy {
	if p != LockASCIILong {
		return p
	}

	if asciiMode {
		return LockLong
	}

	return LockClick
}
