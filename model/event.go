package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrEmptyEvent = errors.New("empty event definition")

// Event is a logical key action resolved from a Key binding. Events are shared between
// keys and keyboards and must not be mutated after parsing.
type Event struct {
	Code KeyCode
	Mask Modifier

	// Text is sent literally instead of a key code.
	Text string
	// Commit is handed to the host as-is and bypasses the composition engine.
	Commit string
	// Select names a keyboard to switch to.
	Select string

	Label      string
	ShiftLabel string
	Preview    string

	Sticky     bool
	Repeatable bool
	Functional bool
	ShiftLock  LockPolicy
}

// Modifier returns the modifier role the event's code plays, if any.
func (e *Event) Modifier() Modifier {
	if e == nil || e.Mask != ModNone {
		return ModNone
	}

	return ModifierFor(e.Code)
}

// IsModifier reports whether dispatching the event changes modifier state rather than
// producing a key.
func (e *Event) IsModifier() bool {
	return e.Modifier() != ModNone
}

// PreviewLabel is the text for the preview bubble.
func (e *Event) PreviewLabel() string {
	if e.Preview != "" {
		return e.Preview
	}

	return e.Label
}

func (e *Event) String() string {
	switch {
	case e.Text != "":
		return fmt.Sprintf("text(%q)", e.Text)
	case e.Commit != "":
		return fmt.Sprintf("commit(%q)", e.Commit)
	case e.Select != "":
		return fmt.Sprintf("select(%s)", e.Select)
	case e.Mask != ModNone:
		return fmt.Sprintf("key(%d, %s)", e.Code, e.Mask)
	default:
		return fmt.Sprintf("key(%d)", e.Code)
	}
}

// ParseEvent turns a short event definition into an Event. Accepted forms:
//
//	a, Q, 7, ","      single characters
//	shift, page_up    named keys, optionally wrapped in braces: {BackSpace}
//	Control+c         modifier prefixes joined with '+'
//	anything else     literal text
func ParseEvent(def string) (*Event, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, ErrEmptyEvent
	}

	braced := strings.HasPrefix(def, "{") && strings.HasSuffix(def, "}") && len(def) > 2
	if braced {
		def = def[1 : len(def)-1]
	}

	mask, rest := splitModifiers(def)

	if code, ok := CodeForName(rest); ok {
		return &Event{Code: code, Mask: mask, Label: code.DefaultLabel()}, nil
	}

	if utf8.RuneCountInString(rest) == 1 {
		r, _ := utf8.DecodeRuneInString(rest)
		if code, ok := CodeForRune(r); ok {
			ev := &Event{Code: code, Mask: mask, Label: rest}
			if unicode.IsUpper(r) {
				ev.Mask |= ModShift
			}

			return ev, nil
		}
	}

	if braced || mask != ModNone {
		return nil, fmt.Errorf("unknown key name %q", rest)
	}

	return &Event{Text: def, Label: def}, nil
}

// splitModifiers peels "Control+Shift+" style prefixes. A lone "+" or a trailing "+" is
// treated as a character, not a separator.
func splitModifiers(def string) (Modifier, string) {
	parts := strings.Split(def, "+")
	if len(parts) < 2 || parts[len(parts)-1] == "" {
		return ModNone, def
	}

	var mask Modifier

	for _, p := range parts[:len(parts)-1] {
		m, ok := ParseModifier(p)
		if !ok {
			return ModNone, def
		}

		mask |= m
	}

	return mask, parts[len(parts)-1]
}
