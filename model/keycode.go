package model

import (
	"strings"
	"unicode"
)

// KeyCode is a logical key code. Values follow the Android KeyEvent numbering so that
// hosts on that platform can pass them through unchanged.
type KeyCode int

const (
	KeyCodeUnknown      KeyCode = 0
	KeyCodeDpadUp       KeyCode = 19
	KeyCodeDpadDown     KeyCode = 20
	KeyCodeDpadLeft     KeyCode = 21
	KeyCodeDpadRight    KeyCode = 22
	KeyCodeComma        KeyCode = 55
	KeyCodePeriod       KeyCode = 56
	KeyCodeAltLeft      KeyCode = 57
	KeyCodeAltRight     KeyCode = 58
	KeyCodeShiftLeft    KeyCode = 59
	KeyCodeShiftRight   KeyCode = 60
	KeyCodeTab          KeyCode = 61
	KeyCodeSpace        KeyCode = 62
	KeyCodeSym          KeyCode = 63
	KeyCodeEnter        KeyCode = 66
	KeyCodeDel          KeyCode = 67
	KeyCodeGrave        KeyCode = 68
	KeyCodeMinus        KeyCode = 69
	KeyCodeEquals       KeyCode = 70
	KeyCodeLeftBracket  KeyCode = 71
	KeyCodeRightBracket KeyCode = 72
	KeyCodeBackslash    KeyCode = 73
	KeyCodeSemicolon    KeyCode = 74
	KeyCodeApostrophe   KeyCode = 75
	KeyCodeSlash        KeyCode = 76
	KeyCodeAt           KeyCode = 77
	KeyCodePlus         KeyCode = 81
	KeyCodePageUp       KeyCode = 92
	KeyCodePageDown     KeyCode = 93
	KeyCodeEscape       KeyCode = 111
	KeyCodeForwardDel   KeyCode = 112
	KeyCodeCtrlLeft     KeyCode = 113
	KeyCodeCtrlRight    KeyCode = 114
	KeyCodeMetaLeft     KeyCode = 117
	KeyCodeMetaRight    KeyCode = 118
	KeyCodeMoveHome     KeyCode = 122
	KeyCodeMoveEnd      KeyCode = 123

	KeyCode0 KeyCode = 7
	KeyCode9 KeyCode = 16
	KeyCodeA KeyCode = 29
	KeyCodeZ KeyCode = 54
)

var namedKeys = map[string]KeyCode{
	"shift":     KeyCodeShiftLeft,
	"shift_l":   KeyCodeShiftLeft,
	"shift_r":   KeyCodeShiftRight,
	"control":   KeyCodeCtrlLeft,
	"ctrl":      KeyCodeCtrlLeft,
	"control_l": KeyCodeCtrlLeft,
	"control_r": KeyCodeCtrlRight,
	"alt":       KeyCodeAltLeft,
	"alt_l":     KeyCodeAltLeft,
	"alt_r":     KeyCodeAltRight,
	"meta":      KeyCodeMetaLeft,
	"meta_l":    KeyCodeMetaLeft,
	"meta_r":    KeyCodeMetaRight,
	"sym":       KeyCodeSym,
	"space":     KeyCodeSpace,
	"backspace": KeyCodeDel,
	"bspc":      KeyCodeDel,
	"del":       KeyCodeDel,
	"delete":    KeyCodeForwardDel,
	"enter":     KeyCodeEnter,
	"return":    KeyCodeEnter,
	"ret":       KeyCodeEnter,
	"tab":       KeyCodeTab,
	"escape":    KeyCodeEscape,
	"esc":       KeyCodeEscape,
	"left":      KeyCodeDpadLeft,
	"right":     KeyCodeDpadRight,
	"up":        KeyCodeDpadUp,
	"down":      KeyCodeDpadDown,
	"page_up":   KeyCodePageUp,
	"prior":     KeyCodePageUp,
	"page_down": KeyCodePageDown,
	"next":      KeyCodePageDown,
	"home":      KeyCodeMoveHome,
	"end":       KeyCodeMoveEnd,
}

var codeLabels = map[KeyCode]string{
	KeyCodeShiftLeft:  "⇧",
	KeyCodeShiftRight: "⇧",
	KeyCodeCtrlLeft:   "^",
	KeyCodeCtrlRight:  "^",
	KeyCodeAltLeft:    "⌥",
	KeyCodeAltRight:   "⌥",
	KeyCodeMetaLeft:   "⌘",
	KeyCodeMetaRight:  "⌘",
	KeyCodeSym:        "?123",
	KeyCodeEnter:      "↵",
	KeyCodeDel:        "⌫",
	KeyCodeForwardDel: "⌦",
	KeyCodeSpace:      "␣",
	KeyCodeTab:        "⇥",
	KeyCodeEscape:     "Esc",
	KeyCodeDpadLeft:   "←",
	KeyCodeDpadRight:  "→",
	KeyCodeDpadUp:     "↑",
	KeyCodeDpadDown:   "↓",
	KeyCodePageUp:     "⇞",
	KeyCodePageDown:   "⇟",
	KeyCodeMoveHome:   "⇱",
	KeyCodeMoveEnd:    "⇲",
}

var symbolCodes = map[rune]KeyCode{
	',':  KeyCodeComma,
	'.':  KeyCodePeriod,
	' ':  KeyCodeSpace,
	'\t': KeyCodeTab,
	'`':  KeyCodeGrave,
	'-':  KeyCodeMinus,
	'=':  KeyCodeEquals,
	'[':  KeyCodeLeftBracket,
	']':  KeyCodeRightBracket,
	'\\': KeyCodeBackslash,
	';':  KeyCodeSemicolon,
	'\'': KeyCodeApostrophe,
	'/':  KeyCodeSlash,
	'@':  KeyCodeAt,
	'+':  KeyCodePlus,
	'*':  17,
	'#':  18,
}

// CodeForName looks up a named key such as "shift" or "page_up". Case-insensitive.
func CodeForName(name string) (KeyCode, bool) {
	code, ok := namedKeys[strings.ToLower(name)]

	return code, ok
}

// CodeForRune maps a printable character to its key code. Upper-case letters map to the
// same code as their lower-case form; the caller decides about shift.
func CodeForRune(r rune) (KeyCode, bool) {
	switch {
	case r >= '0' && r <= '9':
		return KeyCode0 + KeyCode(r-'0'), true
	case r >= 'a' && r <= 'z':
		return KeyCodeA + KeyCode(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return KeyCodeA + KeyCode(r-'A'), true
	}

	code, ok := symbolCodes[r]

	return code, ok
}

// DefaultLabel is the glyph shown for a code when the configuration gives none.
func (c KeyCode) DefaultLabel() string {
	if l, ok := codeLabels[c]; ok {
		return l
	}

	switch {
	case c.IsDigit():
		return string(rune('0' + int(c-KeyCode0)))
	case c.IsLetter():
		return string(rune('a' + int(c-KeyCodeA)))
	}

	for r, code := range symbolCodes {
		if code == c && unicode.IsPrint(r) && r != ' ' {
			return string(r)
		}
	}

	return ""
}

func (c KeyCode) IsDigit() bool {
	return c >= KeyCode0 && c <= KeyCode9
}

func (c KeyCode) IsLetter() bool {
	return c >= KeyCodeA && c <= KeyCodeZ
}

// IsSymbol reports whether the code is a printable punctuation key.
func (c KeyCode) IsSymbol() bool {
	for _, code := range symbolCodes {
		if code == c && c != KeyCodeSpace && c != KeyCodeTab {
			return true
		}
	}

	return false
}
