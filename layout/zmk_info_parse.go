package layout

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"unicode/utf8"
)

type ZMKKeyDescriptor struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	R     float64 `json:"r"`
	Rx    float64 `json:"rx"`
	Ry    float64 `json:"ry"`
	Label string  `json:"label"`
}

type ZMKLayoutCollection struct {
	Layout []ZMKKeyDescriptor `json:"layout"`
}

type ZmkInfoJSON struct {
	ID      string                         `json:"id"`
	Name    string                         `json:"name"`
	Layouts map[string]ZMKLayoutCollection `json:"layouts"`
}

// zmkKeys maps ZMK key names to event definitions.
var zmkKeys = map[string]string{
	"LEFT_SHIFT":  "shift",
	"LSHFT":       "shift",
	"RIGHT_SHIFT": "shift_r",
	"RSHFT":       "shift_r",
	"LCTRL":       "ctrl",
	"RCTRL":       "control_r",
	"RET":         "enter",
	"LCMD":        "meta",
	"RCMD":        "meta_r",
	"LALT":        "alt",
	"RALT":        "alt_r",
	"BSPC":        "backspace",
	"SPACE":       "space",
	"TAB":         "tab",
	"ESC":         "escape",

	"RIGHT_ARROW": "right",
	"RIGHT":       "right",
	"LEFT_ARROW":  "left",
	"LEFT":        "left",
	"UP_ARROW":    "up",
	"DOWN_ARROW":  "down",
	"EQUAL":       "=",
	"N1":          "1",
	"N2":          "2",
	"N3":          "3",
	"N4":          "4",
	"N5":          "5",
	"N6":          "6",
	"N7":          "7",
	"N8":          "8",
	"N9":          "9",
	"N0":          "0",
	"COMMA":       ",",
	"LBKT":        "[",
	"RBKT":        "]",
	"DOT":         ".",
	"SEMI":        ";",
	"BSLH":        "\\",
	"FSLH":        "/",
	"SQT":         "'",
	"MINUS":       "-",
	"GRAVE":       "`",
}

// LoadZmkInfo converts the physical layout of a ZMK info.json into a keyboard
// definition. Rows come from the row index, weights from key-unit positions; holes
// between keys become spacers.
func LoadZmkInfo(reader io.Reader) (*KeyboardDef, error) {
	decoder := json.NewDecoder(reader)

	var info ZmkInfoJSON

	if err := decoder.Decode(&info); err != nil {
		return nil, fmt.Errorf("could not decode ZMK info JSON: %w", err)
	}

	if len(info.Layouts) != 1 {
		return nil, fmt.Errorf("expected exactly one layout, got %d", len(info.Layouts))
	}

	var keys []ZMKKeyDescriptor
	for _, l := range info.Layouts {
		keys = l.Layout
	}

	rows := make(map[int][]ZMKKeyDescriptor)
	left, right := math.Inf(1), math.Inf(-1)

	for _, key := range keys {
		if key.W <= 0 {
			key.W = 1
		}

		rows[key.Row] = append(rows[key.Row], key)
		left = min(left, key.X)
		right = max(right, key.X+key.W)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("layout %q has no keys", info.Name)
	}

	unitWeight := 100 / (right - left)
	kb := &KeyboardDef{Name: info.Name}

	for _, r := range slices.Sorted(maps.Keys(rows)) {
		row := rows[r]
		slices.SortFunc(row, func(a, b ZMKKeyDescriptor) int { return cmp.Compare(a.X, b.X) })

		var def RowDef

		cursor := left

		for _, key := range row {
			if gap := key.X - cursor; gap > 0.01 {
				def.Keys = append(def.Keys, EntryDef{Width: Float(gap * unitWeight)})
			}

			def.Keys = append(def.Keys, EntryDef{
				Width: Float(key.W * unitWeight),
				Click: zmkEvent(key),
			})
			cursor = max(cursor, key.X+key.W)
		}

		kb.Rows = append(kb.Rows, def)
	}

	return kb, nil
}

func zmkEvent(key ZMKKeyDescriptor) *EventDef {
	if def, ok := zmkKeys[key.Label]; ok {
		return &EventDef{Key: def}
	}

	if utf8.RuneCountInString(key.Label) == 1 {
		return &EventDef{Key: key.Label}
	}

	if key.Label != "" {
		return &EventDef{Text: key.Label}
	}

	return &EventDef{Text: fmt.Sprintf("R%dC%d", key.Row, key.Col)}
}
