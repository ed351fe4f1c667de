package layout

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dasdy/softkeys/model"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const DefaultKeyboardHeight = 240

// LooseFloat is a size that tolerates malformed input: values that do not parse are
// remembered as Invalid instead of failing the whole document.
type LooseFloat struct {
	Value   float64
	Set     bool
	Invalid bool
	Raw     string
}

func Float(v float64) LooseFloat {
	return LooseFloat{Value: v, Set: true}
}

func (f *LooseFloat) UnmarshalYAML(node *yaml.Node) error {
	*f = LooseFloat{Raw: node.Value}

	if node.Kind != yaml.ScalarNode {
		f.Invalid = true

		return nil
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(node.Value), "%"), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		f.Invalid = true

		return nil
	}

	f.Value = v
	f.Set = true

	return nil
}

func (f LooseFloat) MarshalYAML() (any, error) {
	if !f.Set {
		return nil, nil
	}

	return f.Value, nil
}

func (f LooseFloat) IsZero() bool {
	return !f.Set && !f.Invalid
}

// Or returns the value, or def when it is unset or malformed.
func (f LooseFloat) Or(def float64) float64 {
	if f.Set {
		return f.Value
	}

	return def
}

// EventDef is an event binding. The short form is a plain string handed to
// model.ParseEvent; the long form is a mapping.
type EventDef struct {
	Key        string `yaml:"key,omitempty"`
	Text       string `yaml:"text,omitempty"`
	Commit     string `yaml:"commit,omitempty"`
	Select     string `yaml:"select,omitempty"`
	Label      string `yaml:"label,omitempty"`
	ShiftLabel string `yaml:"shift_label,omitempty"`
	Preview    string `yaml:"preview,omitempty"`
	Sticky     bool   `yaml:"sticky,omitempty"`
	Repeatable bool   `yaml:"repeatable,omitempty"`
	Functional bool   `yaml:"functional,omitempty"`
	ShiftLock  string `yaml:"shift_lock,omitempty"`
}

type eventDefFields EventDef

func (d *EventDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = EventDef{Key: node.Value}

		return nil
	}

	return node.Decode((*eventDefFields)(d))
}

func (d EventDef) MarshalYAML() (any, error) {
	if (d == EventDef{Key: d.Key}) {
		return d.Key, nil
	}

	return eventDefFields(d), nil
}

// Event builds the immutable event the definition describes.
func (d *EventDef) Event() (*model.Event, error) {
	var ev *model.Event

	switch {
	case d.Key != "":
		parsed, err := model.ParseEvent(d.Key)
		if err != nil {
			return nil, fmt.Errorf("could not parse event %q: %w", d.Key, err)
		}

		ev = parsed
	case d.Text != "":
		ev = &model.Event{Text: d.Text, Label: d.Text}
	case d.Commit != "":
		ev = &model.Event{Commit: d.Commit, Label: d.Commit}
	case d.Select != "":
		ev = &model.Event{Select: d.Select, Label: d.Select, Functional: true}
	default:
		return nil, model.ErrEmptyEvent
	}

	if d.Label != "" {
		ev.Label = d.Label
	}

	if d.ShiftLabel != "" {
		ev.ShiftLabel = d.ShiftLabel
	}

	ev.Preview = d.Preview
	ev.Sticky = ev.Sticky || d.Sticky
	ev.Repeatable = ev.Repeatable || d.Repeatable
	ev.Functional = ev.Functional || d.Functional

	if d.ShiftLock != "" {
		policy, err := model.ParseLockPolicy(d.ShiftLock)
		if err != nil {
			return nil, err
		}

		ev.ShiftLock = policy
	}

	return ev, nil
}

type OffsetDef struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// EntryDef is one entry of a row as written in the layout file.
type EntryDef struct {
	Preset string     `yaml:"preset,omitempty"`
	Width  LooseFloat `yaml:"width,omitempty"`
	Height LooseFloat `yaml:"height,omitempty"`

	Click      *EventDef `yaml:"click,omitempty"`
	LongClick  *EventDef `yaml:"long_click,omitempty"`
	SwipeUp    *EventDef `yaml:"swipe_up,omitempty"`
	SwipeDown  *EventDef `yaml:"swipe_down,omitempty"`
	SwipeLeft  *EventDef `yaml:"swipe_left,omitempty"`
	SwipeRight *EventDef `yaml:"swipe_right,omitempty"`
	Combo      *EventDef `yaml:"combo,omitempty"`
	ASCII      *EventDef `yaml:"ascii_override,omitempty"`
	Paging     *EventDef `yaml:"paging_override,omitempty"`
	Menu       *EventDef `yaml:"menu_override,omitempty"`
	Composing  *EventDef `yaml:"composing_override,omitempty"`

	Label      string `yaml:"label,omitempty"`
	Sticky     bool   `yaml:"sticky,omitempty"`
	Repeatable bool   `yaml:"repeatable,omitempty"`
	Functional bool   `yaml:"functional,omitempty"`
	ShiftLock  string `yaml:"shift_lock_policy,omitempty"`

	Popup      string `yaml:"popup,omitempty"`
	PopupChars string `yaml:"popup_chars,omitempty"`

	TextOffset   *OffsetDef `yaml:"text_offset,omitempty"`
	SymbolOffset *OffsetDef `yaml:"symbol_offset,omitempty"`
	HintOffset   *OffsetDef `yaml:"hint_offset,omitempty"`
}

func (e *EntryDef) bindings() [model.InteractionCount]*EventDef {
	return [model.InteractionCount]*EventDef{
		model.InteractionClick:      e.Click,
		model.InteractionLongClick:  e.LongClick,
		model.InteractionSwipeUp:    e.SwipeUp,
		model.InteractionSwipeDown:  e.SwipeDown,
		model.InteractionSwipeLeft:  e.SwipeLeft,
		model.InteractionSwipeRight: e.SwipeRight,
		model.InteractionCombo:      e.Combo,
		model.InteractionASCII:      e.ASCII,
		model.InteractionPaging:     e.Paging,
		model.InteractionMenu:       e.Menu,
		model.InteractionComposing:  e.Composing,
	}
}

// withPreset overlays the entry on top of a preset key.
func (e EntryDef) withPreset(p EntryDef) EntryDef {
	out := p
	out.Preset = e.Preset

	if !e.Width.IsZero() {
		out.Width = e.Width
	}

	if !e.Height.IsZero() {
		out.Height = e.Height
	}

	pick := func(dst **EventDef, src *EventDef) {
		if src != nil {
			*dst = src
		}
	}

	pick(&out.Click, e.Click)
	pick(&out.LongClick, e.LongClick)
	pick(&out.SwipeUp, e.SwipeUp)
	pick(&out.SwipeDown, e.SwipeDown)
	pick(&out.SwipeLeft, e.SwipeLeft)
	pick(&out.SwipeRight, e.SwipeRight)
	pick(&out.Combo, e.Combo)
	pick(&out.ASCII, e.ASCII)
	pick(&out.Paging, e.Paging)
	pick(&out.Menu, e.Menu)
	pick(&out.Composing, e.Composing)

	for _, s := range []struct{ dst, src *string }{
		{&out.Label, &e.Label},
		{&out.ShiftLock, &e.ShiftLock},
		{&out.Popup, &e.Popup},
		{&out.PopupChars, &e.PopupChars},
	} {
		if *s.src != "" {
			*s.dst = *s.src
		}
	}

	out.Sticky = out.Sticky || e.Sticky
	out.Repeatable = out.Repeatable || e.Repeatable
	out.Functional = out.Functional || e.Functional

	if e.TextOffset != nil {
		out.TextOffset = e.TextOffset
	}

	if e.SymbolOffset != nil {
		out.SymbolOffset = e.SymbolOffset
	}

	if e.HintOffset != nil {
		out.HintOffset = e.HintOffset
	}

	return out
}

type RowDef struct {
	Height LooseFloat `yaml:"height,omitempty"`
	Keys   []EntryDef `yaml:"keys"`
}

// KeyboardDef is a named keyboard with its defaults.
type KeyboardDef struct {
	Name string `yaml:"name,omitempty"`
	// Width and Height are the default key weight and raw row height.
	Width                 LooseFloat `yaml:"width,omitempty"`
	Height                LooseFloat `yaml:"height,omitempty"`
	HorizontalGap         *int       `yaml:"horizontal_gap,omitempty"`
	VerticalGap           *int       `yaml:"vertical_gap,omitempty"`
	RoundCorner           float64    `yaml:"round_corner,omitempty"`
	KeyboardHeight        int        `yaml:"keyboard_height,omitempty"`
	KeyboardHeightLand    int        `yaml:"keyboard_height_land,omitempty"`
	LandscapeSplitPercent float64    `yaml:"landscape_split_percent,omitempty"`
	Columns               int        `yaml:"columns,omitempty"`
	AutoHeightIndex       *int       `yaml:"auto_height_index,omitempty"`
	LongKeyWeight         float64    `yaml:"long_key_weight,omitempty"`
	LabelUppercase        bool       `yaml:"label_uppercase,omitempty"`
	Rows                  []RowDef   `yaml:"rows"`
}

// Document is a layout file: preset keys shared by every keyboard plus the keyboards.
type Document struct {
	// Default names the keyboard shown first.
	Default    string                 `yaml:"default,omitempty"`
	PresetKeys map[string]EntryDef    `yaml:"preset_keys,omitempty"`
	Keyboards  map[string]KeyboardDef `yaml:"keyboards"`
}

// Names returns keyboard names in sorted order.
func (d *Document) Names() []string {
	return slices.Sorted(maps.Keys(d.Keyboards))
}

// DefaultName is Default when it names a keyboard, otherwise the first name in sorted
// order.
func (d *Document) DefaultName() string {
	if _, ok := d.Keyboards[d.Default]; ok {
		return d.Default
	}

	names := d.Names()
	if len(names) == 0 {
		return ""
	}

	return names[0]
}

func (d *Document) Keyboard(name string) (*KeyboardDef, bool) {
	kb, ok := d.Keyboards[name]
	if !ok {
		return nil, false
	}

	return &kb, true
}

// Entries flattens a keyboard definition into calculator entries. Broken bindings and
// sizes are reported in the returned error; the entry is still produced.
func Entries(kb *KeyboardDef, presets map[string]EntryDef) ([]Entry, error) {
	var (
		entries  []Entry
		warnings error
	)

	defaultWeight := kb.Width.Or(0)

	for r, row := range kb.Rows {
		for c, def := range row.Keys {
			if def.Preset != "" {
				preset, ok := presets[def.Preset]
				if !ok {
					warnings = multierr.Append(warnings, fmt.Errorf("row %d key %d: unknown preset %q", r, c, def.Preset))
				} else {
					def = def.withPreset(preset)
				}
			}

			entry, err := buildEntry(def)
			if err != nil {
				warnings = multierr.Append(warnings, fmt.Errorf("row %d key %d: %w", r, c, err))
			}

			if def.Width.Invalid {
				warnings = multierr.Append(warnings, fmt.Errorf("row %d key %d: malformed width %q", r, c, def.Width.Raw))
				entry.Weight = defaultWeight
			}

			if def.Height.Invalid {
				warnings = multierr.Append(warnings, fmt.Errorf("row %d key %d: malformed height %q", r, c, def.Height.Raw))
			}

			if c == 0 {
				entry.NewRow = true

				if row.Height.Invalid {
					warnings = multierr.Append(warnings, fmt.Errorf("row %d: malformed height %q", r, row.Height.Raw))
				}

				if entry.Height == 0 {
					entry.Height = row.Height.Or(0)
				}
			}

			entries = append(entries, entry)
		}
	}

	return entries, warnings
}

func buildEntry(def EntryDef) (Entry, error) {
	var errs error

	entry := Entry{
		Weight: def.Width.Or(0),
		Height: def.Height.Or(0),
		Key: model.Key{
			Label:      def.Label,
			Popup:      def.Popup,
			PopupChars: def.PopupChars,
		},
	}

	for t, b := range def.bindings() {
		if b == nil {
			continue
		}

		ev, err := b.Event()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", model.InteractionType(t), err))

			continue
		}

		entry.Key.Events[t] = ev
	}

	if click := entry.Key.Events[model.InteractionClick]; click != nil {
		flagged := *click
		flagged.Sticky = flagged.Sticky || def.Sticky
		flagged.Repeatable = flagged.Repeatable || def.Repeatable
		flagged.Functional = flagged.Functional || def.Functional

		if def.ShiftLock != "" {
			policy, err := model.ParseLockPolicy(def.ShiftLock)
			if err != nil {
				errs = multierr.Append(errs, err)
			} else {
				flagged.ShiftLock = policy
			}
		}

		entry.Key.Events[model.InteractionClick] = &flagged
	}

	for _, o := range []struct {
		dst *model.Offset
		src *OffsetDef
	}{
		{&entry.Key.TextOffset, def.TextOffset},
		{&entry.Key.SymbolOffset, def.SymbolOffset},
		{&entry.Key.HintOffset, def.HintOffset},
	} {
		if o.src != nil {
			*o.dst = model.Offset{X: o.src.X, Y: o.src.Y}
		}
	}

	return entry, errs
}

// ParamsFor derives calculator parameters for a keyboard at the given display size. A
// zero height uses the keyboard's own height for the orientation.
func ParamsFor(kb *KeyboardDef, width, height int, landscape bool) Params {
	if height <= 0 {
		height = kb.KeyboardHeight
		if landscape && kb.KeyboardHeightLand > 0 {
			height = kb.KeyboardHeightLand
		}
	}

	if height <= 0 {
		height = DefaultKeyboardHeight
	}

	p := DefaultParams(width, height)
	p.DefaultWeight = kb.Width.Or(p.DefaultWeight)
	p.DefaultHeight = kb.Height.Or(0)
	p.MaxColumns = kb.Columns
	p.RoundCorner = kb.RoundCorner
	p.Split = landscape && kb.LandscapeSplitPercent > 0
	p.SplitPercent = kb.LandscapeSplitPercent

	if kb.HorizontalGap != nil {
		p.HorizontalGap = *kb.HorizontalGap
	}

	if kb.VerticalGap != nil {
		p.VerticalGap = *kb.VerticalGap
	}

	if kb.AutoHeightIndex != nil {
		p.AutoHeightIndex = *kb.AutoHeightIndex
	}

	if kb.LongKeyWeight > 0 {
		p.LongKeyWeight = kb.LongKeyWeight
	}

	return p
}

// Build computes the named keyboard of a document. Entry problems are merged into
// Result.Warnings.
func Build(doc *Document, name string, width, height int, landscape bool) (*Result, error) {
	kb, ok := doc.Keyboard(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyboard, name)
	}

	entries, warnings := Entries(kb, doc.PresetKeys)

	res, err := Compute(entries, ParamsFor(kb, width, height, landscape))
	if err != nil {
		return nil, fmt.Errorf("could not lay out keyboard %s: %w", name, err)
	}

	res.Warnings = multierr.Append(warnings, res.Warnings)

	return res, nil
}
