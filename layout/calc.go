package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/model"
	"go.uber.org/multierr"
)

var (
	ErrRowOverflow     = errors.New("row does not fit the display width")
	ErrInvalidParams   = errors.New("invalid layout parameters")
	ErrUnknownKeyboard = errors.New("unknown keyboard")
)

const (
	// DefaultLongKeyWeight is the weight above which a key straddling the split point is
	// widened instead of being pushed aside by a spacer.
	DefaultLongKeyWeight = 20
	splitEpsilon         = 1e-3
	stretchFraction      = 0.01
)

var logCtx = logging.PackageCtx("layout")

// Entry is one cell of the declarative key grid.
type Entry struct {
	// Weight is the share of the display width in percent. Zero means the default
	// weight for entries with a click binding and no width for blank entries.
	Weight float64
	// Height is the raw row height; the first non-zero height in a row wins.
	Height float64
	// NewRow forces the entry to start a new row.
	NewRow bool
	// Key carries the bindings; geometry fields are filled in by Compute. An entry
	// without a click binding is a spacer.
	Key model.Key
}

func (e *Entry) isKey() bool {
	return e.Key.Click() != nil
}

type Params struct {
	DisplayWidth   int
	KeyboardHeight int
	HorizontalGap  int
	VerticalGap    int
	// MaxColumns limits keys per row; zero means unlimited.
	MaxColumns int
	// AutoHeightIndex selects the row absorbing rounding; negative values count from the end.
	AutoHeightIndex int
	DefaultWeight   float64
	// DefaultHeight is the raw height of rows without an explicit height. Zero shares the
	// target height evenly between those rows.
	DefaultHeight float64
	Split         bool
	SplitPercent  float64
	LongKeyWeight float64
	RoundCorner   float64
}

func DefaultParams(width, height int) Params {
	return Params{
		DisplayWidth:    width,
		KeyboardHeight:  height,
		HorizontalGap:   2,
		VerticalGap:     2,
		AutoHeightIndex: -1,
		DefaultWeight:   10,
		LongKeyWeight:   DefaultLongKeyWeight,
	}
}

func (p Params) splitMultiplier() float64 {
	if !p.Split || p.SplitPercent <= 0 {
		return 0
	}

	return p.SplitPercent / 100
}

// Computation is the intermediate state of one layout pass.
type Computation struct {
	RowWeights      []float64
	Unit            float64
	SplitMultiplier float64
	RowHeights      []int
	VerticalGap     int
}

type Result struct {
	Keys        []model.Key
	Width       int
	Height      int
	RoundCorner float64
	Computation Computation
	// Warnings holds recovered problems such as skipped rows.
	Warnings error
}

type row struct {
	entries []*Entry
	weight  float64
	height  float64
}

// Compute turns entries into key geometry. Recoverable problems are logged and collected
// in Result.Warnings; only unusable parameters return an error.
func Compute(entries []Entry, p Params) (*Result, error) {
	if p.DisplayWidth <= 0 || p.KeyboardHeight <= 0 {
		return nil, fmt.Errorf("%w: display %dx%d", ErrInvalidParams, p.DisplayWidth, p.KeyboardHeight)
	}

	if p.DefaultWeight <= 0 {
		p.DefaultWeight = 10
	}

	if p.LongKeyWeight <= 0 {
		p.LongKeyWeight = DefaultLongKeyWeight
	}

	split := p.splitMultiplier()
	unit := float64(p.DisplayWidth) / 100 / (1 + split)

	rows, warnings := groupRows(entries, p, unit*(1+split))

	res := &Result{
		Width:       p.DisplayWidth,
		Height:      p.KeyboardHeight,
		RoundCorner: p.RoundCorner,
		Computation: Computation{
			Unit:            unit,
			SplitMultiplier: split,
		},
	}

	if len(rows) == 0 {
		res.Warnings = warnings

		return res, nil
	}

	heights, gap, err := scaleRows(rows, p)
	warnings = multierr.Append(warnings, err)

	res.Computation.RowHeights = heights
	res.Computation.VerticalGap = gap

	for _, r := range rows {
		res.Computation.RowWeights = append(res.Computation.RowWeights, r.weight)
	}

	y := gap

	for i, r := range rows {
		res.Keys = placeRow(res.Keys, r, i, y, heights[i], unit, split, p)
		y += heights[i] + gap
	}

	assignEdges(res.Keys, p.DisplayWidth, p.KeyboardHeight)

	res.Warnings = warnings

	return res, nil
}

func (p Params) weightOf(e *Entry) float64 {
	if e.Weight > 0 {
		return e.Weight
	}

	if e.isKey() {
		return p.DefaultWeight
	}

	return 0
}

// groupRows splits entries into rows, wrapping on column count or overflow and honouring
// explicit breaks. fullUnit is the width of one weight unit including its split share.
func groupRows(entries []Entry, p Params, fullUnit float64) ([]*row, error) {
	var (
		rows     []*row
		current  *row
		x        float64
		columns  int
		skipping bool
		warnings error
	)

	limit := float64(p.DisplayWidth) + 0.5

	for i := range entries {
		e := &entries[i]
		w := p.weightOf(e)
		footprint := w * fullUnit

		if skipping && !e.NewRow {
			continue
		}

		skipping = false

		wrap := current == nil || e.NewRow ||
			(e.isKey() && p.MaxColumns > 0 && columns >= p.MaxColumns) ||
			(len(current.entries) > 0 && x+footprint > limit)

		if wrap {
			current = &row{}
			rows = append(rows, current)
			x = 0
			columns = 0
		}

		if len(current.entries) == 0 && footprint > limit {
			err := fmt.Errorf("%w: entry %d needs %.0fpx of %dpx", ErrRowOverflow, i, footprint, p.DisplayWidth)
			slog.WarnContext(logCtx, "Skipping row", "entry", i, "error", err)
			warnings = multierr.Append(warnings, err)

			rows = rows[:len(rows)-1]
			current = nil
			// Explicit rows are dropped whole; an implicitly wrapped row holds only this entry.
			skipping = e.NewRow

			continue
		}

		current.entries = append(current.entries, e)
		current.weight += w

		if current.height == 0 && e.Height > 0 {
			current.height = e.Height
		}

		x += footprint

		if e.isKey() {
			columns++
		}
	}

	return rows, warnings
}

// scaleRows scales raw row heights so that rows plus gaps fill the target height exactly.
func scaleRows(rows []*row, p Params) ([]int, int, error) {
	var warnings error

	target := float64(p.KeyboardHeight)
	gaps := float64(p.VerticalGap * (len(rows) + 1))

	defaultHeight := p.DefaultHeight
	if defaultHeight <= 0 {
		explicit, unset := 0.0, 0

		for _, r := range rows {
			if r.height > 0 {
				explicit += r.height
			} else {
				unset++
			}
		}

		if unset > 0 {
			defaultHeight = (target - gaps - explicit) / float64(unset)
			if defaultHeight <= 0 {
				defaultHeight = (target - gaps) / float64(len(rows))
			}
		}

		if defaultHeight <= 0 {
			defaultHeight = 1
		}
	}

	raw := make([]float64, len(rows))
	total := gaps

	for i, r := range rows {
		raw[i] = r.height
		if raw[i] <= 0 {
			raw[i] = defaultHeight
		}

		total += raw[i]
	}

	scale := target / total
	gap := int(math.Ceil(float64(p.VerticalGap) * scale))

	auto := p.AutoHeightIndex
	if auto < 0 {
		auto += len(rows)
	}

	if auto < 0 || auto >= len(rows) {
		auto = len(rows) - 1
	}

	heights := make([]int, len(rows))
	used := gap * (len(rows) + 1)

	for i := range rows {
		if i == auto {
			continue
		}

		heights[i] = int(math.Floor(raw[i] * scale))
		used += heights[i]
	}

	heights[auto] = p.KeyboardHeight - used
	if heights[auto] < 1 {
		warnings = fmt.Errorf("auto-height row %d has no room left (%dpx), clamped to 1px", auto, heights[auto])
		slog.WarnContext(logCtx, "Keyboard too short for its rows", "row", auto, "remainder", heights[auto])
		heights[auto] = 1
	}

	return heights, gap, warnings
}

func placeRow(keys []model.Key, r *row, rowIndex, y, height int, unit, split float64, p Params) []model.Key {
	var (
		x       int
		acc     float64
		spaced  bool
		column  int
		lastKey = -1
	)

	spacer := int(r.weight * split * unit)
	half := r.weight / 2

	for _, e := range r.entries {
		w := p.weightOf(e)
		px := int(w * unit)
		widen := 0

		if split > 0 && !spaced && acc+w > half+splitEpsilon {
			spaced = true

			if w > p.LongKeyWeight && e.isKey() {
				widen = spacer
			} else {
				x += spacer
			}
		}

		acc += w

		if !e.isKey() {
			x += px + widen

			continue
		}

		k := e.Key
		k.Index = len(keys)
		k.Row = rowIndex
		k.Column = column
		k.Rect = model.Rect{
			X: x + p.HorizontalGap/2,
			Y: y,
			W: max(px+widen-p.HorizontalGap, 1),
			H: height,
		}

		keys = append(keys, k)
		lastKey = len(keys) - 1
		column++
		x += px + widen
	}

	if lastKey >= 0 {
		remainder := p.DisplayWidth - x
		if remainder > 0 && float64(remainder) < float64(p.DisplayWidth)*stretchFraction {
			keys[lastKey].W += remainder
		}
	}

	return keys
}

// assignEdges flags boundary keys and clamps every key inside the keyboard.
func assignEdges(keys []model.Key, width, height int) {
	if len(keys) == 0 {
		return
	}

	firstRow, lastRow := keys[0].Row, keys[len(keys)-1].Row

	for i := range keys {
		k := &keys[i]
		k.Edges = 0

		if k.Row == firstRow {
			k.Edges |= model.EdgeTop
		}

		if k.Row == lastRow {
			k.Edges |= model.EdgeBottom
		}

		if k.Column == 0 {
			k.Edges |= model.EdgeLeft
		}

		if i == len(keys)-1 || keys[i+1].Row != k.Row {
			k.Edges |= model.EdgeRight
		}

		clamp(&k.Rect, width, height)
	}
}

func clamp(r *model.Rect, width, height int) {
	r.X = min(max(r.X, 0), width-1)
	r.Y = min(max(r.Y, 0), height-1)
	r.W = max(min(r.W, width-r.X), 1)
	r.H = max(min(r.H, height-r.Y), 1)
}
