package keyboard

import (
	"math"

	"github.com/dasdy/softkeys/model"
)

const (
	NotAKey = -1

	gridColumns = 10
	gridRows    = 5
)

// Proximity is a coarse grid over the keyboard surface. Each cell lists the keys a touch
// inside that cell may resolve to, so hit-testing scans a handful of keys instead of all.
type Proximity struct {
	width, height int
	cellW, cellH  float64

	rects      []model.Rect
	thresholds []float64
	cells      [gridColumns * gridRows][]int
}

// NewProximity indexes keys. A key's squared threshold is (multiplier * (w+h)/2)²; a zero
// multiplier only matches touches inside a key.
func NewProximity(keys []model.Key, width, height int, multiplier float64) *Proximity {
	p := &Proximity{
		width:      width,
		height:     height,
		cellW:      float64(width) / gridColumns,
		cellH:      float64(height) / gridRows,
		rects:      make([]model.Rect, len(keys)),
		thresholds: make([]float64, len(keys)),
	}

	for i := range keys {
		p.rects[i] = keys[i].Rect
		radius := max(multiplier, 0) * float64(keys[i].W+keys[i].H) / 2
		p.thresholds[i] = radius * radius
	}

	if width <= 0 || height <= 0 {
		return p
	}

	for row := range gridRows {
		for col := range gridColumns {
			left, top := float64(col)*p.cellW, float64(row)*p.cellH
			right, bottom := left+p.cellW, top+p.cellH

			var candidates []int

			for i, r := range p.rects {
				if intersects(r, left, top, right, bottom) ||
					squaredDistanceToCell(r, left, top, right, bottom) <= p.thresholds[i] {
					candidates = append(candidates, i)
				}
			}

			p.cells[row*gridColumns+col] = candidates
		}
	}

	return p
}

func intersects(r model.Rect, left, top, right, bottom float64) bool {
	return float64(r.X) < right && float64(r.Right()) > left &&
		float64(r.Y) < bottom && float64(r.Bottom()) > top
}

// squaredDistanceToCell is the squared distance from the key centre to the closest point
// of the cell.
func squaredDistanceToCell(r model.Rect, left, top, right, bottom float64) float64 {
	cx, cy := r.Center()
	dx := cx - math.Max(left, math.Min(cx, right))
	dy := cy - math.Max(top, math.Min(cy, bottom))

	return dx*dx + dy*dy
}

func (p *Proximity) inBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(p.width) && y < float64(p.height)
}

// Candidates returns the keys indexed for the cell containing the point.
func (p *Proximity) Candidates(x, y float64) []int {
	if !p.inBounds(x, y) {
		return nil
	}

	col := min(int(x/p.cellW), gridColumns-1)
	row := min(int(y/p.cellH), gridRows-1)

	return p.cells[row*gridColumns+col]
}

// Within reports whether the point is inside key i or within its proximity threshold.
func (p *Proximity) Within(i int, x, y float64) bool {
	if i < 0 || i >= len(p.rects) {
		return false
	}

	return p.rects[i].Contains(x, y) || p.rects[i].SquaredDistanceFrom(x, y) <= p.thresholds[i]
}

// KeyAt resolves a point to a key index. A key containing the point wins; otherwise the
// key with the nearest centre inside its threshold. Points outside the keyboard and
// misses return NotAKey.
func (p *Proximity) KeyAt(x, y float64) int {
	best, bestDist := NotAKey, math.Inf(1)
	inside := false

	for _, i := range p.Candidates(x, y) {
		r := p.rects[i]
		d := r.SquaredDistanceFrom(x, y)

		switch {
		case r.Contains(x, y):
			if !inside || d < bestDist {
				best, bestDist, inside = i, d, true
			}
		case !inside && d <= p.thresholds[i] && d < bestDist:
			best, bestDist = i, d
		}
	}

	return best
}
