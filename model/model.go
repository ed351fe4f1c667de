package model

import (
	"fmt"
	"time"
)

// Rect is a key rectangle in keyboard pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Right() int {
	return r.X + r.W
}

func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains reports whether the point lies inside the half-open rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= float64(r.X) && x < float64(r.Right()) &&
		y >= float64(r.Y) && y < float64(r.Bottom())
}

func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// SquaredDistanceFrom returns the squared distance between the point and the rectangle centre.
func (r Rect) SquaredDistanceFrom(x, y float64) float64 {
	cx, cy := r.Center()
	dx, dy := cx-x, cy-y

	return dx*dx + dy*dy
}

// Offset shifts text, symbol or hint drawing relative to the key centre.
type Offset struct {
	X int
	Y int
}

// EdgeFlags marks keys that sit on a keyboard boundary.
type EdgeFlags uint8

const (
	EdgeLeft EdgeFlags = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

func (e EdgeFlags) Has(flag EdgeFlags) bool {
	return e&flag != 0
}

type PointerAction int

const (
	ActionDown PointerAction = iota
	ActionMove
	ActionUp
	ActionCancel
)

func (a PointerAction) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionMove:
		return "move"
	case ActionUp:
		return "up"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParsePointerAction is the inverse of PointerAction.String.
func ParsePointerAction(s string) (PointerAction, error) {
	switch s {
	case "down":
		return ActionDown, nil
	case "move":
		return ActionMove, nil
	case "up":
		return ActionUp, nil
	case "cancel":
		return ActionCancel, nil
	default:
		return 0, fmt.Errorf("unknown pointer action %q", s)
	}
}

// PointerEvent is one raw sample of the host touch stream.
type PointerEvent struct {
	ID     int
	Action PointerAction
	X      float64
	Y      float64
	Time   time.Time
}
