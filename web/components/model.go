package components

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.857 generate -path .

import (
	"fmt"
	"math"

	"github.com/dasdy/softkeys/model"
)

type PageType int

const (
	PageTypeStats PageType = iota
	PageTypeCombo
	PageTypeNeighbors
	PageTypeLayout
)

// Item is one key drawn on the page.
type Item struct {
	Index     int
	Label     string
	Rect      model.Rect
	Count     int
	Highlight bool
}

// ComboConnection is drawn as a line between two keys.
type ComboConnection struct {
	From       int
	To         int
	PressCount int
}

type RenderContext struct {
	Keyboard  string
	Keyboards []string
	Width     int
	Height    int
	// RoundCorner is the key corner radius in pixels.
	RoundCorner float64

	Items          []Item
	MaxVal         int
	HighlightIndex int
	Connections    []ComboConnection
	Page           PageType
}

// ToTransform places a key group at the key's top-left corner.
func ToTransform(r model.Rect) string {
	return fmt.Sprintf("translate(%d, %d)", r.X, r.Y)
}

func (c *RenderContext) ViewBox() string {
	return fmt.Sprintf("0 0 %d %d", c.Width, c.Height)
}

// Item returns the item drawn for key index, or nil.
func (c *RenderContext) Item(index int) *Item {
	for i := range c.Items {
		if c.Items[i].Index == index {
			return &c.Items[i]
		}
	}

	return nil
}

// HeatColor maps a count to a colour from cold blue to hot red. Zero counts stay grey.
func HeatColor(count, maxVal int) string {
	if count <= 0 || maxVal <= 0 {
		return "hsl(0, 0%, 88%)"
	}

	ratio := math.Min(float64(count)/float64(maxVal), 1)
	hue := 240 * (1 - ratio)

	return fmt.Sprintf("hsl(%.0f, 80%%, 60%%)", hue)
}

// ConnectionWidth scales line width with the press count, between 1 and 8 pixels.
func ConnectionWidth(count, maxVal int) float64 {
	if maxVal <= 0 {
		return 1
	}

	return 1 + 7*math.Min(float64(count)/float64(maxVal), 1)
}

// Line is a connection ready to be drawn, with coordinates formatted for SVG.
type Line struct {
	X1, Y1, X2, Y2 string
	Width          string
}

// Line places conn between the centres of its keys. It reports false when either
// key is not drawn.
func (c *RenderContext) Line(conn ComboConnection) (Line, bool) {
	from, to := c.Item(conn.From), c.Item(conn.To)
	if from == nil || to == nil {
		return Line{}, false
	}

	x1, y1 := from.Rect.Center()
	x2, y2 := to.Rect.Center()

	return Line{
		X1:    px(x1),
		Y1:    px(y1),
		X2:    px(x2),
		Y2:    px(y2),
		Width: px(ConnectionWidth(conn.PressCount, c.MaxVal)),
	}, true
}
