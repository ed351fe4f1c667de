package components_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/web/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTransform(t *testing.T) {
	tests := []struct {
		name string
		rect model.Rect
		want string
	}{
		{"origin", model.Rect{}, "translate(0, 0)"},
		{"offset key", model.Rect{X: 101, Y: 2, W: 98, H: 96}, "translate(101, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, components.ToTransform(tt.rect))
		})
	}
}

func TestHeatColor(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		maxVal   int
		expected string
	}{
		{"unused key", 0, 10, "hsl(0, 0%, 88%)"},
		{"empty page", 3, 0, "hsl(0, 0%, 88%)"},
		{"hottest key", 10, 10, "hsl(0, 80%, 60%)"},
		{"half", 5, 10, "hsl(120, 80%, 60%)"},
		{"clamped", 20, 10, "hsl(0, 80%, 60%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, components.HeatColor(tt.count, tt.maxVal))
		})
	}
}

func TestConnectionWidth(t *testing.T) {
	assert.InDelta(t, 1.0, components.ConnectionWidth(3, 0), 0.001)
	assert.InDelta(t, 8.0, components.ConnectionWidth(10, 10), 0.001)
	assert.InDelta(t, 4.5, components.ConnectionWidth(5, 10), 0.001)
}

func renderContext(page components.PageType) *components.RenderContext {
	return &components.RenderContext{
		Keyboard:  "main",
		Keyboards: []string{"main", "symbols"},
		Width:     200,
		Height:    100,
		Items: []components.Item{
			{Index: 0, Label: "<a>", Rect: model.Rect{X: 1, Y: 2, W: 98, H: 96}, Count: 4, Highlight: true},
			{Index: 1, Label: "b", Rect: model.Rect{X: 101, Y: 2, W: 98, H: 96}, Count: 2},
		},
		MaxVal:         4,
		HighlightIndex: 0,
		Connections:    []components.ComboConnection{{From: 0, To: 1, PressCount: 2}, {From: 0, To: 9, PressCount: 1}},
		Page:           page,
	}
}

func render(t *testing.T, c *components.RenderContext) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, components.HeatMap(c).Render(context.Background(), &buf))

	return buf.String()
}

func TestHeatMap(t *testing.T) {
	t.Run("combo page", func(t *testing.T) {
		html := render(t, renderContext(components.PageTypeCombo))

		assert.Contains(t, html, `viewBox="0 0 200 100"`)
		assert.Contains(t, html, `<g class="key highlight" transform="translate(1, 2)">`)
		assert.Contains(t, html, `&lt;a&gt;`)
		assert.Contains(t, html, `href="/combo?key=1&amp;keyboard=main"`)
		assert.Contains(t, html, `href="/neighbors?key=0&amp;keyboard=main">View Neighbors`)
		assert.Equal(t, 1, strings.Count(html, "<line"), "connections to unknown keys are dropped")
	})

	t.Run("neighbors page links to neighbors", func(t *testing.T) {
		html := render(t, renderContext(components.PageTypeNeighbors))

		assert.Contains(t, html, `href="/neighbors?key=1&amp;keyboard=main"`)
		assert.Contains(t, html, `View Combos`)
	})

	t.Run("layout page has no counts", func(t *testing.T) {
		c := renderContext(components.PageTypeLayout)
		c.Connections = nil

		html := render(t, c)

		assert.NotContains(t, html, `class="count"`)
		assert.NotContains(t, html, `<a href="/combo`)
		assert.Contains(t, html, `href="/layout?keyboard=symbols"`)
	})
}

func TestLine(t *testing.T) {
	c := renderContext(components.PageTypeCombo)

	t.Run("between key centres", func(t *testing.T) {
		l, ok := c.Line(components.ComboConnection{From: 0, To: 1, PressCount: 4})

		require.True(t, ok)
		assert.Equal(t, components.Line{X1: "50.0", Y1: "50.0", X2: "150.0", Y2: "50.0", Width: "8.0"}, l)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, ok := c.Line(components.ComboConnection{From: 0, To: 9, PressCount: 1})

		assert.False(t, ok)
	})
}

func TestHeatMapPage(t *testing.T) {
	html := render(t, renderContext(components.PageTypeNeighbors))

	assert.True(t, strings.HasPrefix(html, "<!doctype html><html><head>"))
	assert.Contains(t, html, "<title>softkeys: main</title>")
	assert.Contains(t, html, `<a href="/?keyboard=main" class="current">main</a>`)
	assert.Contains(t, html, `</a> <a href="/?keyboard=main">Back</a></nav>`)
	assert.Contains(t, html, `<title>2</title></line>`)
	assert.True(t, strings.HasSuffix(html, "</svg></body></html>"))
}
