package routes

import (
	"log/slog"
	"net/http"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/keyboard"
	cs "github.com/dasdy/softkeys/web/components"
)

// BuildNeighborsRenderContext builds the render context for the neighbors page. Only the
// neighbor of each pair is credited.
func (s *ServerHandler) BuildNeighborsRenderContext(kb *keyboard.Keyboard, neighbors []db.Combo, key int) cs.RenderContext {
	sortByPressed(neighbors)

	ctx := s.baseRenderContext(kb, cs.PageTypeNeighbors)
	ctx.HighlightIndex = key

	for _, combo := range neighbors {
		neighbor := otherKey(combo, key)
		if neighbor < 0 || neighbor >= len(ctx.Items) {
			slog.WarnContext(logCtx, "Key not found in layout", "keyboard", kb.Name(), "key", neighbor)

			continue
		}

		ctx.Items[neighbor].Count += combo.Pressed
		ctx.MaxVal = max(ctx.MaxVal, combo.Pressed)
	}

	if key >= 0 && key < len(ctx.Items) {
		ctx.Items[key].Highlight = true
	}

	ctx.Connections = topConnections(neighbors, key)

	return ctx
}

// NeighborsHandle handles requests to the neighbors page.
func (s *ServerHandler) NeighborsHandle(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(logCtx, "Handling neighbors page request")

	if !s.requireJournal(w) {
		return
	}

	kb, ok := s.keyboardFor(w, r)
	if !ok {
		return
	}

	key, ok := keyFor(w, r, kb)
	if !ok {
		return
	}

	neighbors := s.NeighborTracker.GatherCombos(kb.Name(), key)

	renderContext := s.BuildNeighborsRenderContext(kb, neighbors, key)
	_ = SafeRenderTemplate(cs.HeatMap(&renderContext), w)
}
