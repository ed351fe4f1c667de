package routes

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/keyboard"
	cs "github.com/dasdy/softkeys/web/components"
)

const maxConnections = 5

func sortByPressed(combos []db.Combo) {
	slices.SortStableFunc(combos, func(a, b db.Combo) int {
		return -cmp.Compare(a.Pressed, b.Pressed)
	})
}

// otherKey returns the first key of the combo that is not key, or key itself.
func otherKey(combo db.Combo, key int) int {
	for _, k := range combo.Keys {
		if k != key {
			return k
		}
	}

	return key
}

// topConnections links key to the partners of the most pressed combos.
func topConnections(combos []db.Combo, key int) []cs.ComboConnection {
	connections := make([]cs.ComboConnection, 0, maxConnections)

	for _, combo := range combos {
		connections = append(connections, cs.ComboConnection{
			From:       key,
			To:         otherKey(combo, key),
			PressCount: combo.Pressed,
		})

		if len(connections) >= maxConnections {
			break
		}
	}

	return connections
}

// BuildCombosRenderContext builds the render context for the combos page. Every key of
// a combo is credited with the combo's count.
func (s *ServerHandler) BuildCombosRenderContext(kb *keyboard.Keyboard, combos []db.Combo, key int) cs.RenderContext {
	slog.DebugContext(logCtx, "Building combos context", "comboCount", len(combos))

	sortByPressed(combos)

	ctx := s.baseRenderContext(kb, cs.PageTypeCombo)
	ctx.HighlightIndex = key

	for _, combo := range combos {
		for _, k := range combo.Keys {
			if k < 0 || k >= len(ctx.Items) {
				slog.WarnContext(logCtx, "Key not found in layout", "keyboard", kb.Name(), "key", k)

				continue
			}

			ctx.Items[k].Count += combo.Pressed
		}

		ctx.MaxVal = max(ctx.MaxVal, combo.Pressed)
	}

	if key >= 0 && key < len(ctx.Items) {
		ctx.Items[key].Highlight = true
	}

	ctx.Connections = topConnections(combos, key)

	slog.DebugContext(logCtx, "Found combo connections", "count", len(ctx.Connections))

	return ctx
}

// CombosHandle handles requests to the combos page.
func (s *ServerHandler) CombosHandle(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(logCtx, "Handling combos page request")

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

	combos := s.ComboTracker.GatherCombos(kb.Name(), key)

	renderContext := s.BuildCombosRenderContext(kb, combos, key)
	_ = SafeRenderTemplate(cs.HeatMap(&renderContext), w)
}
