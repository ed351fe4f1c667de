package routes

import (
	"log/slog"
	"net/http"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/keyboard"
	cs "github.com/dasdy/softkeys/web/components"
)

// BuildStatsRenderContext builds the render context for the stats page.
func (s *ServerHandler) BuildStatsRenderContext(kb *keyboard.Keyboard, stats []db.KeyCount) cs.RenderContext {
	ctx := s.baseRenderContext(kb, cs.PageTypeStats)

	for _, key := range stats {
		if key.Key < 0 || key.Key >= len(ctx.Items) {
			slog.WarnContext(logCtx, "Key not found in layout", "keyboard", kb.Name(), "key", key.Key)

			continue
		}

		ctx.Items[key.Key].Count += key.Count
		ctx.MaxVal = max(ctx.MaxVal, ctx.Items[key.Key].Count)
	}

	return ctx
}

// StatsHandle handles requests to the stats page.
func (s *ServerHandler) StatsHandle(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(logCtx, "Handling stats page request")

	if !s.requireJournal(w) {
		return
	}

	kb, ok := s.keyboardFor(w, r)
	if !ok {
		return
	}

	curStats, err := s.Storage.GatherAll(kb.Name())
	if err != nil {
		slog.ErrorContext(logCtx, "Failed to get stats", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	renderContext := s.BuildStatsRenderContext(kb, curStats)
	_ = SafeRenderTemplate(cs.HeatMap(&renderContext), w)
}
