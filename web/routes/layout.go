package routes

import (
	"net/http"

	cs "github.com/dasdy/softkeys/web/components"
)

// LayoutHandle draws the computed geometry of a keyboard without statistics.
func (s *ServerHandler) LayoutHandle(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.keyboardFor(w, r)
	if !ok {
		return
	}

	renderContext := s.baseRenderContext(kb, cs.PageTypeLayout)
	_ = SafeRenderTemplate(cs.HeatMap(&renderContext), w)
}

// LayoutSVGHandle serves only the SVG drawing.
func (s *ServerHandler) LayoutSVGHandle(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.keyboardFor(w, r)
	if !ok {
		return
	}

	renderContext := s.baseRenderContext(kb, cs.PageTypeLayout)
	_ = renderAs(cs.Keyboard(&renderContext), w, "image/svg+xml")
}
