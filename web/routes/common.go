package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/model"
	cs "github.com/dasdy/softkeys/web/components"
)

var logCtx = logging.PackageCtx("routes")

// KeyboardSource builds keyboards for drawing.
type KeyboardSource interface {
	Keyboard(name string) (*keyboard.Keyboard, error)
	Names() []string
	DefaultName() string
}

// ServerHandler holds all dependencies needed for the web server handlers. Storage and
// the trackers may be nil when no journal is configured; only the layout page works then.
type ServerHandler struct {
	Storage         db.Storage
	ComboTracker    db.Tracker
	NeighborTracker db.Tracker
	Layouts         KeyboardSource
}

// SafeRenderTemplate safely renders a templ component to an http.ResponseWriter.
func SafeRenderTemplate(component templ.Component, w http.ResponseWriter) error {
	return renderAs(component, w, "text/html; charset=UTF-8")
}

func renderAs(component templ.Component, w http.ResponseWriter, contentType string) error {
	// Do not write to w because it implies 200 status
	var buf bytes.Buffer

	err := component.Render(context.Background(), &buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return fmt.Errorf("could not render template: %w", err)
	}

	w.Header().Set("Content-Type", contentType)

	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(logCtx, "Failed to write response", "error", err)

		return fmt.Errorf("could not write to response writer: %w", err)
	}

	return nil
}

// keyboardFor resolves the keyboard named by the request, writing an error response
// when it cannot.
func (s *ServerHandler) keyboardFor(w http.ResponseWriter, r *http.Request) (*keyboard.Keyboard, bool) {
	name := r.URL.Query().Get("keyboard")
	if name == "" {
		name = s.Layouts.DefaultName()
	}

	kb, err := s.Layouts.Keyboard(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, layout.ErrUnknownKeyboard) {
			status = http.StatusNotFound
		}

		http.Error(w, err.Error(), status)

		return nil, false
	}

	return kb, true
}

func keyFor(w http.ResponseWriter, r *http.Request, kb *keyboard.Keyboard) (int, bool) {
	key, err := strconv.Atoi(r.URL.Query().Get("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return 0, false
	}

	if kb.Key(key) == nil {
		http.Error(w, fmt.Sprintf("keyboard %s has no key %d", kb.Name(), key), http.StatusNotFound)

		return 0, false
	}

	return key, true
}

func (s *ServerHandler) requireJournal(w http.ResponseWriter) bool {
	if s.Storage == nil {
		http.Error(w, "no journal configured", http.StatusNotFound)

		return false
	}

	return true
}

// baseRenderContext draws every key of kb with a zero count.
func (s *ServerHandler) baseRenderContext(kb *keyboard.Keyboard, page cs.PageType) cs.RenderContext {
	items := make([]cs.Item, kb.Len())
	for i, k := range kb.Keys() {
		items[i] = cs.Item{
			Index: i,
			Label: kb.LabelFor(i, model.EngineFlags{}),
			Rect:  k.Rect,
		}
	}

	var names []string
	if s.Layouts != nil {
		names = s.Layouts.Names()
	}

	return cs.RenderContext{
		Keyboard:       kb.Name(),
		Keyboards:      names,
		Width:          kb.Width(),
		Height:         kb.Height(),
		RoundCorner:    kb.RoundCorner(),
		Items:          items,
		HighlightIndex: -1,
		Page:           page,
	}
}
