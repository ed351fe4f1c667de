// Package session ties a layout document to a running resolver. It owns the active
// keyboard and replaces it on switch, resize and reload.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/popup"
)

const (
	// SelectDefault in a select event returns to the document's default keyboard.
	SelectDefault = ".default"
	// SelectLast returns to the previously shown keyboard.
	SelectLast = ".last"
)

var (
	ErrUnknownKeyboard = layout.ErrUnknownKeyboard
	ErrNoKeyboards     = errors.New("document has no keyboards")
)

var logCtx = logging.PackageCtx("session")

type Options struct {
	Width     int
	Height    int
	Landscape bool
	// Initial is the first keyboard; empty uses the document default.
	Initial string

	Gesture  gesture.Config
	Keyboard keyboard.Options
	// PopupColumns limits popup character columns; zero keeps the default.
	PopupColumns int
	// ScreenWidth and ScreenHeight place popups; zero means the keyboard size.
	ScreenWidth  int
	ScreenHeight int

	Scheduler loop.Scheduler
	Listener  gesture.Listener
}

// Session is used from the input loop only.
type Session struct {
	doc  *layout.Document
	opts Options

	results  map[string]*layout.Result
	current  string
	previous string

	resolver *gesture.Resolver
	popup    *popup.Controller
}

func New(doc *layout.Document, opts Options) (*Session, error) {
	if doc == nil || len(doc.Keyboards) == 0 {
		return nil, ErrNoKeyboards
	}

	s := &Session{
		doc:     doc,
		opts:    opts,
		results: make(map[string]*layout.Result),
	}

	l := &selectListener{s: s, outer: opts.Listener}
	s.resolver = gesture.New(nil, l, opts.Scheduler, opts.Gesture)
	s.popup = popup.NewController(l, opts.Scheduler, opts.Gesture, doc)
	s.popup.SetScreen(opts.ScreenWidth, opts.ScreenHeight)
	s.popup.SetMaxColumns(opts.PopupColumns)
	s.resolver.SetPopup(s.popup)

	initial := opts.Initial
	if initial == "" {
		initial = doc.DefaultName()
	}

	if err := s.Switch(initial); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) Current() string {
	return s.current
}

func (s *Session) Keyboard() *keyboard.Keyboard {
	return s.resolver.Keyboard()
}

func (s *Session) Resolver() *gesture.Resolver {
	return s.resolver
}

func (s *Session) Popup() *popup.Controller {
	return s.popup
}

func (s *Session) Document() *layout.Document {
	return s.doc
}

// Switch installs a fresh instance of the named keyboard. Gesture state, timers and
// held modifiers of the old keyboard are dropped.
func (s *Session) Switch(name string) error {
	res, err := s.result(name)
	if err != nil {
		return err
	}

	kb := keyboard.New(name, res, s.keyboardOptions(name))
	s.resolver.SetKeyboard(kb)

	if name != s.current {
		s.previous = s.current
		s.current = name
	}

	slog.InfoContext(logCtx, "Keyboard switched", "keyboard", name, "keys", kb.Len(),
		"width", kb.Width(), "height", kb.Height())

	return nil
}

// Resize rebuilds the current keyboard for new display dimensions.
func (s *Session) Resize(width, height int, landscape bool) error {
	s.opts.Width, s.opts.Height, s.opts.Landscape = width, height, landscape
	clear(s.results)

	return s.Switch(s.current)
}

// Reload swaps the document. The current keyboard is kept when the new document still
// has it.
func (s *Session) Reload(doc *layout.Document) error {
	if doc == nil || len(doc.Keyboards) == 0 {
		return ErrNoKeyboards
	}

	s.doc = doc
	clear(s.results)
	s.popup.SetDocument(doc)

	name := s.current
	if _, ok := doc.Keyboard(name); !ok {
		name = doc.DefaultName()
	}

	if _, ok := doc.Keyboard(s.previous); !ok {
		s.previous = ""
	}

	return s.Switch(name)
}

func (s *Session) SetFlags(flags model.EngineFlags) {
	s.resolver.SetFlags(flags)
}

func (s *Session) Observe(o gesture.Observer) {
	s.resolver.Observe(o)
}

// HandlePointer feeds one raw pointer event.
func (s *Session) HandlePointer(ev model.PointerEvent) {
	s.resolver.HandleEvent(ev)
}

func (s *Session) result(name string) (*layout.Result, error) {
	if res, ok := s.results[name]; ok {
		return res, nil
	}

	res, err := layout.Build(s.doc, name, s.opts.Width, s.opts.Height, s.opts.Landscape)
	if err != nil {
		return nil, fmt.Errorf("could not build keyboard %s: %w", name, err)
	}

	if res.Warnings != nil {
		slog.WarnContext(logCtx, "Keyboard built with problems", "keyboard", name, "warnings", res.Warnings)
	}

	s.results[name] = res

	return res, nil
}

func (s *Session) keyboardOptions(name string) keyboard.Options {
	opts := s.opts.Keyboard
	if def, ok := s.doc.Keyboard(name); ok && def.LabelUppercase {
		opts.LabelUppercase = true
	}

	return opts
}

// selectTarget maps the special select names to keyboards.
func (s *Session) selectTarget(name string) string {
	switch name {
	case SelectDefault:
		if s.opts.Initial != "" {
			return s.opts.Initial
		}

		return s.doc.DefaultName()
	case SelectLast:
		return s.previous
	default:
		return name
	}
}

// selectListener switches keyboards on select events before handing everything to the
// host listener.
type selectListener struct {
	s     *Session
	outer gesture.Listener
}

func (l *selectListener) OnPress(code model.KeyCode) {
	l.outer.OnPress(code)
}

func (l *selectListener) OnRelease(code model.KeyCode) {
	l.outer.OnRelease(code)
}

func (l *selectListener) OnKey(code model.KeyCode, mask model.Modifier) {
	l.outer.OnKey(code, mask)
}

func (l *selectListener) OnText(text string) {
	l.outer.OnText(text)
}

func (l *selectListener) OnEvent(ev *model.Event) {
	if ev.Select != "" {
		target := l.s.selectTarget(ev.Select)
		if err := l.s.Switch(target); err != nil {
			slog.WarnContext(logCtx, "Could not select keyboard", "keyboard", ev.Select, "err", err)
		}
	}

	l.outer.OnEvent(ev)
}

func (l *selectListener) OnPreview(key int, label string) {
	if pl, ok := l.outer.(gesture.PreviewListener); ok {
		pl.OnPreview(key, label)
	}
}
