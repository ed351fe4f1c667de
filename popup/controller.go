// Package popup shows mini keyboards for long-pressed keys. A popup is a keyboard of its
// own with a nested gesture resolver; its dispatches go to the outer listener.
package popup

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
)

const (
	DefaultMaxColumns = 8
	// nestedPointer is the pointer id used inside the popup resolver.
	nestedPointer = 0
)

var (
	ErrNoPopup      = errors.New("key has no popup")
	ErrEmptyPopup   = errors.New("popup has no keys")
	ErrUnknownPopup = errors.New("unknown popup layout")
)

var logCtx = logging.PackageCtx("popup")

type cacheKey struct {
	keyboard      string
	width, height int
	key           int
	source        string
}

type openPopup struct {
	source   *keyboard.Keyboard
	key      int
	kb       *keyboard.Keyboard
	resolver *gesture.Resolver
	bounds   model.Rect
	// dispatched is set by the popup listener once a key fired.
	dispatched bool
}

// Controller implements gesture.PopupOpener. Only one popup is open at a time.
type Controller struct {
	listener gesture.Listener
	sched    loop.Scheduler
	cfg      gesture.Config
	doc      *layout.Document

	maxColumns       int
	screenW, screenH int

	cache map[cacheKey]*layout.Result
	open  *openPopup
}

// NewController creates a controller. doc supplies named popup layouts and may be nil when
// only popup characters are used.
func NewController(listener gesture.Listener, sched loop.Scheduler, cfg gesture.Config, doc *layout.Document) *Controller {
	cfg.SwipeEnabled = false
	cfg.PopupsEnabled = false
	cfg.DebounceTime = 0

	return &Controller{
		listener:   listener,
		sched:      sched,
		cfg:        cfg,
		doc:        doc,
		maxColumns: DefaultMaxColumns,
		cache:      make(map[cacheKey]*layout.Result),
	}
}

// SetDocument replaces the layouts used for named popups and drops cached popups.
func (c *Controller) SetDocument(doc *layout.Document) {
	c.Dismiss()
	c.doc = doc
	clear(c.cache)
}

// SetScreen sets the screen size. The keyboard is assumed to sit at the bottom of the
// screen; a zero size means the screen is the keyboard itself.
func (c *Controller) SetScreen(width, height int) {
	c.screenW, c.screenH = width, height
}

func (c *Controller) SetMaxColumns(n int) {
	if n > 0 {
		c.maxColumns = n
	}
}

func (c *Controller) IsOpen() bool {
	return c.open != nil
}

// Bounds is the popup rectangle in the source keyboard's coordinates. Y is negative when
// the popup sits above the keyboard.
func (c *Controller) Bounds() (model.Rect, bool) {
	if c.open == nil {
		return model.Rect{}, false
	}

	return c.open.bounds, true
}

// Keyboard returns the open popup keyboard, or nil.
func (c *Controller) Keyboard() *keyboard.Keyboard {
	if c.open == nil {
		return nil
	}

	return c.open.kb
}

// Open builds and shows the popup of key on kb. The touch at (x, y) becomes a press on
// the popup key closest to it.
func (c *Controller) Open(kb *keyboard.Keyboard, key int, x, y float64) bool {
	c.Dismiss()

	res, err := c.build(kb, key)
	if err != nil {
		slog.WarnContext(logCtx, "Could not open popup", "keyboard", kb.Name(), "key", key, "err", err)

		return false
	}

	p := &openPopup{source: kb, key: key}
	p.kb = keyboard.New(kb.Name()+"/popup", res, kb.Options())
	p.bounds = c.place(kb, key, res.Width, res.Height)
	p.resolver = gesture.New(p.kb, &popupListener{c: c, p: p}, c.sched, c.cfg)
	c.open = p

	slog.DebugContext(logCtx, "Popup opened", "key", key, "keys", p.kb.Len(), "bounds", p.bounds)

	c.feed(model.PointerEvent{ID: nestedPointer, Action: model.ActionDown, X: x, Y: y, Time: c.sched.Now()})

	return true
}

// Forward routes a pointer event of the gesture that opened the popup. The popup closes
// after its key fires.
func (c *Controller) Forward(ev model.PointerEvent) {
	if c.open == nil {
		return
	}

	ev.ID = nestedPointer
	c.feed(ev)
}

func (c *Controller) Dismiss() {
	if c.open == nil {
		return
	}

	p := c.open
	c.open = nil
	p.resolver.Cancel()

	slog.DebugContext(logCtx, "Popup dismissed", "key", p.key)
}

func (c *Controller) feed(ev model.PointerEvent) {
	p := c.open
	b := p.bounds

	// Touches outside the popup select its nearest edge key.
	ev.X = min(max(ev.X-float64(b.X), 0), float64(b.W-1))
	ev.Y = min(max(ev.Y-float64(b.Y), 0), float64(b.H-1))

	p.resolver.HandleEvent(ev)

	if c.open == p && (p.dispatched || ev.Action == model.ActionUp || ev.Action == model.ActionCancel) {
		c.Dismiss()
	}
}

// place centres the popup over the key, keeps it on screen horizontally and flips it
// below the key when there is no room above.
func (c *Controller) place(kb *keyboard.Keyboard, key, width, height int) model.Rect {
	k := kb.Key(key)
	screenW, screenH := c.screenW, c.screenH

	if screenW <= 0 {
		screenW = kb.Width()
	}

	if screenH <= 0 {
		screenH = kb.Height()
	}

	top := screenH - kb.Height()

	r := model.Rect{X: k.X + k.W/2 - width/2, Y: k.Y - height, W: width, H: height}
	r.X = max(min(r.X, screenW-width), 0)

	if top+r.Y < 0 {
		r.Y = k.Bottom()
	}

	return r
}

func (c *Controller) build(kb *keyboard.Keyboard, key int) (*layout.Result, error) {
	k := kb.Key(key)
	if k == nil || !k.HasPopup() {
		return nil, ErrNoPopup
	}

	ck := cacheKey{keyboard: kb.Name(), width: kb.Width(), height: kb.Height(), key: key, source: k.Popup + "|" + k.PopupChars}
	if res, ok := c.cache[ck]; ok {
		return res, nil
	}

	var (
		res *layout.Result
		err error
	)

	if k.Popup != "" {
		res, err = c.buildNamed(k)
	} else {
		res, err = c.buildChars(k)
	}

	if err != nil {
		return nil, err
	}

	if res.Warnings != nil {
		slog.WarnContext(logCtx, "Popup layout has problems", "key", key, "warnings", res.Warnings)
	}

	c.cache[ck] = res

	return res, nil
}

// buildChars lays out one key per character, each the size of the source key.
func (c *Controller) buildChars(k *model.Key) (*layout.Result, error) {
	n := utf8.RuneCountInString(k.PopupChars)
	if n == 0 {
		return nil, ErrEmptyPopup
	}

	cols := min(n, c.maxColumns)
	rows := (n + cols - 1) / cols

	p := layout.DefaultParams(0, 0)
	p.DisplayWidth = cols * (k.W + p.HorizontalGap)
	p.KeyboardHeight = rows*(k.H+p.VerticalGap) + p.VerticalGap
	p.DefaultHeight = float64(k.H)

	entries := make([]layout.Entry, 0, n)

	for i, r := range []rune(k.PopupChars) {
		ev, err := model.ParseEvent(string(r))
		if err != nil {
			return nil, fmt.Errorf("popup character %q: %w", r, err)
		}

		e := layout.Entry{Weight: 100 / float64(cols), NewRow: i%cols == 0}
		e.Key.Events[model.InteractionClick] = ev
		entries = append(entries, e)
	}

	return layout.Compute(entries, p)
}

// buildNamed lays out a sub-keyboard of the document sized so that each column is as
// wide as the source key.
func (c *Controller) buildNamed(k *model.Key) (*layout.Result, error) {
	if c.doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPopup, k.Popup)
	}

	def, ok := c.doc.Keyboard(k.Popup)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPopup, k.Popup)
	}

	cols := def.Columns
	if cols <= 0 {
		for _, row := range def.Rows {
			cols = max(cols, len(row.Keys))
		}
	}

	if cols == 0 {
		return nil, ErrEmptyPopup
	}

	p := layout.ParamsFor(def, 0, 0, false)
	width := cols * (k.W + p.HorizontalGap)

	height := def.KeyboardHeight
	if height <= 0 {
		height = len(def.Rows)*(k.H+p.VerticalGap) + p.VerticalGap
	}

	return layout.Build(c.doc, k.Popup, width, height, false)
}

// popupListener forwards popup dispatches to the outer listener. Key dispatches pick up
// the source keyboard's modifiers, which are refreshed afterwards.
type popupListener struct {
	c *Controller
	p *openPopup
}

func (l *popupListener) OnPress(code model.KeyCode) {
	l.c.listener.OnPress(code)
}

func (l *popupListener) OnRelease(code model.KeyCode) {
	l.c.listener.OnRelease(code)
}

func (l *popupListener) OnKey(code model.KeyCode, mask model.Modifier) {
	l.c.listener.OnKey(code, mask|l.p.source.ModifierState())
	l.done()
}

func (l *popupListener) OnEvent(ev *model.Event) {
	l.c.listener.OnEvent(ev)
	l.done()
}

func (l *popupListener) OnText(text string) {
	l.c.listener.OnText(text)
	l.done()
}

func (l *popupListener) OnPreview(key int, label string) {
	if pl, ok := l.c.listener.(gesture.PreviewListener); ok {
		pl.OnPreview(key, label)
	}
}

func (l *popupListener) done() {
	l.p.dispatched = true
	l.p.source.RefreshModifier()
}
