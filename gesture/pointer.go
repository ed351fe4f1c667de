package gesture

import (
	"time"

	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
)

// pointer is the state of one touch sequence, from down to up or cancel.
type pointer struct {
	id  int
	seq int

	downTime     time.Time
	downX, downY float64
	lastX, lastY float64

	downKey int
	key     int

	pressCode    model.KeyCode
	pressed      bool
	heldModifier int

	velocity *velocityTracker

	longPressTimer loop.Timer
	repeatTimer    loop.Timer

	longPressed bool
	// consumed is set once a long-click or popup took over the gesture.
	consumed bool
	repeated bool
	inPopup  bool
	// chorded is set when other keys were dispatched while this pointer was down.
	chorded bool
}

func newPointer(ev model.PointerEvent, key, seq int, horizon time.Duration) *pointer {
	p := &pointer{
		id:           ev.ID,
		seq:          seq,
		downTime:     ev.Time,
		downX:        ev.X,
		downY:        ev.Y,
		lastX:        ev.X,
		lastY:        ev.Y,
		downKey:      key,
		key:          key,
		heldModifier: keyboard.NotAKey,
		velocity:     newVelocityTracker(horizon),
	}
	p.velocity.add(ev.X, ev.Y, ev.Time)

	return p
}

// debouncedKey snaps a release that lands on another key shortly after the down back to
// the key the pointer went down on.
func (p *pointer) debouncedKey(at time.Time, window time.Duration) int {
	if p.downKey != keyboard.NotAKey && p.key != p.downKey && at.Sub(p.downTime) < window {
		return p.downKey
	}

	return p.key
}

func (p *pointer) track(ev model.PointerEvent) {
	p.lastX, p.lastY = ev.X, ev.Y
	p.velocity.add(ev.X, ev.Y, ev.Time)
}

func (p *pointer) displacement() (float64, float64) {
	return p.lastX - p.downX, p.lastY - p.downY
}

func (p *pointer) cancelLongPress() {
	if p.longPressTimer != nil {
		p.longPressTimer.Cancel()
		p.longPressTimer = nil
	}
}

func (p *pointer) cancelRepeat() {
	if p.repeatTimer != nil {
		p.repeatTimer.Cancel()
		p.repeatTimer = nil
	}
}

func (p *pointer) cancelTimers() {
	p.cancelLongPress()
	p.cancelRepeat()
}
