package gesture_test

import (
	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/model"
)

// RecordingListener is a manual mock of gesture.Listener that keeps dispatches as short
// strings such as "key:a+shift" or "text:hello".
type RecordingListener struct {
	Calls    []string
	Pressed  []model.KeyCode
	Released []model.KeyCode
	Previews []string
}

func (l *RecordingListener) OnPress(code model.KeyCode) {
	l.Pressed = append(l.Pressed, code)
}

func (l *RecordingListener) OnRelease(code model.KeyCode) {
	l.Released = append(l.Released, code)
}

func (l *RecordingListener) OnKey(code model.KeyCode, mask model.Modifier) {
	s := "key:" + code.DefaultLabel()
	if mask != model.ModNone {
		s += "+" + mask.String()
	}

	l.Calls = append(l.Calls, s)
}

func (l *RecordingListener) OnEvent(ev *model.Event) {
	l.Calls = append(l.Calls, "event:"+ev.Label)
}

func (l *RecordingListener) OnText(text string) {
	l.Calls = append(l.Calls, "text:"+text)
}

func (l *RecordingListener) OnPreview(_ int, label string) {
	l.Previews = append(l.Previews, label)
}

// ObserverMock records dispatches and chord batches.
type ObserverMock struct {
	Dispatches []gesture.Dispatch
	Batches    [][]gesture.Dispatch
}

func (o *ObserverMock) OnDispatch(d gesture.Dispatch) {
	o.Dispatches = append(o.Dispatches, d)
}

func (o *ObserverMock) OnBatch(batch []gesture.Dispatch) {
	o.Batches = append(o.Batches, batch)
}

// PopupMock is a manual mock of gesture.PopupOpener.
type PopupMock struct {
	OpenResult bool
	Opened     []int
	Forwarded  []model.PointerAction
	Dismissed  int
	open       bool
}

func (m *PopupMock) Open(_ *keyboard.Keyboard, key int, _, _ float64) bool {
	m.Opened = append(m.Opened, key)
	m.open = m.OpenResult

	return m.OpenResult
}

func (m *PopupMock) Forward(ev model.PointerEvent) {
	m.Forwarded = append(m.Forwarded, ev.Action)

	if ev.Action == model.ActionUp {
		m.open = false
	}
}

func (m *PopupMock) IsOpen() bool {
	return m.open
}

func (m *PopupMock) Dismiss() {
	m.Dismissed++
	m.open = false
}
