package gesture

import (
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/model"
)

// Listener receives resolved input. All methods are called on the input loop.
type Listener interface {
	// OnPress and OnRelease bracket a touch on a key; hosts use them for feedback.
	OnPress(code model.KeyCode)
	OnRelease(code model.KeyCode)
	// OnKey delivers a key code with the modifier mask active when it was resolved.
	OnKey(code model.KeyCode, mask model.Modifier)
	// OnEvent delivers modifier, functional, commit and keyboard-select events.
	OnEvent(ev *model.Event)
	OnText(text string)
}

// PreviewListener is implemented by listeners that show a preview bubble.
type PreviewListener interface {
	OnPreview(key int, label string)
}

// Dispatch is one resolved key action.
type Dispatch struct {
	Pointer int
	// Keyboard names the keyboard Key indexes into.
	Keyboard    string
	Key         int
	Interaction model.InteractionType
	Event       *model.Event
	// Mask is the modifier state captured when the action was resolved.
	Mask model.Modifier

	seq int
}

// Observer sees every dispatch and every chord batch. It is used for journaling.
type Observer interface {
	OnDispatch(d Dispatch)
	// OnBatch receives the dispatches of one chord in pointer-down order.
	OnBatch(batch []Dispatch)
}

// PopupOpener shows mini keyboards for long-pressed keys.
type PopupOpener interface {
	// Open shows the popup for key on kb anchored at the touch point. It reports false
	// when the key has no usable popup.
	Open(kb *keyboard.Keyboard, key int, x, y float64) bool
	// Forward routes a pointer event of the gesture that opened the popup.
	Forward(ev model.PointerEvent)
	IsOpen() bool
	Dismiss()
}
