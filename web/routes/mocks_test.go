package routes_test

import (
	"iter"
	"strings"
	"testing"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/web/routes"
	"github.com/stretchr/testify/require"
)

// Key indices of the "main" test keyboard.
const (
	KeyA = iota
	KeyB
	KeyC
	KeyD
)

const testLayouts = `
default: main
keyboards:
  main:
    width: 25
    rows:
      - keys:
          - {click: a}
          - {click: b}
          - {click: c}
          - {click: d}
  symbols:
    width: 50
    rows:
      - keys:
          - {click: "1"}
          - {click: "2"}
`

// SimpleStorageMock is a simple manual mock implementation of the Storage interface
type SimpleStorageMock struct {
	ReturnStats  []db.KeyCount
	ReturnError  error
	CallCount    int
	LastKeyboard string
}

func (m *SimpleStorageMock) GatherAll(keyboard string) ([]db.KeyCount, error) {
	m.CallCount++
	m.LastKeyboard = keyboard

	return m.ReturnStats, m.ReturnError
}

func (m *SimpleStorageMock) Keyboards() ([]string, error) {
	return nil, nil
}

func (m *SimpleStorageMock) AllIterator() (iter.Seq[db.Record], error) {
	return func(func(db.Record) bool) {}, nil
}

func (m *SimpleStorageMock) ChordIterator() (iter.Seq[db.Chord], error) {
	return func(func(db.Chord) bool) {}, nil
}

func (m *SimpleStorageMock) Close() {}

func (m *SimpleStorageMock) Store(*db.Record) error {
	return nil
}

func (m *SimpleStorageMock) StoreChord(*db.Chord) error {
	return nil
}

// TrackerMock is a simple mock implementation of the Tracker interface
type TrackerMock struct {
	ReturnCombos []db.Combo
	CallCount    int
	LastKeyboard string
	LastKey      int
}

func (m *TrackerMock) Handle(string, []int, bool) {}

func (m *TrackerMock) GatherCombos(keyboard string, key int) []db.Combo {
	m.CallCount++
	m.LastKeyboard = keyboard
	m.LastKey = key

	return m.ReturnCombos
}

type MockServerHandler struct {
	routes.ServerHandler
	MockStorage         *SimpleStorageMock
	MockComboTracker    *TrackerMock
	MockNeighborTracker *TrackerMock
}

func testLayoutsSource(t *testing.T) *routes.Layouts {
	t.Helper()

	doc, err := layout.Parse(strings.NewReader(testLayouts))
	require.NoError(t, err)

	return routes.NewLayouts(doc, 400, 100, keyboard.DefaultOptions())
}

func setupMockServerHandler(t *testing.T) MockServerHandler {
	t.Helper()

	h := MockServerHandler{
		MockStorage:         &SimpleStorageMock{},
		MockComboTracker:    &TrackerMock{},
		MockNeighborTracker: &TrackerMock{},
	}

	h.ServerHandler = routes.ServerHandler{
		Storage:         h.MockStorage,
		ComboTracker:    h.MockComboTracker,
		NeighborTracker: h.MockNeighborTracker,
		Layouts:         testLayoutsSource(t),
	}

	return h
}

func mainKeyboard(t *testing.T, h MockServerHandler) *keyboard.Keyboard {
	t.Helper()

	kb, err := h.Layouts.Keyboard("main")
	require.NoError(t, err)

	return kb
}
