package db_test

import (
	"testing"
	"time"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopListener struct{}

func (nopListener) OnPress(model.KeyCode)               {}
func (nopListener) OnRelease(model.KeyCode)             {}
func (nopListener) OnKey(model.KeyCode, model.Modifier) {}
func (nopListener) OnEvent(*model.Event)                {}
func (nopListener) OnText(string)                       {}

func newJournal(t *testing.T, storage db.Storage) (*db.Journal, *db.ComboTracker, *db.NeighborCounter) {
	t.Helper()

	combos, err := db.NewComboTrackerFromDB(storage)
	require.NoError(t, err)

	neighbors, err := db.NewNeighborCounterFromDB(storage)
	require.NoError(t, err)

	return db.NewJournal(storage, func() time.Time { return start }, combos, neighbors), combos, neighbors
}

func TestJournal(t *testing.T) {
	storage := memoryStorage(t)
	journal, combos, neighbors := newJournal(t, storage)

	a := &model.Event{Code: model.KeyCode(29), Label: "a"}
	b := &model.Event{Code: model.KeyCode(30), Label: "b", Preview: "B"}

	journal.OnDispatch(gesture.Dispatch{Keyboard: "main", Key: 0, Event: a, Mask: model.ModShift})
	journal.OnDispatch(gesture.Dispatch{Keyboard: "main", Key: 1, Event: b})
	journal.OnBatch([]gesture.Dispatch{
		{Keyboard: "main", Key: 1, Event: b},
		{Keyboard: "main", Key: 0, Event: a},
	})

	t.Run("dispatches are stored", func(t *testing.T) {
		items, err := storage.GatherAll("main")
		require.NoError(t, err)
		assert.Equal(t, []db.KeyCount{
			{Keyboard: "main", Key: 0, Label: "a", Count: 1},
			{Keyboard: "main", Key: 1, Label: "B", Count: 1},
		}, items)

		iterator, err := storage.AllIterator()
		require.NoError(t, err)

		for r := range iterator {
			if r.Key == 0 {
				assert.Equal(t, model.ModShift, r.Mask)
				assert.Equal(t, model.KeyCode(29), r.Code)
				assert.True(t, start.Equal(r.Timestamp))
			}
		}
	})

	t.Run("chords are stored in press order", func(t *testing.T) {
		iterator, err := storage.ChordIterator()
		require.NoError(t, err)

		for c := range iterator {
			assert.Equal(t, []int{1, 0}, c.Keys)
		}
	})

	t.Run("trackers are fed", func(t *testing.T) {
		assert.Equal(t, []db.Combo{{Keyboard: "main", Keys: []int{0, 1}, Pressed: 1}},
			combos.GatherCombos("main", 0))
		assert.Equal(t, []db.Combo{{Keyboard: "main", Keys: []int{0, 1}, Pressed: 1}},
			neighbors.GatherCombos("main", 1))
	})

	t.Run("empty batch is ignored", func(t *testing.T) {
		journal.OnBatch(nil)

		assert.Len(t, combos.GatherCombos("main", 0), 1)
	})
}

func TestJournalObservesSession(t *testing.T) {
	doc, err := layout.LoadFile("data/qwerty.yaml")
	require.NoError(t, err)

	sched := loop.NewManual(start)
	s, err := session.New(doc, session.Options{
		Width:     1000,
		Gesture:   gesture.DefaultConfig(),
		Keyboard:  keyboard.DefaultOptions(),
		Scheduler: sched,
		Listener:  nopListener{},
	})
	require.NoError(t, err)

	storage := memoryStorage(t)
	journal, _, neighbors := newJournal(t, storage)
	s.Observe(journal)

	tap := func(key, ms int) {
		x, y := s.Keyboard().Key(key).Center()
		down := start.Add(time.Duration(ms) * time.Millisecond)
		up := down.Add(30 * time.Millisecond)

		sched.AdvanceTo(down)
		s.HandlePointer(model.PointerEvent{Action: model.ActionDown, X: x, Y: y, Time: down})
		sched.AdvanceTo(up)
		s.HandlePointer(model.PointerEvent{Action: model.ActionUp, X: x, Y: y, Time: up})
	}

	tap(0, 0)
	tap(0, 200)
	tap(1, 400)

	items, err := storage.GatherAll("qwerty")
	require.NoError(t, err)
	assert.Equal(t, []db.KeyCount{
		{Keyboard: "qwerty", Key: 0, Label: "q", Count: 2},
		{Keyboard: "qwerty", Key: 1, Label: "w", Count: 1},
	}, items)

	assert.Equal(t, []db.Combo{{Keyboard: "qwerty", Keys: []int{0, 1}, Pressed: 1}},
		neighbors.GatherCombos("qwerty", 1))
}
