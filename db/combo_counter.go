package db

import (
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/schollz/progressbar/v3"
)

type comboID struct {
	keyboard string
	mask     ComboBitmask
}

// ComboTracker counts chords, keyed by the set of keys regardless of press order.
type ComboTracker struct {
	comboCounts map[comboID]*Combo
	minComboLen int
	stateLock   sync.RWMutex
}

func newComboTracker(minComboLen int) *ComboTracker {
	return &ComboTracker{
		comboCounts: make(map[comboID]*Combo),
		minComboLen: minComboLen,

		stateLock: sync.RWMutex{},
	}
}

// NewComboTrackerFromDB replays the journaled chords before returning.
func NewComboTrackerFromDB(storage Storage) (*ComboTracker, error) {
	tracker := newComboTracker(2)

	iterator, err := storage.ChordIterator()
	if err != nil {
		return nil, err
	}

	tracker.initComboCounter(iterator)

	return tracker, nil
}

func (c *ComboTracker) Handle(keyboard string, keys []int, verbose bool) {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()

	if len(keys) < c.minComboLen {
		return
	}

	id := comboID{keyboard: keyboard, mask: ComboKeyID(keys)}

	v, ok := c.comboCounts[id]
	if !ok {
		sorted := slices.Clone(keys)
		slices.Sort(sorted)

		v = &Combo{Keyboard: keyboard, Keys: slices.Compact(sorted), Pressed: 1}
		c.comboCounts[id] = v
	} else {
		v.Pressed++
	}

	if verbose {
		slog.InfoContext(logCtx, "combo counting",
			"keyboard", keyboard,
			"keyCount", len(keys),
			"pressed", v.Pressed,
			"keys", keys)
	}
}

// GatherCombos returns every combo of keyboard that contains key.
func (c *ComboTracker) GatherCombos(keyboard string, key int) []Combo {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()

	result := make([]Combo, 0)

	for id, v := range c.comboCounts {
		if id.keyboard == keyboard && slices.Contains(v.Keys, key) {
			result = append(result, *v)
		}
	}

	return result
}

func (c *ComboTracker) initComboCounter(items iter.Seq[Chord]) {
	bar := progressbar.Default(-1, "Scanning history...")
	for item := range items {
		err := bar.Add(1)
		if err != nil {
			slog.ErrorContext(logCtx, "could not update progress bar", "error", err)
		}

		c.Handle(item.Keyboard, item.Keys, false)
	}

	err := bar.Finish()
	if err != nil {
		slog.ErrorContext(logCtx, "could not finish progress bar", "error", err)
	}
}

type ComboBitmask struct {
	High uint64
	Low  uint64
}

// ComboKeyID represents a combo by a bitmask with one bit per key index. Keyboards are
// assumed to have at most 128 keys; larger indices wrap into the high word.
func ComboKeyID(keys []int) ComboBitmask {
	result := ComboBitmask{}

	for _, key := range keys {
		if key < 64 {
			result.Low |= (1 << key)
		} else {
			position := key % 64
			result.High |= (1 << position)
		}
	}

	return result
}
