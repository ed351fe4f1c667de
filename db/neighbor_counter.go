package db

import (
	"iter"
	"log/slog"
	"sync"
)

// NeighborCounter counts keys dispatched directly after each other on the same keyboard.
type NeighborCounter struct {
	lastKeyboard string
	lastKey      int
	counts       map[string]map[int]map[int]int
	stateLock    sync.RWMutex
}

func newNeighborCounter() *NeighborCounter {
	return &NeighborCounter{
		lastKey:   -1,
		counts:    make(map[string]map[int]map[int]int),
		stateLock: sync.RWMutex{},
	}
}

func NewNeighborCounterFromDB(storage Storage) (*NeighborCounter, error) {
	tracker := newNeighborCounter()

	iterator, err := storage.AllIterator()
	if err != nil {
		return nil, err
	}

	tracker.initCounter(iterator)

	return tracker, nil
}

// Handle records each of keys in order.
func (nc *NeighborCounter) Handle(keyboard string, keys []int, verbose bool) {
	nc.stateLock.Lock()
	defer nc.stateLock.Unlock()

	for _, k := range keys {
		nc.handleKey(keyboard, k, verbose)
	}
}

// GatherCombos returns the keys dispatched right before key, each as [previous, key].
func (nc *NeighborCounter) GatherCombos(keyboard string, key int) []Combo {
	nc.stateLock.RLock()
	defer nc.stateLock.RUnlock()

	result := make([]Combo, 0)

	for prev, next := range nc.counts[keyboard] {
		if n, ok := next[key]; ok {
			result = append(result, Combo{
				Keyboard: keyboard,
				Keys:     []int{prev, key},
				Pressed:  n,
			})
		}
	}

	return result
}

func (nc *NeighborCounter) initCounter(items iter.Seq[Record]) {
	nc.stateLock.Lock()
	defer nc.stateLock.Unlock()

	for item := range items {
		nc.handleKey(item.Keyboard, item.Key, false)
	}
}

func (nc *NeighborCounter) handleKey(keyboard string, key int, verbose bool) {
	// a keyboard switch breaks the sequence
	if keyboard != nc.lastKeyboard {
		nc.lastKeyboard = keyboard
		nc.lastKey = -1
	}

	if nc.lastKey >= 0 {
		byPrev, ok := nc.counts[keyboard]
		if !ok {
			byPrev = make(map[int]map[int]int)
			nc.counts[keyboard] = byPrev
		}

		if _, exists := byPrev[nc.lastKey]; !exists {
			byPrev[nc.lastKey] = make(map[int]int)
		}

		if verbose {
			slog.InfoContext(logCtx, "key press sequence",
				"keyboard", keyboard,
				"current", key,
				"previous", nc.lastKey)
		}

		byPrev[nc.lastKey][key]++
	}

	nc.lastKey = key
}
