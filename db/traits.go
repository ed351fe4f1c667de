package db

import (
	"iter"
)

// Combo is a set of keys of one keyboard and how often they were dispatched together.
// For neighbor counts Keys holds the previous key followed by the current one.
type Combo struct {
	Keyboard string
	Keys     []int
	Pressed  int
}

// Tracker counts key groups seen in the dispatch stream.
type Tracker interface {
	Handle(keyboard string, keys []int, verbose bool)
	GatherCombos(keyboard string, key int) []Combo
}

type Storage interface {
	Store(r *Record) error
	StoreChord(c *Chord) error
	GatherAll(keyboard string) ([]KeyCount, error)
	Keyboards() ([]string, error)
	AllIterator() (iter.Seq[Record], error)
	ChordIterator() (iter.Seq[Chord], error)
	Close()
}
