package db

import (
	"log/slog"
	"time"

	"github.com/dasdy/softkeys/gesture"
)

// Journal stores dispatches and feeds the trackers. It is attached to a resolver with
// Observe and runs on the input loop.
type Journal struct {
	storage Storage
	// combos sees chord batches, sequence sees every dispatch. Either may be nil.
	combos   Tracker
	sequence Tracker
	now      func() time.Time
	Verbose  bool
}

// NewJournal writes to storage. now stamps records; nil uses the wall clock.
func NewJournal(storage Storage, now func() time.Time, combos, sequence Tracker) *Journal {
	if now == nil {
		now = time.Now
	}

	return &Journal{storage: storage, combos: combos, sequence: sequence, now: now}
}

func (j *Journal) OnDispatch(d gesture.Dispatch) {
	r := &Record{
		Keyboard:    d.Keyboard,
		Key:         d.Key,
		Interaction: d.Interaction,
		Mask:        d.Mask,
		Timestamp:   j.now(),
	}

	if d.Event != nil {
		r.Label = d.Event.PreviewLabel()
		r.Code = d.Event.Code
	}

	if err := j.storage.Store(r); err != nil {
		slog.ErrorContext(logCtx, "Could not store dispatch", "key", d.Key, "err", err)
	}

	if j.sequence != nil {
		j.sequence.Handle(d.Keyboard, []int{d.Key}, j.Verbose)
	}
}

func (j *Journal) OnBatch(batch []gesture.Dispatch) {
	if len(batch) == 0 {
		return
	}

	c := &Chord{Keyboard: batch[0].Keyboard, Keys: make([]int, len(batch)), Timestamp: j.now()}
	for i, d := range batch {
		c.Keys[i] = d.Key
	}

	if err := j.storage.StoreChord(c); err != nil {
		slog.ErrorContext(logCtx, "Could not store chord", "keys", c.Keys, "err", err)
	}

	if j.combos != nil {
		j.combos.Handle(c.Keyboard, c.Keys, j.Verbose)
	}
}
