package db

import (
	"fmt"
	"log/slog"
)

// Merge copies every dispatch and chord of inputs into output.
func Merge(inputs []Storage, output Storage) error {
	for i, input := range inputs {
		records, err := input.AllIterator()
		if err != nil {
			return fmt.Errorf("could not read input %d: %w", i, err)
		}

		count := 0

		for r := range records {
			if err := output.Store(&r); err != nil {
				return fmt.Errorf("could not copy dispatch: %w", err)
			}

			count++
		}

		chords, err := input.ChordIterator()
		if err != nil {
			return fmt.Errorf("could not read chords of input %d: %w", i, err)
		}

		chordCount := 0

		for c := range chords {
			if err := output.StoreChord(&c); err != nil {
				return fmt.Errorf("could not copy chord: %w", err)
			}

			chordCount++
		}

		slog.InfoContext(logCtx, "Merged input", "index", i, "dispatches", count, "chords", chordCount)
	}

	return nil
}
