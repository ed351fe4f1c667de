package db_test

import (
	"cmp"
	"slices"
	"testing"

	"github.com/dasdy/softkeys/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortCombos(result []db.Combo) {
	slices.SortFunc(result, func(a, b db.Combo) int {
		baseCmp := cmp.Or(
			-cmp.Compare(a.Pressed, b.Pressed),
			cmp.Compare(len(a.Keys), len(b.Keys)),
		)
		if baseCmp != 0 {
			return baseCmp
		}

		return slices.Compare(a.Keys, b.Keys)
	})
}

func TestGatherCombos(t *testing.T) {
	t.Run("returns empty combos by default", func(t *testing.T) {
		tracker, err := db.NewComboTrackerFromDB(memoryStorage(t))
		require.NoError(t, err)

		assert.Empty(t, tracker.GatherCombos("main", 1))
	})

	t.Run("counts chords from history regardless of order", func(t *testing.T) {
		storage := memoryStorage(t)

		for _, keys := range [][]int{{1, 2}, {2, 1}, {1, 2, 3}, {3}} {
			require.NoError(t, storage.StoreChord(&db.Chord{Keyboard: "main", Keys: keys, Timestamp: start}))
		}

		require.NoError(t, storage.StoreChord(&db.Chord{Keyboard: "other", Keys: []int{1, 2}, Timestamp: start}))

		tracker, err := db.NewComboTrackerFromDB(storage)
		require.NoError(t, err)

		items := tracker.GatherCombos("main", 1)
		sortCombos(items)

		assert.Equal(t, []db.Combo{
			{Keyboard: "main", Keys: []int{1, 2}, Pressed: 2},
			{Keyboard: "main", Keys: []int{1, 2, 3}, Pressed: 1},
		}, items)

		assert.Equal(t, []db.Combo{
			{Keyboard: "main", Keys: []int{1, 2, 3}, Pressed: 1},
		}, tracker.GatherCombos("main", 3))

		assert.Equal(t, []db.Combo{
			{Keyboard: "other", Keys: []int{1, 2}, Pressed: 1},
		}, tracker.GatherCombos("other", 2))
	})

	t.Run("live chords add to history", func(t *testing.T) {
		tracker, err := db.NewComboTrackerFromDB(memoryStorage(t))
		require.NoError(t, err)

		tracker.Handle("main", []int{4, 7}, false)
		tracker.Handle("main", []int{7, 4}, true)
		tracker.Handle("main", []int{4}, false)

		assert.Equal(t, []db.Combo{
			{Keyboard: "main", Keys: []int{4, 7}, Pressed: 2},
		}, tracker.GatherCombos("main", 4))
	})
}

func TestComboKeyID(t *testing.T) {
	cases := []struct {
		name string
		keys []int
		want db.ComboBitmask
	}{
		{"single low key", []int{0}, db.ComboBitmask{Low: 1}},
		{"order does not matter", []int{3, 1}, db.ComboBitmask{Low: 0b1010}},
		{"high word", []int{1, 64}, db.ComboBitmask{High: 1, Low: 2}},
		{"top bits", []int{63, 127}, db.ComboBitmask{High: 1 << 63, Low: 1 << 63}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, db.ComboKeyID(c.keys))
		})
	}
}
