package layout_test

import (
	"fmt"
	"testing"

	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(label string, weight float64) layout.Entry {
	ev, err := model.ParseEvent(label)
	if err != nil {
		panic(err)
	}

	return layout.Entry{Weight: weight, Key: model.Key{Events: [model.InteractionCount]*model.Event{ev}}}
}

func row(weights ...float64) []layout.Entry {
	entries := make([]layout.Entry, 0, len(weights))

	for i, w := range weights {
		e := key(string(rune('a'+i%26)), w)
		e.NewRow = i == 0
		entries = append(entries, e)
	}

	return entries
}

func assertInside(t *testing.T, res *layout.Result) {
	t.Helper()

	for _, k := range res.Keys {
		assert.GreaterOrEqual(t, k.X, 0, "key %d", k.Index)
		assert.GreaterOrEqual(t, k.Y, 0, "key %d", k.Index)
		assert.LessOrEqual(t, k.Right(), res.Width, "key %d", k.Index)
		assert.LessOrEqual(t, k.Bottom(), res.Height, "key %d", k.Index)
	}
}

func sumHeights(c layout.Computation) int {
	total := c.VerticalGap * (len(c.RowHeights) + 1)
	for _, h := range c.RowHeights {
		total += h
	}

	return total
}

func TestComputeSimpleRow(t *testing.T) {
	p := layout.DefaultParams(1000, 100)

	res, err := layout.Compute(row(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), p)
	require.NoError(t, err)
	require.NoError(t, res.Warnings)
	require.Len(t, res.Keys, 10)

	for i, k := range res.Keys {
		assert.Equal(t, 98, k.W, "key %d width", i)
		assert.Equal(t, 96, k.H, "key %d height", i)
		assert.Equal(t, 2, k.Y)
		assert.Equal(t, i, k.Column)
	}

	assert.Equal(t, []int{96}, res.Computation.RowHeights)
	assert.Equal(t, 2, res.Computation.VerticalGap)
	assert.InDelta(t, 10.0, res.Computation.Unit, 1e-9)
	assert.Zero(t, res.Computation.SplitMultiplier)
	assertInside(t, res)
}

func TestComputeSumInvariant(t *testing.T) {
	cases := []struct {
		height  int
		gap     int
		heights []float64
		auto    int
	}{
		{100, 2, []float64{0}, -1},
		{240, 4, []float64{50, 50, 50, 50}, -1},
		{241, 3, []float64{40, 55, 0, 61}, 0},
		{199, 5, []float64{10, 90}, 1},
		{333, 1, []float64{33.3, 33.3, 33.3}, -2},
		{180, 7, []float64{0, 0, 0, 0, 0}, 2},
		{57, 0, []float64{13, 17, 19}, -1},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%dpx %d rows", c.height, len(c.heights)), func(t *testing.T) {
			var entries []layout.Entry

			for _, h := range c.heights {
				r := row(20, 20, 20, 20, 20)
				r[0].Height = h
				entries = append(entries, r...)
			}

			p := layout.DefaultParams(720, c.height)
			p.VerticalGap = c.gap
			p.AutoHeightIndex = c.auto

			res, err := layout.Compute(entries, p)
			require.NoError(t, err)
			require.Len(t, res.Computation.RowHeights, len(c.heights))

			assert.Equal(t, c.height, sumHeights(res.Computation))
			assertInside(t, res)
		})
	}
}

func TestComputeAutoHeightRow(t *testing.T) {
	var entries []layout.Entry

	for range 3 {
		r := row(50, 50)
		r[0].Height = 50
		entries = append(entries, r...)
	}

	p := layout.DefaultParams(500, 200)
	p.VerticalGap = 0

	res, err := layout.Compute(entries, p)
	require.NoError(t, err)

	assert.Equal(t, []int{66, 66, 68}, res.Computation.RowHeights)
}

func TestComputeWeightMonotonicity(t *testing.T) {
	p := layout.DefaultParams(1080, 200)

	res, err := layout.Compute(row(5, 7.5, 10, 12.5, 15, 20, 30), p)
	require.NoError(t, err)
	require.Len(t, res.Keys, 7)

	for i := 1; i < len(res.Keys)-1; i++ {
		assert.GreaterOrEqual(t, res.Keys[i].W, res.Keys[i-1].W, "key %d", i)
	}
}

func TestComputeWrapping(t *testing.T) {
	t.Run("wraps on max columns", func(t *testing.T) {
		p := layout.DefaultParams(1000, 200)
		p.MaxColumns = 4

		res, err := layout.Compute(row(10, 10, 10, 10, 10, 10), p)
		require.NoError(t, err)

		rows := make([]int, 0, len(res.Keys))
		for _, k := range res.Keys {
			rows = append(rows, k.Row)
		}

		assert.Equal(t, []int{0, 0, 0, 0, 1, 1}, rows)
		assert.Equal(t, 0, res.Keys[4].Column)
	})

	t.Run("wraps on overflow", func(t *testing.T) {
		p := layout.DefaultParams(1000, 200)

		res, err := layout.Compute(row(40, 40, 40), p)
		require.NoError(t, err)

		assert.Equal(t, 0, res.Keys[1].Row)
		assert.Equal(t, 1, res.Keys[2].Row)
		assert.Equal(t, []float64{80, 40}, res.Computation.RowWeights)
	})

	t.Run("honours explicit breaks", func(t *testing.T) {
		p := layout.DefaultParams(1000, 200)

		entries := append(row(10, 10), row(10)...)

		res, err := layout.Compute(entries, p)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Keys[2].Row)
	})
}

func TestComputeSpacers(t *testing.T) {
	p := layout.DefaultParams(1000, 100)

	entries := row(10, 10)
	entries = append(entries[:1], append([]layout.Entry{{Weight: 5}}, entries[1:]...)...)

	res, err := layout.Compute(entries, p)
	require.NoError(t, err)
	require.Len(t, res.Keys, 2, "spacers produce no key")

	assert.Equal(t, 1, res.Keys[0].X)
	assert.Equal(t, 151, res.Keys[1].X)
	assert.Equal(t, 1, res.Keys[1].Column)
}

func TestComputeSplit(t *testing.T) {
	t.Run("inserts a spacer at the middle", func(t *testing.T) {
		p := layout.DefaultParams(1200, 100)
		p.Split = true
		p.SplitPercent = 20

		res, err := layout.Compute(row(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), p)
		require.NoError(t, err)
		require.Len(t, res.Keys, 10)

		assert.InDelta(t, 0.2, res.Computation.SplitMultiplier, 1e-9)
		assert.InDelta(t, 10.0, res.Computation.Unit, 1e-9)

		// 100 weight * 0.2 * 10px
		gap := res.Keys[5].X - res.Keys[4].Right()
		assert.Equal(t, 2+200, gap)

		for i := 1; i < 5; i++ {
			assert.Equal(t, 2, res.Keys[i].X-res.Keys[i-1].Right())
		}

		assertInside(t, res)
	})

	t.Run("widens a long key straddling the middle", func(t *testing.T) {
		p := layout.DefaultParams(1200, 100)
		p.Split = true
		p.SplitPercent = 20

		res, err := layout.Compute(row(10, 10, 10, 40, 10, 10, 10), p)
		require.NoError(t, err)

		space := res.Keys[3]
		assert.Equal(t, 400+200-2, space.W)
		assert.Equal(t, 2, res.Keys[4].X-space.Right())
	})

	t.Run("long key threshold is configurable", func(t *testing.T) {
		p := layout.DefaultParams(1200, 100)
		p.Split = true
		p.SplitPercent = 20
		p.LongKeyWeight = 50

		res, err := layout.Compute(row(10, 10, 10, 40, 10, 10, 10), p)
		require.NoError(t, err)

		assert.Equal(t, 398, res.Keys[3].W)
		assert.Equal(t, 202, res.Keys[3].X-res.Keys[2].Right())
	})
}

func TestComputeStretchesLastKey(t *testing.T) {
	p := layout.DefaultParams(1000, 100)

	res, err := layout.Compute(row(33.2, 33.2, 33.2), p)
	require.NoError(t, err)

	last := res.Keys[2]
	assert.Equal(t, 330+4, last.W)
	assert.Equal(t, 999, last.Right())

	t.Run("large remainders are kept", func(t *testing.T) {
		res, err := layout.Compute(row(30, 30, 30), p)
		require.NoError(t, err)

		assert.Equal(t, 298, res.Keys[2].W)
	})
}

func TestComputeSkipsOverflowingRow(t *testing.T) {
	p := layout.DefaultParams(1000, 300)

	entries := row(10, 10)
	entries = append(entries, row(150, 10)...)
	entries = append(entries, row(20)...)

	res, err := layout.Compute(entries, p)
	require.NoError(t, err)

	require.ErrorIs(t, res.Warnings, layout.ErrRowOverflow)
	require.Len(t, res.Keys, 3)
	assert.Equal(t, 1, res.Keys[2].Row)
	assert.Len(t, res.Computation.RowHeights, 2)
	assert.Equal(t, 300, sumHeights(res.Computation))
}

func TestComputeEdges(t *testing.T) {
	p := layout.DefaultParams(1000, 300)

	entries := row(10, 10, 10)
	entries = append(entries, row(10, 10)...)
	entries = append(entries, row(10, 10, 10, 10)...)

	res, err := layout.Compute(entries, p)
	require.NoError(t, err)

	edges := make([]model.EdgeFlags, 0, len(res.Keys))
	for _, k := range res.Keys {
		edges = append(edges, k.Edges)
	}

	assert.Equal(t, []model.EdgeFlags{
		model.EdgeTop | model.EdgeLeft, model.EdgeTop, model.EdgeTop | model.EdgeRight,
		model.EdgeLeft, model.EdgeRight,
		model.EdgeBottom | model.EdgeLeft, model.EdgeBottom, model.EdgeBottom, model.EdgeBottom | model.EdgeRight,
	}, edges)
}

func TestComputeInvalidParams(t *testing.T) {
	_, err := layout.Compute(row(10), layout.DefaultParams(0, 100))
	require.ErrorIs(t, err, layout.ErrInvalidParams)

	res, err := layout.Compute(nil, layout.DefaultParams(100, 100))
	require.NoError(t, err)
	assert.Empty(t, res.Keys)
}
