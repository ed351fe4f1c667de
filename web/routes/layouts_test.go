package routes_test

import (
	"strings"
	"testing"

	"github.com/dasdy/softkeys/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayouts(t *testing.T) {
	l := testLayoutsSource(t)

	assert.Equal(t, []string{"main", "symbols"}, l.Names())
	assert.Equal(t, "main", l.DefaultName())

	first, err := l.Keyboard("main")
	require.NoError(t, err)
	assert.Equal(t, 400, first.Width())

	again, err := l.Keyboard("main")
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = l.Keyboard("dvorak")
	require.ErrorIs(t, err, layout.ErrUnknownKeyboard)

	t.Run("new document drops built keyboards", func(t *testing.T) {
		doc, err := layout.Parse(strings.NewReader(`
keyboards:
  main:
    rows:
      - keys:
          - {click: x}
`))
		require.NoError(t, err)

		l.SetDocument(doc)

		kb, err := l.Keyboard("main")
		require.NoError(t, err)
		assert.NotSame(t, first, kb)
		assert.Equal(t, 1, kb.Len())
		assert.Equal(t, []string{"main"}, l.Names())
	})
}
