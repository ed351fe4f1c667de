package routes_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/web/components"
	"github.com/dasdy/softkeys/web/routes"
	"github.com/stretchr/testify/assert"
)

func TestBuildStatsRenderContext(t *testing.T) {
	handler := setupMockServerHandler(t)
	kb := mainKeyboard(t, handler)

	tests := []struct {
		name           string
		inputStats     []db.KeyCount
		expectedMaxVal int
		expectedCounts []int
	}{
		{
			name:           "Empty stats",
			inputStats:     []db.KeyCount{},
			expectedMaxVal: 0,
			expectedCounts: []int{0, 0, 0, 0},
		},
		{
			name: "Some stats",
			inputStats: []db.KeyCount{
				{Key: KeyA, Count: 5},
				{Key: KeyC, Count: 10},
			},
			expectedMaxVal: 10,
			expectedCounts: []int{5, 0, 10, 0},
		},
		{
			name: "Key missing from layout",
			inputStats: []db.KeyCount{
				{Key: KeyA, Count: 5},
				{Key: 9, Count: 15},
			},
			expectedMaxVal: 5,
			expectedCounts: []int{5, 0, 0, 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := handler.BuildStatsRenderContext(kb, tc.inputStats)

			assert.Equal(t, 400, result.Width)
			assert.Equal(t, 100, result.Height)
			assert.Equal(t, "main", result.Keyboard)
			assert.Equal(t, []string{"main", "symbols"}, result.Keyboards)
			assert.Equal(t, tc.expectedMaxVal, result.MaxVal)
			assert.Equal(t, components.PageTypeStats, result.Page)

			counts := make([]int, len(result.Items))
			for i, item := range result.Items {
				counts[i] = item.Count
			}

			assert.Equal(t, tc.expectedCounts, counts)
			assert.Equal(t, "b", result.Items[KeyB].Label)
		})
	}
}

func TestStatsHandle(t *testing.T) {
	tests := []struct {
		name             string
		url              string
		storageReturns   []db.KeyCount
		storageError     error
		expectedStatus   int
		expectedCalls    int
		expectedKeyboard string
	}{
		{
			name:             "Success case",
			url:              "/",
			storageReturns:   []db.KeyCount{{Key: KeyA, Count: 5}},
			expectedStatus:   http.StatusOK,
			expectedCalls:    1,
			expectedKeyboard: "main",
		},
		{
			name:             "Other keyboard",
			url:              "/?keyboard=symbols",
			expectedStatus:   http.StatusOK,
			expectedCalls:    1,
			expectedKeyboard: "symbols",
		},
		{
			name:           "Unknown keyboard",
			url:            "/?keyboard=dvorak",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:             "Storage error",
			url:              "/",
			storageError:     errors.New("database error"),
			expectedStatus:   http.StatusInternalServerError,
			expectedCalls:    1,
			expectedKeyboard: "main",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := setupMockServerHandler(t)

			handler.MockStorage.ReturnStats = tc.storageReturns
			handler.MockStorage.ReturnError = tc.storageError

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			w := httptest.NewRecorder()

			handler.StatsHandle(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedCalls, handler.MockStorage.CallCount)
			assert.Equal(t, tc.expectedKeyboard, handler.MockStorage.LastKeyboard)
		})
	}

	t.Run("No journal", func(t *testing.T) {
		handler := routes.ServerHandler{Layouts: testLayoutsSource(t)}

		w := httptest.NewRecorder()
		handler.StatsHandle(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
