package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsafaglobal/api/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.AnalyticsStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events, err := store.NewEventStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	analyticsStore := store.NewAnalyticsStore(events)
	analyticsStore.Loc = time.UTC
	h := NewAnalyticsHandlers(analyticsStore)

	r := gin.New()
	r.POST("/api/analytics/track", h.TrackEvent)
	r.GET("/api/analytics/summary", h.GetSummary)
	r.POST("/api/analytics/seed", h.SeedDemoData)
	return r, analyticsStore
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackEvent(t *testing.T) {
	t.Run("rejects a payload without type and stores nothing", func(t *testing.T) {
		r, s := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/track", `{"path":"/x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"type is required"}`, w.Body.String())

		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("rejects an unknown event type", func(t *testing.T) {
		r, s := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/track", `{"type":"hover","path":"/x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("rejects a non-JSON body", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/track", `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accepts a pageview with no content in the response", func(t *testing.T) {
		r, s := newTestRouter(t)
		before := time.Now().UTC()

		w := doJSON(r, http.MethodPost, "/api/analytics/track",
			`{"type":"pageview","path":"/divisions","meta":{"sessionId":"s1","device":"mobile","loadTimeMs":1200}}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 1)
		evt := events[0]
		assert.Equal(t, "pageview", evt.Type)
		require.NotNil(t, evt.PagePath)
		assert.Equal(t, "/divisions", *evt.PagePath)
		require.NotNil(t, evt.Meta.SessionID)
		assert.Equal(t, "s1", *evt.Meta.SessionID)
		require.NotNil(t, evt.Meta.LoadTimeMs)
		assert.Equal(t, 1200.0, *evt.Meta.LoadTimeMs)
		assert.False(t, evt.Timestamp.Before(before.Truncate(time.Second)))
	})

	t.Run("assigns the timestamp on the server", func(t *testing.T) {
		r, s := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/track",
			`{"type":"click","path":"/","element":"BUTTON","timestamp":"1999-01-01T00:00:00Z"}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Greater(t, events[0].Timestamp.Year(), 1999)
	})

	t.Run("nulls out malformed optional fields instead of failing", func(t *testing.T) {
		r, s := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/track",
			`{"type":"pageview","path":12,"meta":{"width":"wide","device":"smartwatch","sessionId":"s1"}}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Nil(t, events[0].PagePath)
		assert.Nil(t, events[0].Meta.Width)
		assert.Nil(t, events[0].Meta.Device)
		require.NotNil(t, events[0].Meta.SessionID)
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("returns the summary shape with empty arrays on an empty store", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodGet, "/api/analytics/summary", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "day", body["granularity"])
		assert.Nil(t, body["from"])
		assert.Nil(t, body["to"])
		assert.Equal(t, []interface{}{}, body["timeline"])
		assert.Equal(t, []interface{}{}, body["previousTimeline"])
		assert.Equal(t, []interface{}{}, body["topClicks"])
		assert.Equal(t, 0.0, body["bounceRate"])
	})

	t.Run("aggregates tracked events", func(t *testing.T) {
		r, _ := newTestRouter(t)
		doJSON(r, http.MethodPost, "/api/analytics/track", `{"type":"pageview","path":"/","meta":{"sessionId":"s1"}}`)
		doJSON(r, http.MethodPost, "/api/analytics/track", `{"type":"click","path":"/","element":"BUTTON","text":"Get Quote","meta":{"sessionId":"s1"}}`)

		w := doJSON(r, http.MethodGet, "/api/analytics/summary?granularity=month", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "month", body["granularity"])
		assert.Equal(t, 1.0, body["totalPageviews"])
		assert.Equal(t, 1.0, body["totalClicks"])
		assert.Equal(t, 1.0, body["totalSessions"])
	})

	t.Run("accepts date-only bounds", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodGet, "/api/analytics/summary?from=2024-03-01&to=2024-03-31", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a malformed bound", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodGet, "/api/analytics/summary?from=yesterday", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects from after to", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodGet, "/api/analytics/summary?from=2024-04-01&to=2024-03-01", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSeedDemoDataEndpoint(t *testing.T) {
	t.Run("seeds with defaults clamped", func(t *testing.T) {
		r, s := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/seed?days=2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"days":2,"reset":false}`, w.Body.String())

		events, err := s.Events.ReadAll()
		require.NoError(t, err)
		assert.NotEmpty(t, events)
	})

	t.Run("reports a reset", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/seed?days=1&reset=1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"days":1,"reset":true}`, w.Body.String())
	})

	t.Run("rejects a non-numeric day count", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/analytics/seed?days=soon", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
