package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsafaglobal/api/models"
)

func newTestEventStore(t *testing.T) *EventStore {
	t.Helper()
	s, err := NewEventStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func pageviewAt(ts time.Time, sessionID string) models.Event {
	path := "/"
	return models.Event{
		Type:      models.EventTypePageview,
		PagePath:  &path,
		Meta:      models.EventMeta{SessionID: &sessionID},
		Timestamp: ts,
	}
}

func TestEventStore(t *testing.T) {
	t.Run("is created empty on first use", func(t *testing.T) {
		s := newTestEventStore(t)

		events, err := s.ReadAll()

		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("round-trips appended events in insertion order", func(t *testing.T) {
		s := newTestEventStore(t)
		t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.Append(pageviewAt(t0, "s1")))
		require.NoError(t, s.Append(pageviewAt(t0.Add(time.Minute), "s2")))

		events, err := s.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "s1", *events[0].Meta.SessionID)
		assert.Equal(t, "s2", *events[1].Meta.SessionID)
		assert.True(t, events[0].Timestamp.Equal(t0))
	})

	t.Run("skips a malformed line without losing neighbors", func(t *testing.T) {
		s := newTestEventStore(t)
		t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.Append(pageviewAt(t0, "s1")))
		corruptLine(t, s, "{not json at all\n")
		require.NoError(t, s.Append(pageviewAt(t0.Add(time.Hour), "s2")))

		events, err := s.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "s1", *events[0].Meta.SessionID)
		assert.Equal(t, "s2", *events[1].Meta.SessionID)
	})

	t.Run("drops an oversized line without aborting the read", func(t *testing.T) {
		s := newTestEventStore(t)
		t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.Append(pageviewAt(t0, "s1")))
		corruptLine(t, s, strings.Repeat("x", 2*maxRecordBytes)+"\n")
		require.NoError(t, s.Append(pageviewAt(t0.Add(time.Hour), "s2")))

		events, err := s.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "s1", *events[0].Meta.SessionID)
		assert.Equal(t, "s2", *events[1].Meta.SessionID)
	})

	t.Run("skips records with an unparseable timestamp", func(t *testing.T) {
		s := newTestEventStore(t)

		corruptLine(t, s, `{"type":"pageview","timestamp":"not-a-time"}`+"\n")
		require.NoError(t, s.Append(pageviewAt(time.Now().UTC(), "s1")))

		events, err := s.ReadAll()
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("reset empties the log", func(t *testing.T) {
		s := newTestEventStore(t)
		require.NoError(t, s.Append(pageviewAt(time.Now().UTC(), "s1")))

		require.NoError(t, s.Reset())

		events, err := s.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("appends after reset land in the emptied log", func(t *testing.T) {
		s := newTestEventStore(t)
		require.NoError(t, s.Append(pageviewAt(time.Now().UTC(), "old")))
		require.NoError(t, s.Reset())

		require.NoError(t, s.Append(pageviewAt(time.Now().UTC(), "new")))

		events, err := s.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "new", *events[0].Meta.SessionID)
	})

	t.Run("concurrent appends keep every record intact", func(t *testing.T) {
		s := newTestEventStore(t)
		const writers = 8
		const perWriter = 50

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_ = s.Append(pageviewAt(time.Now().UTC(), "session"))
				}
			}(w)
		}
		wg.Wait()

		events, err := s.ReadAll()
		require.NoError(t, err)
		assert.Len(t, events, writers*perWriter)
		for _, e := range events {
			assert.Equal(t, models.EventTypePageview, e.Type)
		}
	})
}

// corruptLine writes a raw line directly into the underlying log file,
// bypassing Append, to simulate historical corruption.
func corruptLine(t *testing.T, s *EventStore, line string) {
	t.Helper()
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(line)
	require.NoError(t, err)
}

func TestNewEventStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "analytics")

	s, err := NewEventStore(dir)
	require.NoError(t, err)
	defer s.Close()

	_, statErr := os.Stat(filepath.Join(dir, eventsFileName))
	assert.NoError(t, statErr)
}
