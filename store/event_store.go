// api/store/event_store.go
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"alsafaglobal/api/models"
)

const eventsFileName = "analytics.jsonl"

// maxRecordBytes bounds a single stored record during reads. A corrupt
// oversized line is dropped like any other unparseable record.
const maxRecordBytes = 1 << 20

// EventStore is an append-only, line-delimited event log. Records are never
// updated or deleted; each append writes one self-contained JSON line. The
// file is created on first use.
type EventStore struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewEventStore opens (creating if needed) the event log under dataDir.
func NewEventStore(dataDir string) (*EventStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create analytics data dir %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, eventsFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	return &EventStore{path: path, file: file}, nil
}

// Append serializes evt as one line and appends it to the log. O_APPEND plus
// the store mutex keeps every record intact under concurrent ingestion; order
// across concurrent writers is unspecified.
func (s *EventStore) Append(evt models.Event) error {
	line, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ReadAll returns every parseable event in insertion order. Malformed lines,
// oversized lines included, are skipped so that one corrupt record never
// hides the rest of the history. Only I/O failures surface as errors.
func (s *EventStore) ReadAll() ([]models.Event, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Event{}, nil
		}
		return nil, fmt.Errorf("failed to open event log for read: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	events := []models.Event{}
	record := make([]byte, 0, 4096)
	oversized := false

	flush := func() {
		if !oversized && len(record) > 0 {
			var evt models.Event
			// Unparseable records are historical corruption, not a
			// request failure.
			if err := json.Unmarshal(record, &evt); err == nil && evt.Type != "" {
				events = append(events, evt)
			}
		}
		record = record[:0]
		oversized = false
	}

	for {
		chunk, isPrefix, err := reader.ReadLine()
		if len(chunk) > 0 && !oversized {
			record = append(record, chunk...)
			if len(record) > maxRecordBytes {
				// Drop the record; the rest of the line is drained
				// without buffering it.
				record = record[:0]
				oversized = true
			}
		}
		if err == io.EOF {
			flush()
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event log: %w", err)
		}
		if isPrefix {
			continue
		}
		flush()
	}
}

// Reset empties the log. Only the demo seeder uses this; it is irreversible.
func (s *EventStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to reset event log: %w", err)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *EventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
