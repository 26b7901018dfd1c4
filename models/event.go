// api/models/event.go
package models

import (
	"time"
)

const (
	EventTypePageview = "pageview"
	EventTypeClick    = "click"
)

// Event is one immutable tracking record as persisted in the event log.
type Event struct {
	Type      string    `json:"type"`
	PagePath  *string   `json:"pagePath"`
	Element   *string   `json:"element"`
	Text      *string   `json:"text"`
	Meta      EventMeta `json:"meta"`
	Timestamp time.Time `json:"timestamp"`
}

// EventMeta carries the optional visitor context sent by the tracking snippet.
// Every field may be absent; absent or malformed values are stored as null.
type EventMeta struct {
	ClientID   *string  `json:"clientId"`
	SessionID  *string  `json:"sessionId"`
	Device     *string  `json:"device"`
	LoadTimeMs *float64 `json:"loadTimeMs"`
	UA         *string  `json:"ua"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
}

// IsValidEventType reports whether t is one of the accepted tracking event types.
func IsValidEventType(t string) bool {
	switch t {
	case EventTypePageview, EventTypeClick:
		return true
	default:
		return false
	}
}

// NormalizeTrackPayload builds a storable Event from an untrusted JSON payload.
// The caller has already verified the event type; everything else is optional
// and coerced to null when missing or of the wrong shape. The timestamp is
// always server-assigned, never taken from the payload.
func NormalizeTrackPayload(payload map[string]interface{}, now time.Time) Event {
	evt := Event{
		Type:      stringValue(payload["type"]),
		PagePath:  asStringPtr(payload["path"]),
		Element:   asStringPtr(payload["element"]),
		Text:      asStringPtr(payload["text"]),
		Timestamp: now,
	}

	if meta, ok := payload["meta"].(map[string]interface{}); ok {
		evt.Meta = EventMeta{
			ClientID:   asStringPtr(meta["clientId"]),
			SessionID:  asStringPtr(meta["sessionId"]),
			Device:     asDevicePtr(meta["device"]),
			LoadTimeMs: asNumberPtr(meta["loadTimeMs"]),
			UA:         asStringPtr(meta["ua"]),
			Width:      asNumberPtr(meta["width"]),
			Height:     asNumberPtr(meta["height"]),
		}
	}

	return evt
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func asNumberPtr(v interface{}) *float64 {
	// encoding/json decodes every JSON number into float64.
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func asDevicePtr(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch s {
	case "desktop", "mobile", "tablet":
		return &s
	default:
		return nil
	}
}
