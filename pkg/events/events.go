// Package events defines the event record flowing into the events table
// that generated search SQL runs against, along with a minimal iterator for
// streaming events between sources and the store.
package events

import (
	"fmt"
	"strconv"
)

const (
	// StandardMessageField holds the raw line of an unstructured event.
	StandardMessageField = "@message"
	// StandardTimestampField holds the ingest-time timestamp.
	StandardTimestampField = "@timestamp"
)

// Event is a single log event with potentially many fields.
type Event map[string]any

func (e Event) HasField(name string) bool {
	_, ok := e[name]
	return ok
}

func (e Event) AsString(name string) (string, bool) {
	if !e.HasField(name) {
		return "", false
	}
	if s, ok := e[name].(string); ok {
		return s, true
	}
	if s, ok := e[name].(interface{ String() string }); ok {
		return s.String(), true
	}
	return fmt.Sprintf("%v", e[name]), true
}

func (e Event) AsInt(name string) (int64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	switch v := e[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
