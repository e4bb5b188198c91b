package tracklight

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tracklight/tracklight-go/pkg/id"
)

// Library identity reported under context.library on every message.
const (
	libraryName = "tracklight-go"

	// Version is the SDK version reported to the collector.
	Version = "1.0.0"
)

// enrich turns a caller Track value into a delivery-ready Message. Pure
// transformation: the caller's value is never mutated (maps are copied,
// not aliased) and there are no error conditions.
func (c *Client) enrich(t Track) Message {
	m := Message{
		Type:        "track",
		Event:       t.Event,
		UserID:      coerceID(t.UserID),
		AnonymousID: coerceID(t.AnonymousID),
		Properties:  t.Properties,
		Timestamp:   t.Timestamp,
		MessageID:   t.MessageID,
	}

	m.Context = mergeFields(map[string]any{
		"library": map[string]any{
			"name":    libraryName,
			"version": Version,
		},
	}, t.Context)

	m.Metadata = mergeFields(map[string]any{
		"goVersion": c.config.RuntimeVersion,
	}, t.Metadata)

	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.MessageID == "" {
		m.MessageID = messageID(m)
	}

	return m
}

// messageID derives an identifier from the content of the pre-id message
// combined with a random unique value, so ids stay collision-free even
// under weak randomness sources.
func messageID(m Message) string {
	content, err := json.Marshal(m)
	if err != nil {
		// Unserializable properties will fail again at delivery time;
		// the random component alone still identifies the message.
		return id.Generate()
	}
	return id.ForContent(content)
}

// mergeFields shallow-merges overlay on top of base into a fresh map.
// On key collision the overlay value wins.
func mergeFields(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// coerceID serializes a non-textual identity to its JSON text. Strings
// pass through untouched, nil becomes empty.
func coerceID(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
