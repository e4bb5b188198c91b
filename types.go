package tracklight

import "time"

// Callback is invoked exactly once per tracked event after its batch has
// been attempted. err is nil on success, or the shared delivery error for
// the batch on failure.
type Callback func(err error)

// FlushCallback receives the outcome of a flush. batch is the batch that
// was sent, or nil when there was nothing to send.
type FlushCallback func(err error, batch *Batch)

// Track is a caller-supplied analytics event.
//
// UserID and AnonymousID are deliberately untyped: non-string identities
// (numeric ids, typed wrappers) are serialized to their JSON text during
// enrichment. At least one of the two must be set.
type Track struct {
	// Event is the name of the action being recorded (required).
	Event string

	// UserID identifies a known user.
	UserID any

	// AnonymousID identifies a user that has not been identified yet.
	AnonymousID any

	// Properties carries free-form attributes of the event.
	Properties map[string]any

	// Context carries caller-supplied context fields. They are shallow-merged
	// on top of the library-identity context, caller wins on collision.
	Context map[string]any

	// Metadata carries caller-supplied fields for the wire _metadata object,
	// merged the same way as Context.
	Metadata map[string]any

	// Timestamp is when the event occurred. Zero means "now".
	Timestamp time.Time

	// MessageID uniquely identifies the event. Generated when empty, and
	// never regenerated once set.
	MessageID string
}

// Message is the enriched, delivery-ready form of a Track event. Every
// Message in the queue has a non-empty unique MessageID, a concrete
// Timestamp and string-typed identities.
type Message struct {
	Type        string         `json:"type"`
	Event       string         `json:"event"`
	UserID      string         `json:"userId,omitempty"`
	AnonymousID string         `json:"anonymousId,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Context     map[string]any `json:"context"`
	Metadata    map[string]any `json:"_metadata"`
	Timestamp   time.Time      `json:"timestamp"`
	MessageID   string         `json:"messageId"`
}

// Batch is an ordered snapshot of messages sent together in one request.
// Timestamp marks when the batch was materialized, SentAt when it was
// handed to the transport.
type Batch struct {
	Messages  []Message `json:"batch"`
	Timestamp time.Time `json:"timestamp"`
	SentAt    time.Time `json:"sentAt"`
}

// queueEntry pairs a message with its completion callback. The queue owns
// an entry until a flush removes it; entries are discarded after their
// callback fires, success or failure.
type queueEntry struct {
	msg Message
	cb  Callback
}

// deliveryRequest is one materialized batch handed to the delivery
// worker, paired with the entries whose callbacks resolve on completion.
type deliveryRequest struct {
	batch   *Batch
	entries []queueEntry
	cb      FlushCallback
}
