// Package tracklight provides a Go client for the Tracklight analytics
// collector. Events are validated and enriched synchronously, buffered in
// memory, and delivered in batches over HTTP with bounded retry on
// transient failures.
//
// # Quick Start
//
// Create a client and start tracking:
//
//	client, err := tracklight.New(os.Getenv("TRACKLIGHT_WRITE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Track(tracklight.Track{
//	    Event:  "Signed Up",
//	    UserID: "user-123",
//	    Properties: map[string]any{
//	        "plan": "starter",
//	    },
//	}, nil)
//
// # Configuration
//
// The client can be configured with functional options:
//
//	client, err := tracklight.New(writeKey,
//	    tracklight.WithHost("https://collector.internal"),
//	    tracklight.WithFlushAt(50),
//	    tracklight.WithFlushInterval(5*time.Second),
//	    tracklight.WithRetryCount(5),
//	)
//
// # Delivery Guarantees
//
// Delivery is at-least-once and best-effort: events live only in process
// memory until a batch is accepted by the collector. The first event on a
// fresh client is flushed immediately; after that a batch is sent whenever
// the buffer reaches the configured size or the flush interval elapses.
// Failed batches are retried at the transport layer (network errors, 5xx
// and 429 responses); other failures are surfaced to the per-event and
// flush callbacks and the events are dropped.
//
// # Thread Safety
//
// The Client is safe for concurrent use. Events are delivered to the
// collector in enqueue order, batch by batch.
package tracklight
