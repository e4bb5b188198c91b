package tracklight

import "time"

// Track validates and enqueues a track-type event. Validation failures
// are returned synchronously and the event is never queued. cb, if not
// nil, is invoked exactly once after the event's batch has been
// attempted, with an error argument on failure.
func (c *Client) Track(t Track, cb Callback) error {
	if err := validateTrack(t); err != nil {
		return err
	}

	// Deliberate no-op mode, not a failure: skip enrichment and queueing
	// entirely and resolve the callback with no error.
	if c.disabled {
		c.asyncCallback(cb)
		return nil
	}

	msg := c.enrich(t)
	return c.enqueue(queueEntry{msg: msg, cb: cb})
}

// enqueue appends an entry and applies the flush-trigger policy. At most
// one flush is started per invocation even when several triggers co-occur.
func (c *Client) enqueue(e queueEntry) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}

	c.queue = append(c.queue, e)
	n := len(c.queue)

	if shouldFlush(n, c.flushedOnce, c.config.FlushAt) {
		c.log("flush triggered by enqueue: queued=%d first=%t", n, !c.flushedOnce)
		c.flushedOnce = true
		req, ok := c.dequeueLocked(nil)
		c.mu.Unlock()
		if ok {
			c.submit(req)
		}
		return nil
	}

	// The timer was cleared by the last flush; re-arm it while events
	// are waiting.
	if c.config.FlushInterval > 0 && c.timer == nil {
		c.timer = time.AfterFunc(c.config.FlushInterval, func() {
			c.Flush(nil)
		})
	}

	c.mu.Unlock()
	return nil
}

// shouldFlush is the flush-trigger decision, applied once per enqueue:
// the first-ever enqueue flushes immediately regardless of size, after
// that the size threshold applies. The timer trigger is handled
// separately by enqueue.
func shouldFlush(queueLen int, flushedOnce bool, flushAt int) bool {
	if !flushedOnce {
		return true
	}
	return queueLen >= flushAt
}

// dequeueLocked clears any pending timer and removes up to flushAt
// entries from the front of the queue, materializing them into a delivery
// request with the batch timestamp set. Entries beyond flushAt stay
// queued for a subsequent flush. Caller must hold c.mu and, when ok, must
// pass the request to submit after unlocking; the submitters count is
// already incremented.
func (c *Client) dequeueLocked(cb FlushCallback) (deliveryRequest, bool) {
	c.clearTimerLocked()

	if len(c.queue) == 0 {
		return deliveryRequest{}, false
	}

	n := c.config.FlushAt
	if n > len(c.queue) {
		n = len(c.queue)
	}

	entries := make([]queueEntry, n)
	copy(entries, c.queue[:n])
	c.queue = append(c.queue[:0], c.queue[n:]...)

	msgs := make([]Message, n)
	for i, e := range entries {
		msgs[i] = e.msg
	}

	c.submitters.Add(1)
	return deliveryRequest{
		batch:   &Batch{Messages: msgs, Timestamp: time.Now()},
		entries: entries,
		cb:      cb,
	}, true
}

// clearTimerLocked disarms the pending flush timer, if any. Caller must
// hold c.mu.
func (c *Client) clearTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
