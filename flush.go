package tracklight

import (
	"context"
	"time"
)

// Flush forces an immediate flush attempt. Any pending timer is cleared.
// cb, if not nil, is invoked exactly once with the delivery error (nil on
// success) and the sent batch; a flush against an empty queue resolves
// the callback asynchronously with no error and issues no request.
func (c *Client) Flush(cb FlushCallback) {
	if c.disabled {
		c.asyncFlushCallback(cb, nil, nil)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.asyncFlushCallback(cb, ErrClientClosed, nil)
		return
	}
	req, ok := c.dequeueLocked(cb)
	c.mu.Unlock()

	if !ok {
		c.asyncFlushCallback(cb, nil, nil)
		return
	}

	c.submit(req)
}

// deliver sends one batch and fans the outcome out to every entry
// callback and the flush callback. All callbacks fire exactly once; on
// failure every entry receives the same shared error. Runs on the
// delivery worker goroutine.
func (c *Client) deliver(req deliveryRequest) {
	req.batch.SentAt = time.Now()

	err := c.transport.sendBatch(context.Background(), req.batch)
	if err != nil {
		c.handleError(err)
	} else {
		c.log("delivered batch: size=%d", len(req.batch.Messages))
	}

	// Failure is terminal for these entries: reported, never re-queued.
	for _, e := range req.entries {
		if e.cb != nil {
			e.cb(err)
		}
	}
	if req.cb != nil {
		req.cb(err, req.batch)
	}
}
