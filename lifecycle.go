package tracklight

import (
	"sync"
	"time"
)

// Close flushes everything still queued, waits for in-flight deliveries
// to finish and stops all background activity. The wait is bounded by
// ShutdownTimeout; on timeout ErrShutdownTimeout is returned and
// undelivered events may be lost. Close is idempotent; Track and Flush
// calls after Close fail with ErrClientClosed.
//
// Returns the first delivery error encountered while draining, if any.
func (c *Client) Close() error {
	if c.disabled {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil
		}
		c.closed = true
		c.mu.Unlock()
		c.callbacks.Wait()
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.clearTimerLocked()

	// Chunk the remaining queue into final batches while still holding
	// the lock; nothing can enqueue behind us now.
	var remaining []deliveryRequest
	for len(c.queue) > 0 {
		if req, ok := c.dequeueLocked(nil); ok {
			remaining = append(remaining, req)
		}
	}
	c.mu.Unlock()

	// Collect drain outcomes through the normal callback path.
	var (
		errMu    sync.Mutex
		firstErr error
	)
	capture := func(err error, _ *Batch) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}
	for i := range remaining {
		remaining[i].cb = capture
		c.submit(remaining[i])
	}

	// Every flush that dequeued before we marked the client closed must
	// reach the pipeline before the worker is told to drain it.
	c.submitters.Wait()
	close(c.drainSignal)

	done := make(chan struct{})
	go func() {
		<-c.workerDone
		c.callbacks.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(c.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}

	errMu.Lock()
	defer errMu.Unlock()
	return firstErr
}
