package tracklight

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// defaultStderrLogger is used as a fallback when no logger is configured.
// This ensures delivery errors are never silently dropped.
var defaultStderrLogger = log.New(os.Stderr, "tracklight: ", log.LstdFlags)

// Client buffers track events in memory and delivers them to the
// collector in batches. It is safe for concurrent use.
type Client struct {
	config    *Config
	transport *transport
	disabled  bool

	// Queue state. The queue exclusively owns entries until a flush
	// removes them; removal happens before the request is issued, so
	// concurrent enqueues never see in-flight entries.
	mu          sync.Mutex
	queue       []queueEntry
	flushedOnce bool
	timer       *time.Timer
	closed      bool

	// Delivery pipeline: flush decisions hand materialized batches to a
	// single worker goroutine, so batches reach the transport in flush
	// order.
	deliveries  chan deliveryRequest
	drainSignal chan struct{}
	workerDone  chan struct{}

	// submitters tracks channel sends in flight outside the mutex, so
	// Close can wait for every materialized batch to reach the pipeline
	// before draining it.
	submitters sync.WaitGroup

	// callbacks tracks goroutines that resolve no-op callbacks
	// asynchronously (disabled client, empty flush).
	callbacks sync.WaitGroup
}

// New creates a new Tracklight client.
func New(writeKey string, opts ...ConfigOption) (*Client, error) {
	cfg := &Config{WriteKey: writeKey}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a new Tracklight client from a Config struct.
// This is useful when the configuration comes from a file or another
// system rather than functional options.
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	// Make a copy to avoid modifying the original
	cfgCopy := *cfg

	cfgCopy.applyDefaults()

	if err := cfgCopy.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   &cfgCopy,
		disabled: !*cfgCopy.Enabled,
	}

	// A disabled client bypasses all queue, timer and transport state:
	// no background goroutine, no timers, no requests.
	if c.disabled {
		return c, nil
	}

	c.transport = newTransport(&cfgCopy)
	c.queue = make([]queueEntry, 0, cfgCopy.FlushAt)
	c.deliveries = make(chan deliveryRequest, DefaultDeliveryQueueSize)
	c.drainSignal = make(chan struct{})
	c.workerDone = make(chan struct{})

	go c.deliveryWorker()

	return c, nil
}

// deliveryWorker sends batches one at a time in submission order. On
// drainSignal it delivers everything still in the pipeline, then exits.
func (c *Client) deliveryWorker() {
	defer close(c.workerDone)

	for {
		select {
		case req := <-c.deliveries:
			c.deliver(req)

		case <-c.drainSignal:
			for {
				select {
				case req := <-c.deliveries:
					c.deliver(req)
				default:
					return
				}
			}
		}
	}
}

// submit hands a materialized batch to the delivery worker. The send
// happens outside the mutex; when the pipeline is full the send moves to
// a background goroutine so a re-entrant flush from a delivery callback
// cannot deadlock against the worker.
func (c *Client) submit(req deliveryRequest) {
	select {
	case c.deliveries <- req:
		c.submitters.Done()
	default:
		c.log("delivery pipeline full, queuing batch in background")
		go func() {
			c.deliveries <- req
			c.submitters.Done()
		}()
	}
}

// handleError handles delivery errors observed outside any explicit
// callback. Errors are never silently dropped: if no handler or logger is
// configured they go to stderr.
func (c *Client) handleError(err error) {
	handled := false

	if c.config.ErrorHandler != nil {
		c.config.ErrorHandler(err)
		handled = true
	}

	if c.config.StructuredLogger != nil {
		c.config.StructuredLogger.Error("delivery error", "error", err)
		handled = true
	} else if c.config.Logger != nil {
		c.config.Logger.Printf("error: %v", err)
		handled = true
	}

	if !handled {
		defaultStderrLogger.Printf("unhandled delivery error: %v", err)
	}
}

// log logs a debug message if debug logging is enabled.
func (c *Client) log(format string, v ...any) {
	if !c.config.Debug {
		return
	}
	if c.config.StructuredLogger != nil {
		c.config.StructuredLogger.Debug(fmt.Sprintf(format, v...))
	} else if c.config.Logger != nil {
		c.config.Logger.Printf(format, v...)
	}
}

// asyncCallback resolves a per-event callback asynchronously with no
// error, preserving API shape for callers who always provide one.
func (c *Client) asyncCallback(cb Callback) {
	if cb == nil {
		return
	}
	c.callbacks.Add(1)
	go func() {
		defer c.callbacks.Done()
		cb(nil)
	}()
}

// asyncFlushCallback resolves a flush callback asynchronously.
func (c *Client) asyncFlushCallback(cb FlushCallback, err error, b *Batch) {
	if cb == nil {
		return
	}
	c.callbacks.Add(1)
	go func() {
		defer c.callbacks.Done()
		cb(err, b)
	}()
}
