package tracklight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// trackEndpoint is the collector path batches are posted to.
const trackEndpoint = "/api/track/events"

// transport delivers batches to the collector with bounded retry.
// Retry classification and backoff live here, beneath the flush engine:
// the engine only observes the final outcome.
type transport struct {
	client     *http.Client
	host       string
	writeKey   string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// newTransport creates a transport from a validated Config.
func newTransport(cfg *Config) *transport {
	return &transport{
		client:     cfg.HTTPClient,
		host:       cfg.Host,
		writeKey:   cfg.WriteKey,
		userAgent:  libraryName + "/" + Version,
		maxRetries: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}
}

// sendBatch delivers one batch, retrying transient failures with
// exponential backoff until success or the retry budget is exhausted.
func (t *transport) sendBatch(ctx context.Context, b *Batch) error {
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("tracklight: failed to marshal batch: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			delay := t.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := t.sendOnce(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err

		if apiErr, ok := AsAPIError(err); ok {
			if !apiErr.IsRetryable() {
				return err
			}
		}
		// Network-level failures have no response and are always retryable.
	}

	return lastErr
}

// sendOnce executes a single delivery attempt.
func (t *transport) sendOnce(ctx context.Context, body []byte) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.host+trackEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tracklight: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("api_key", t.writeKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tracklight: request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    statusText(resp),
		}
	}

	return nil
}

// statusText extracts the status text from a response, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if text := strings.TrimPrefix(resp.Status, prefix); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
