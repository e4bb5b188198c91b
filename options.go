package tracklight

import (
	"net/http"
	"time"
)

// ConfigOption is a function that modifies a Config.
type ConfigOption func(*Config)

// WithHost sets the collector base URL. A trailing slash is stripped.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithTimeout sets the per-request timeout for delivery attempts.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithFlushAt sets the maximum batch size. Values below 1 are raised to 1.
func WithFlushAt(n int) ConfigOption {
	return func(c *Config) {
		c.FlushAt = n
	}
}

// WithFlushInterval sets the maximum wait before a buffered batch is
// flushed. A zero or negative interval disables the periodic flush timer.
func WithFlushInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		if interval <= 0 {
			interval = -1
		}
		c.FlushInterval = interval
	}
}

// WithEnabled controls whether the client is active. A disabled client
// queues nothing and issues no requests; callbacks fire asynchronously
// with no error. Immutable after construction.
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = &enabled
	}
}

// WithRetryCount sets the maximum number of retry attempts for transient
// delivery failures.
func WithRetryCount(n int) ConfigOption {
	return func(c *Config) {
		if n <= 0 {
			n = -1
		}
		c.RetryCount = n
	}
}

// WithRetryDelay sets the initial delay between retry attempts.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithShutdownTimeout bounds how long Close waits for delivery to finish.
func WithShutdownTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithRuntimeVersion overrides the runtime tag reported under _metadata.
func WithRuntimeVersion(version string) ConfigOption {
	return func(c *Config) {
		c.RuntimeVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets a printf-style logger for debug output.
func WithLogger(logger Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStructuredLogger sets a leveled logger for debug output. This takes
// precedence over a logger set via WithLogger.
//
// Example with slog:
//
//	client, _ := tracklight.New(writeKey,
//	    tracklight.WithStructuredLogger(tracklight.NewSlogAdapter(slog.Default())),
//	)
func WithStructuredLogger(logger StructuredLogger) ConfigOption {
	return func(c *Config) {
		c.StructuredLogger = logger
	}
}

// WithErrorHandler sets a callback for delivery errors observed outside
// any explicit Track or Flush callback.
func WithErrorHandler(handler func(error)) ConfigOption {
	return func(c *Config) {
		c.ErrorHandler = handler
	}
}

// WithDebug enables logging of queue and flush decisions.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}
