package tracklight

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"
)

// Environment variable names for configuration.
const (
	// EnvWriteKey is the environment variable for the collector write key.
	EnvWriteKey = "TRACKLIGHT_WRITE_KEY"
	// EnvHost is the environment variable for the collector base URL.
	EnvHost = "TRACKLIGHT_HOST"
	// EnvDebug is the environment variable to enable debug logging.
	EnvDebug = "TRACKLIGHT_DEBUG"
)

// Default configuration values.
const (
	// DefaultHost is the default collector base URL.
	DefaultHost = "https://api.tracklight.io"

	// DefaultFlushAt is the default maximum number of messages per batch.
	DefaultFlushAt = 20

	// DefaultFlushInterval is the default maximum wait before a buffered
	// batch is flushed.
	DefaultFlushInterval = 10 * time.Second

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryCount is the default maximum number of retry attempts.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the default initial delay between retry attempts.
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultShutdownTimeout bounds how long Close waits for queued and
	// in-flight batches.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultDeliveryQueueSize is the capacity of the background delivery
	// queue between flush decisions and the delivery worker.
	DefaultDeliveryQueueSize = 64
)

// Config holds the configuration for the Tracklight client.
type Config struct {
	// WriteKey authenticates the client to the collector (required).
	WriteKey string

	// Host is the collector base URL. A trailing slash is stripped.
	// Defaults to DefaultHost.
	Host string

	// Timeout bounds each delivery attempt. Zero means DefaultTimeout,
	// negative disables the per-request timeout.
	Timeout time.Duration

	// FlushAt is the maximum batch size. Zero means DefaultFlushAt;
	// values below 1 are raised to 1.
	FlushAt int

	// FlushInterval is the maximum wait before a forced flush. Zero means
	// DefaultFlushInterval; negative disables the periodic flush timer.
	FlushInterval time.Duration

	// Enabled controls whether the client does anything at all. When
	// false, Track and Flush invoke their callbacks asynchronously with
	// no error and never touch the network. Defaults to true; immutable
	// after construction.
	Enabled *bool

	// RetryCount is the maximum number of retry attempts for transient
	// delivery failures. Zero means DefaultRetryCount; negative disables
	// retries.
	RetryCount int

	// RetryDelay is the initial backoff delay; it doubles per attempt.
	RetryDelay time.Duration

	// ShutdownTimeout bounds Close.
	ShutdownTimeout time.Duration

	// RuntimeVersion is the runtime tag reported under _metadata. It is
	// injected here rather than read from ambient process state so the
	// core stays environment-agnostic. Defaults to runtime.Version().
	RuntimeVersion string

	// HTTPClient is the HTTP client used for delivery. If not set, a
	// default client is used.
	HTTPClient *http.Client

	// Logger is a printf-style logger for debug output.
	Logger Logger

	// StructuredLogger is a leveled logger for debug output. Takes
	// precedence over Logger.
	StructuredLogger StructuredLogger

	// ErrorHandler receives delivery errors observed outside any explicit
	// callback.
	ErrorHandler func(error)

	// Debug enables logging of queue and flush decisions.
	Debug bool
}

// applyDefaults fills in zero values with defaults and normalizes fields.
func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	c.Host = strings.TrimSuffix(c.Host, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FlushAt == 0 {
		c.FlushAt = DefaultFlushAt
	}
	if c.FlushAt < 1 {
		c.FlushAt = 1
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.Enabled == nil {
		enabled := true
		c.Enabled = &enabled
	}
	if c.RetryCount == 0 {
		c.RetryCount = DefaultRetryCount
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.RuntimeVersion == "" {
		c.RuntimeVersion = runtime.Version()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
}

// validate checks the configuration after defaults have been applied.
func (c *Config) validate() error {
	if c.WriteKey == "" {
		return ErrMissingWriteKey
	}
	u, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("%w: host %q: %v", ErrInvalidConfig, c.Host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: host %q must use http or https", ErrInvalidConfig, c.Host)
	}
	return nil
}

// NewFromEnv creates a client configured from TRACKLIGHT_* environment
// variables. Options are applied on top of the environment.
func NewFromEnv(opts ...ConfigOption) (*Client, error) {
	cfg := &Config{
		WriteKey: os.Getenv(EnvWriteKey),
		Host:     os.Getenv(EnvHost),
	}
	if v := os.Getenv(EnvDebug); v == "1" || strings.EqualFold(v, "true") {
		cfg.Debug = true
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}
