// Package tracklighttest provides test doubles for the Tracklight SDK.
//
// MockServer stands in for the collector: it records every batch it
// receives and can be scripted to fail with specific status codes, which
// makes retry and error-broadcast behavior testable without a real
// collector.
package tracklighttest
