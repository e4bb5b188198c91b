package tracklighttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	tracklight "github.com/tracklight/tracklight-go"
)

// MockServer is a test HTTP server that records batch requests for
// verification.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*RecordedRequest
	statuses []int

	// ResponseFunc allows customizing responses. If nil, scripted
	// statuses (FailWith) and then default success apply.
	ResponseFunc func(r *http.Request) int
}

// RecordedRequest is one recorded delivery request.
type RecordedRequest struct {
	Method    string
	Path      string
	APIKey    string
	UserAgent string
	Body      []byte
	Batch     tracklight.Batch
}

// NewMockServer creates a mock collector for testing.
func NewMockServer() *MockServer {
	ms := &MockServer{}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec := &RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			APIKey:    r.Header.Get("api_key"),
			UserAgent: r.Header.Get("User-Agent"),
			Body:      body,
		}
		json.Unmarshal(body, &rec.Batch)

		status := http.StatusOK
		ms.mu.Lock()
		ms.requests = append(ms.requests, rec)
		if len(ms.statuses) > 0 {
			status = ms.statuses[0]
			ms.statuses = ms.statuses[1:]
		}
		ms.mu.Unlock()

		if ms.ResponseFunc != nil {
			status = ms.ResponseFunc(r)
		}

		w.WriteHeader(status)
	}))

	return ms
}

// FailWith scripts the next requests to fail with the given status codes,
// in order. Once the script is exhausted, responses succeed again.
func (ms *MockServer) FailWith(statuses ...int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.statuses = append(ms.statuses, statuses...)
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*RecordedRequest{}, ms.requests...)
}

// RequestCount returns the number of recorded requests.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// Events returns every message received so far, across all batches, in
// delivery order.
func (ms *MockServer) Events() []tracklight.Message {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var msgs []tracklight.Message
	for _, r := range ms.requests {
		msgs = append(msgs, r.Batch.Messages...)
	}
	return msgs
}

// Reset clears all recorded requests and scripted failures.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
	ms.statuses = nil
}
