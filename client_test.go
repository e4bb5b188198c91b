package tracklight

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// recordingServer is a minimal collector stand-in that records every
// batch it receives.
type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedBatch
}

type recordedBatch struct {
	path      string
	method    string
	apiKey    string
	userAgent string
	batch     Batch
}

func newRecordingServer() *recordingServer {
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := recordedBatch{
			path:      r.URL.Path,
			method:    r.Method,
			apiKey:    r.Header.Get("api_key"),
			userAgent: r.Header.Get("User-Agent"),
		}
		json.Unmarshal(body, &rec.batch)

		rs.mu.Lock()
		rs.requests = append(rs.requests, rec)
		rs.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	return rs
}

func (rs *recordingServer) requestCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

func (rs *recordingServer) batches() []recordedBatch {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]recordedBatch{}, rs.requests...)
}

// events returns every delivered message in delivery order.
func (rs *recordingServer) events() []Message {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var msgs []Message
	for _, r := range rs.requests {
		msgs = append(msgs, r.batch.Messages...)
	}
	return msgs
}

// waitForRequests polls until the server has seen n requests.
func (rs *recordingServer) waitForRequests(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if rs.requestCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d requests, saw %d", n, rs.requestCount())
}

func mustTrack(t *testing.T, c *Client, tr Track) {
	t.Helper()
	if err := c.Track(tr, nil); err != nil {
		t.Fatalf("Track(%q): %v", tr.Event, err)
	}
}

func waitCallback(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func TestTrack_FirstEventFlushesImmediately(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithFlushAt(20), WithFlushInterval(-1))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	done := make(chan error, 1)
	if err := c.Track(Track{Event: "Signed Up", UserID: "u-1"}, func(err error) { done <- err }); err != nil {
		t.Fatal(err)
	}
	if err := waitCallback(t, done); err != nil {
		t.Fatalf("callback error: %v", err)
	}

	batches := srv.batches()
	if len(batches) != 1 {
		t.Fatalf("got %d requests, want 1", len(batches))
	}
	b := batches[0]
	if b.method != http.MethodPost || b.path != "/api/track/events" {
		t.Errorf("request = %s %s, want POST /api/track/events", b.method, b.path)
	}
	if b.apiKey != "wk-test" {
		t.Errorf("api_key header = %q, want %q", b.apiKey, "wk-test")
	}
	if want := libraryName + "/" + Version; b.userAgent != want {
		t.Errorf("user-agent = %q, want %q", b.userAgent, want)
	}
	if len(b.batch.Messages) != 1 {
		t.Fatalf("batch size = %d, want 1", len(b.batch.Messages))
	}
	msg := b.batch.Messages[0]
	if msg.Type != "track" || msg.Event != "Signed Up" || msg.UserID != "u-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.MessageID == "" || msg.Timestamp.IsZero() {
		t.Errorf("message must carry id and timestamp: %+v", msg)
	}
	if b.batch.Timestamp.IsZero() || b.batch.SentAt.IsZero() {
		t.Errorf("batch must carry timestamp and sentAt: %+v", b.batch)
	}
}

func TestTrack_SizeThresholdScenario(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithFlushAt(2), WithFlushInterval(-1))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// A flushes immediately as the first-ever event.
	mustTrack(t, c, Track{Event: "A", UserID: "u"})
	srv.waitForRequests(t, 1)

	// B and C fill the buffer to flushAt and flush together; D stays
	// queued until the next trigger.
	mustTrack(t, c, Track{Event: "B", UserID: "u"})
	mustTrack(t, c, Track{Event: "C", UserID: "u"})
	srv.waitForRequests(t, 2)

	mustTrack(t, c, Track{Event: "D", UserID: "u"})
	time.Sleep(100 * time.Millisecond)
	if n := srv.requestCount(); n != 2 {
		t.Fatalf("D should stay queued, got %d requests", n)
	}

	batches := srv.batches()
	if got := batches[0].batch.Messages; len(got) != 1 || got[0].Event != "A" {
		t.Errorf("first batch should be [A], got %+v", got)
	}
	second := batches[1].batch.Messages
	if len(second) != 2 || second[0].Event != "B" || second[1].Event != "C" {
		t.Errorf("second batch should be [B C] in enqueue order, got %+v", second)
	}

	// An explicit flush delivers D.
	done := make(chan error, 1)
	c.Flush(func(err error, b *Batch) { done <- err })
	if err := waitCallback(t, done); err != nil {
		t.Fatal(err)
	}
	events := srv.events()
	if last := events[len(events)-1]; last.Event != "D" {
		t.Errorf("last delivered event = %q, want D", last.Event)
	}
}

func TestTrack_ExactBatchInEnqueueOrder(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithFlushAt(3), WithFlushInterval(-1))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	mustTrack(t, c, Track{Event: "e0", UserID: "u"})
	srv.waitForRequests(t, 1)

	for _, name := range []string{"e1", "e2", "e3"} {
		mustTrack(t, c, Track{Event: name, UserID: "u"})
	}
	srv.waitForRequests(t, 2)

	got := srv.batches()[1].batch.Messages
	if len(got) != 3 {
		t.Fatalf("batch size = %d, want exactly flushAt", len(got))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if got[i].Event != want {
			t.Errorf("batch[%d] = %q, want %q", i, got[i].Event, want)
		}
	}
}

func TestFlush_EmptyQueue(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	done := make(chan error, 1)
	var gotBatch *Batch
	c.Flush(func(err error, b *Batch) {
		gotBatch = b
		done <- err
	})
	if err := waitCallback(t, done); err != nil {
		t.Fatalf("empty flush must not error: %v", err)
	}
	if gotBatch != nil {
		t.Errorf("empty flush batch = %+v, want nil", gotBatch)
	}
	if n := srv.requestCount(); n != 0 {
		t.Errorf("empty flush issued %d requests", n)
	}
}

func TestDisabledClient(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithEnabled(false))
	if err != nil {
		t.Fatal(err)
	}

	trackDone := make(chan error, 1)
	if err := c.Track(Track{Event: "e", UserID: "u"}, func(err error) { trackDone <- err }); err != nil {
		t.Fatal(err)
	}
	if err := waitCallback(t, trackDone); err != nil {
		t.Errorf("disabled Track callback error = %v, want nil", err)
	}

	flushDone := make(chan error, 1)
	c.Flush(func(err error, _ *Batch) { flushDone <- err })
	if err := waitCallback(t, flushDone); err != nil {
		t.Errorf("disabled Flush callback error = %v, want nil", err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if n := srv.requestCount(); n != 0 {
		t.Errorf("disabled client issued %d requests", n)
	}
}

func TestTrack_FailureBroadcastsStatusText(t *testing.T) {
	// Respond with a raw status line so the status text differs from the
	// standard text for the code.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("server does not support hijacking")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		buf.WriteString("HTTP/1.1 500 Server Error\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
		buf.Flush()
	}))
	defer srv.Close()

	c, err := New("wk-test",
		WithHost(srv.URL),
		WithFlushAt(2),
		WithFlushInterval(-1),
		WithRetryCount(2),
		WithRetryDelay(time.Millisecond),
		WithErrorHandler(func(error) {}),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	firstCh := make(chan error, 1)
	entryCh := make(chan error, 1)
	flushCh := make(chan error, 1)

	mustTrackCB(t, c, Track{Event: "first", UserID: "u"}, func(err error) { firstCh <- err })
	waitCallback(t, firstCh) // first-event flush fails too; not under test here

	mustTrackCB(t, c, Track{Event: "a", UserID: "u"}, func(err error) { entryCh <- err })
	c.Flush(func(err error, _ *Batch) { flushCh <- err })

	entryErr := waitCallback(t, entryCh)
	flushErr := waitCallback(t, flushCh)

	if entryErr == nil || flushErr == nil {
		t.Fatal("both callbacks must receive the delivery error")
	}
	if entryErr.Error() != "Server Error" {
		t.Errorf("entry error message = %q, want %q", entryErr.Error(), "Server Error")
	}
	if !errors.Is(flushErr, entryErr) {
		t.Errorf("flush and entry callbacks should share the error: %v vs %v", flushErr, entryErr)
	}
	apiErr, ok := AsAPIError(entryErr)
	if !ok || apiErr.StatusCode != 500 {
		t.Errorf("error should be an APIError with status 500, got %v", entryErr)
	}
}

func mustTrackCB(t *testing.T, c *Client, tr Track, cb Callback) {
	t.Helper()
	if err := c.Track(tr, cb); err != nil {
		t.Fatalf("Track(%q): %v", tr.Event, err)
	}
}

func TestClose_DrainsQueueAndRejectsFurtherUse(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithFlushAt(100), WithFlushInterval(-1))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		mustTrack(t, c, Track{Event: name, UserID: "u"})
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if got := len(srv.events()); got != 5 {
		t.Fatalf("Close delivered %d events, want 5", got)
	}

	if err := c.Track(Track{Event: "late", UserID: "u"}, nil); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Track after Close = %v, want ErrClientClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestTrack_ConcurrentUse(t *testing.T) {
	srv := newRecordingServer()
	defer srv.Close()

	c, err := New("wk-test", WithHost(srv.URL), WithFlushAt(10), WithFlushInterval(-1))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if err := c.Track(Track{Event: "e", UserID: "u"}, nil); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if got := len(srv.events()); got != 100 {
		t.Fatalf("delivered %d events, want 100", got)
	}
}
