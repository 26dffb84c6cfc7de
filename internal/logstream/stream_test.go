package logstream

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func sseHandler(t *testing.T, connects *atomic.Int32, perConnect func(conn int32, w http.ResponseWriter, flush func())) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		conn := connects.Add(1)
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Errorf("response writer is not a flusher")
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		perConnect(conn, w, flusher.Flush)
	}
}

func newTestStream(t *testing.T, serverURL, app string) *Stream {
	t.Helper()
	s, err := New(Options{
		BaseURL:     serverURL,
		App:         app,
		Backoff:     50 * time.Millisecond,
		BufferLimit: 1000,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStream_ParsesJSONAndPlainText(t *testing.T) {
	var connects atomic.Int32
	block := make(chan struct{})
	server := httptest.NewServer(sseHandler(t, &connects, func(conn int32, w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: {\"level\": \"warning\", \"message\": \"queue full\", \"app\": \"sonarr\"}\n\n")
		fmt.Fprintf(w, "data: plain text line\n\n")
		flush()
		<-block
	}))
	t.Cleanup(func() { close(block); server.Close() })

	s := newTestStream(t, server.URL, "sonarr")
	s.Open()

	waitFor(t, "two entries", func() bool {
		entries, _ := s.Entries()
		return len(entries) == 2
	})

	entries, _ := s.Entries()
	if entries[0].Level != "warning" || entries[0].Message != "queue full" || entries[0].App != "sonarr" {
		t.Fatalf("structured entry = %#v", entries[0])
	}
	if entries[1].Level != "info" || entries[1].Message != "plain text line" {
		t.Fatalf("plain entry = %#v", entries[1])
	}
	if s.State() != StateConnected {
		t.Fatalf("state = %v, want connected", s.State())
	}
}

func TestStream_BufferIsBoundedInArrivalOrder(t *testing.T) {
	var connects atomic.Int32
	block := make(chan struct{})
	server := httptest.NewServer(sseHandler(t, &connects, func(conn int32, w http.ResponseWriter, flush func()) {
		for i := 0; i < 1200; i++ {
			fmt.Fprintf(w, "data: line %d\n\n", i)
		}
		flush()
		<-block
	}))
	t.Cleanup(func() { close(block); server.Close() })

	s := newTestStream(t, server.URL, "")
	s.Open()

	waitFor(t, "bounded buffer fill", func() bool {
		entries, _ := s.Entries()
		return len(entries) == 1000 && entries[999].Message == "line 1199"
	})

	entries, _ := s.Entries()
	if entries[0].Message != "line 200" {
		t.Fatalf("oldest retained = %q, want line 200", entries[0].Message)
	}
	for i, entry := range entries {
		if want := fmt.Sprintf("line %d", 200+i); entry.Message != want {
			t.Fatalf("entry[%d] = %q, want %q (order broken)", i, entry.Message, want)
		}
	}
}

func TestStream_ReconnectsAfterDropWithoutLosingNewMessages(t *testing.T) {
	var connects atomic.Int32
	block := make(chan struct{})
	server := httptest.NewServer(sseHandler(t, &connects, func(conn int32, w http.ResponseWriter, flush func()) {
		if conn == 1 {
			fmt.Fprintf(w, "data: before drop\n\n")
			flush()
			return // server closes the connection
		}
		fmt.Fprintf(w, "data: after reconnect\n\n")
		flush()
		<-block
	}))
	t.Cleanup(func() { close(block); server.Close() })

	s := newTestStream(t, server.URL, "")
	s.Open()

	waitFor(t, "first message", func() bool {
		entries, _ := s.Entries()
		return len(entries) == 1
	})
	waitFor(t, "reconnect and second message", func() bool {
		entries, _ := s.Entries()
		return len(entries) == 2
	})

	entries, _ := s.Entries()
	if entries[0].Message != "before drop" || entries[1].Message != "after reconnect" {
		t.Fatalf("entries across reconnect = %#v, messages duplicated or dropped", entries)
	}
	if connects.Load() < 2 {
		t.Fatalf("connects = %d, want reconnection", connects.Load())
	}
}

func TestStream_SetAppReopensScopedConnection(t *testing.T) {
	var connects atomic.Int32
	apps := make(chan string, 4)
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connects.Add(1)
		apps <- r.URL.Query().Get("app")
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-block
	}))
	t.Cleanup(func() { close(block); server.Close() })

	s := newTestStream(t, server.URL, "")
	s.Open()

	if got := <-apps; got != "all" {
		t.Fatalf("first connection scoped to %q, want all", got)
	}

	s.SetApp("radarr")
	if got := <-apps; got != "radarr" {
		t.Fatalf("after SetApp, connection scoped to %q, want radarr", got)
	}
	waitFor(t, "exactly one live connection", func() bool {
		return connects.Load() == 2
	})
}

func TestStream_ClearEmptiesBufferOnly(t *testing.T) {
	var connects atomic.Int32
	block := make(chan struct{})
	server := httptest.NewServer(sseHandler(t, &connects, func(conn int32, w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: one\n\n")
		flush()
		<-block
	}))
	t.Cleanup(func() { close(block); server.Close() })

	s := newTestStream(t, server.URL, "")
	s.Open()

	waitFor(t, "entry", func() bool {
		entries, _ := s.Entries()
		return len(entries) == 1
	})

	_, beforeVersion := s.Entries()
	s.Clear()
	entries, afterVersion := s.Entries()
	if len(entries) != 0 {
		t.Fatalf("buffer not empty after Clear")
	}
	if afterVersion == beforeVersion {
		t.Fatalf("Clear did not bump the change counter")
	}
	if s.State() != StateConnected {
		t.Fatalf("Clear changed connection state to %v", s.State())
	}
}

func TestStream_CloseStopsReconnecting(t *testing.T) {
	var connects atomic.Int32
	server := httptest.NewServer(sseHandler(t, &connects, func(conn int32, w http.ResponseWriter, flush func()) {
		// Drop immediately so the stream keeps retrying until closed.
	}))
	t.Cleanup(server.Close)

	s := newTestStream(t, server.URL, "")
	s.Open()

	waitFor(t, "first connect", func() bool { return connects.Load() >= 1 })
	s.Close()

	if s.State() != StateDisconnected {
		t.Fatalf("state after Close = %v, want disconnected", s.State())
	}
	settled := connects.Load()
	time.Sleep(200 * time.Millisecond)
	if connects.Load() != settled {
		t.Fatalf("stream kept reconnecting after Close")
	}

	// Closing twice is safe.
	s.Close()
}

func TestParseEntry(t *testing.T) {
	entry := ParseEntry(`{"level": "error", "message": "boom"}`)
	if entry.Level != "error" || entry.Message != "boom" {
		t.Fatalf("entry = %#v", entry)
	}

	entry = ParseEntry(`{"message": "no level"}`)
	if entry.Level != "info" {
		t.Fatalf("missing level defaulted to %q, want info", entry.Level)
	}

	entry = ParseEntry("not json at all")
	if entry.Level != "info" || entry.Message != "not json at all" {
		t.Fatalf("plain entry = %#v", entry)
	}

	if _, ok := any(entry).(huntarr.LogEntry); !ok {
		t.Fatalf("ParseEntry must return a wire log entry")
	}
}
