// Package logstream consumes the server's log event stream over SSE.
package logstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// ConnState is the stream connection lifecycle.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	defaultBackoff     = 5 * time.Second
	defaultBufferLimit = 1000
	streamPath         = "/api/logs/stream"
)

// Options configure a Stream.
type Options struct {
	// BaseURL is the backend server root, e.g. http://127.0.0.1:9705.
	BaseURL string
	// App scopes the stream to one integration; empty or "all" means all.
	App string
	// HTTPClient must have no overall timeout; the stream is long-lived.
	HTTPClient *http.Client
	// Backoff is the fixed delay before a reconnect attempt. Zero uses 5s.
	Backoff time.Duration
	// BufferLimit caps the retained trailing window. Zero uses 1000.
	BufferLimit int
	Logger      *log.Logger
}

// Stream owns exactly one server connection at a time and retains a bounded
// trailing window of entries in strict arrival order. It reconnects after a
// fixed backoff, forever, until Close.
type Stream struct {
	baseURL *url.URL
	http    *http.Client
	backoff time.Duration
	limit   int
	logger  *log.Logger

	mu      sync.Mutex
	app     string
	entries []huntarr.LogEntry
	version uint64
	state   ConnState

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Stream in the disconnected state; call Open to connect.
func New(opts Options) (*Stream, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse stream base url: %w", err)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	limit := opts.BufferLimit
	if limit <= 0 {
		limit = defaultBufferLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	app := opts.App
	if app == "" {
		app = "all"
	}
	return &Stream{
		baseURL: base,
		http:    client,
		backoff: backoff,
		limit:   limit,
		logger:  logger,
		app:     app,
		state:   StateDisconnected,
	}, nil
}

// Open starts the consume loop. Opening an already-open stream is a no-op.
func (s *Stream) Open() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.run(ctx)
	}()
}

// Close tears down the connection and stops reconnecting. It blocks until
// the consume goroutine has exited, so no handle outlives the stream.
func (s *Stream) Close() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.setState(StateDisconnected)
}

// SetApp switches the integration filter. The current connection is closed
// and a new one scoped to the filter is opened; the buffer is retained.
func (s *Stream) SetApp(app string) {
	if app == "" {
		app = "all"
	}
	s.mu.Lock()
	if s.app == app {
		s.mu.Unlock()
		return
	}
	s.app = app
	open := s.cancel != nil
	s.mu.Unlock()

	if open {
		s.Close()
		s.Open()
	}
}

// App returns the current integration filter.
func (s *Stream) App() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

// State returns the current connection state.
func (s *Stream) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Entries returns a copy of the buffered window plus a change counter, so a
// render loop can cheaply detect that nothing new arrived.
func (s *Stream) Entries() ([]huntarr.LogEntry, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]huntarr.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out, s.version
}

// Clear empties the local buffer. Server-side history and the connection are
// unaffected.
func (s *Stream) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.version++
}

func (s *Stream) run(ctx context.Context) {
	for {
		s.setState(StateConnecting)
		err := s.consume(ctx)
		if ctx.Err() != nil {
			s.setState(StateDisconnected)
			return
		}
		s.setState(StateDisconnected)
		if err != nil {
			s.logger.Warn("log stream dropped", "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff):
		}
	}
}

// consume opens one connection and reads events until it breaks.
func (s *Stream) consume(ctx context.Context) error {
	s.mu.Lock()
	app := s.app
	s.mu.Unlock()

	rel := &url.URL{Path: streamPath, RawQuery: url.Values{"app": {app}}.Encode()}
	reqURL := s.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	s.setState(StateConnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line ends an event.
			if len(data) > 0 {
				s.append(ParseEntry(strings.Join(data, "\n")))
				data = data[:0]
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// Comment/keep-alive, ignored.
		default:
			// Field we don't use (event:, id:, retry:), ignored.
		}
	}
	if len(data) > 0 {
		s.append(ParseEntry(strings.Join(data, "\n")))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func (s *Stream) append(entry huntarr.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if overflow := len(s.entries) - s.limit; overflow > 0 {
		s.entries = append([]huntarr.LogEntry(nil), s.entries[overflow:]...)
	}
	s.version++
}

func (s *Stream) setState(state ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ParseEntry decodes one event payload. JSON payloads become structured
// entries; anything else is a plain informational message.
func ParseEntry(payload string) huntarr.LogEntry {
	var entry huntarr.LogEntry
	if err := json.Unmarshal([]byte(payload), &entry); err == nil && entry.Message != "" {
		if entry.Level == "" {
			entry.Level = "info"
		}
		return entry
	}
	return huntarr.LogEntry{Level: "info", Message: payload}
}
