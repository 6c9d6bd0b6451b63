// Package sseclient maintains a long-lived connection to the notification
// stream endpoint and surfaces incoming events to in-process listeners,
// recovering from transient network failures with capped exponential
// backoff.
//
// The connection is modeled as an explicit state machine
// (Idle/Connecting/Open/Closed/Failed) with a single owned retry timer that
// is cancelled on teardown, so remounting callers never leak timers or
// duplicate streams. Frames are delivered to listeners in arrival order; no
// deduplication is performed against the history API.
package sseclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// State is the connection lifecycle state.
type State string

// Connection states.
const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
)

// Event is one parsed frame from the stream.
type Event struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Listener receives events in arrival order.
type Listener func(Event)

// Config holds the client settings.
type Config struct {
	// URL of the stream endpoint.
	URL string

	// Token is the bearer token sent with the stream request.
	Token string

	// BaseDelay seeds the exponential backoff. Defaults to 500ms.
	BaseDelay time.Duration

	// MaxAttempts is the consecutive-failure ceiling before the client
	// gives up until a manual Reconnect. Defaults to 5.
	MaxAttempts int

	// HTTPClient defaults to http.DefaultClient. It must not set a Timeout,
	// which would sever the long-lived stream.
	HTTPClient *http.Client
}

// Client manages the live connection.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	attempts  int
	listeners []Listener
	onConnect []func()
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a client for the given stream endpoint. Call Start to open
// the connection.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sse_client")),
		state:  StateIdle,
	}
}

// Subscribe registers a listener for incoming events. Listeners registered
// after Start still receive subsequent frames.
func (c *Client) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// OnConnect registers a callback fired each time the stream (re)opens.
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start opens the connection and begins the retry loop. It is a no-op if
// the client is already running.
func (c *Client) Start() {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(ctx)
}

// Close tears the connection down: it cancels the transport, stops any
// pending retry timer, and waits for the run loop to exit. Safe to call
// multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// Reconnect performs the manual reconnect that exits the Failed state: it
// tears down any current loop, resets the failure counter, and starts over.
func (c *Client) Reconnect() {
	c.Close()

	c.mu.Lock()
	c.attempts = 0
	c.state = StateIdle
	c.mu.Unlock()

	c.Start()
}

// run is the reconnect loop: Connecting -> Open -> Closed, retrying with
// exponential backoff until the failure ceiling.
func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		c.setState(StateConnecting)

		err := c.connect(ctx)

		if ctx.Err() != nil {
			c.setState(StateClosed)
			return
		}

		c.setState(StateClosed)
		c.logger.Debug("stream closed", slog.String("error", errString(err)))

		c.mu.Lock()
		c.attempts++
		attempts := c.attempts
		c.mu.Unlock()

		if attempts >= c.cfg.MaxAttempts {
			c.setState(StateFailed)
			c.logger.Warn("reconnect ceiling reached, giving up until manual reconnect",
				slog.Int("attempts", attempts))
			return
		}

		delay := backoffDelay(c.cfg.BaseDelay, attempts)
		c.logger.Debug("scheduling reconnect",
			slog.Int("attempt", attempts),
			slog.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.setState(StateClosed)
			return
		case <-timer.C:
		}
	}
}

// connect opens the stream and pumps frames until it ends. A nil error
// means the server closed the stream cleanly; either way the caller treats
// the connection as closed.
func (c *Client) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected stream status %d", resp.StatusCode)
	}

	c.markOpen()

	scanner := bufio.NewScanner(resp.Body)
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.dispatch([]byte(data.String()))
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// Heartbeat comment, ignore.
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return errors.New("stream ended")
}

// markOpen transitions to Open, resets the failure counter, and fires
// connect callbacks.
func (c *Client) markOpen() {
	c.mu.Lock()
	c.state = StateOpen
	c.attempts = 0
	callbacks := append([]func(){}, c.onConnect...)
	c.mu.Unlock()

	c.logger.Debug("stream open")
	for _, fn := range callbacks {
		fn()
	}
}

// dispatch parses one frame and fans it out to listeners in order.
func (c *Client) dispatch(raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		c.logger.Warn("skipping unparseable frame", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	listeners := append([]Listener{}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// setState transitions the state unless the client already reached the
// terminal Failed state.
func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailed {
		return
	}
	c.state = s
}

// backoffDelay grows exponentially with the consecutive failure count:
// base << attempt, so each retry waits strictly longer than the previous.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
