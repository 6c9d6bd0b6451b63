// Package registry tracks which users currently hold a live push connection
// to this process. It is the only shared mutable state in the fan-out path
// and is guarded by an explicit mutex since handlers run on separate
// goroutines. Entries are process-local: they vanish on restart and are not
// shared across horizontally scaled instances, so a user connected to
// another instance is invisible here. Cross-instance routing is a known
// limitation, not handled at this layer.
package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrConnectionClosed is returned when enqueueing a frame to a connection
// that has already been closed or whose buffer is full (a slow consumer is
// treated the same as a broken pipe).
var ErrConnectionClosed = errors.New("connection closed")

// Connection is a live, write-capable handle to one user's push stream.
// Frames are buffered; the owning HTTP handler drains Frames until Done is
// closed.
type Connection struct {
	userID    uuid.UUID
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// UserID returns the user this connection belongs to.
func (c *Connection) UserID() uuid.UUID { return c.userID }

// Frames returns the channel the stream handler drains to the client.
func (c *Connection) Frames() <-chan []byte { return c.frames }

// Done is closed when the connection is evicted or replaced; the stream
// handler must return when it fires.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Close marks the connection dead. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Enqueue buffers a frame for delivery without blocking. It fails if the
// connection is closed or its buffer is full.
func (c *Connection) Enqueue(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.frames <- frame:
		return nil
	default:
		return ErrConnectionClosed
	}
}

// Registry is a process-wide map from user ID to that user's single live
// connection. At most one connection per user: a newer registration replaces
// the old one (last-connect-wins).
type Registry struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection
	bufferSize  int
}

// New creates an empty registry. bufferSize is the per-connection frame
// buffer; values below 1 fall back to 16.
func New(bufferSize int) *Registry {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &Registry{
		connections: make(map[uuid.UUID]*Connection),
		bufferSize:  bufferSize,
	}
}

// Register creates and stores a connection for userID, replacing any
// existing one. The replaced connection is closed so its handler unblocks
// immediately instead of lingering until a transport timeout.
func (r *Registry) Register(userID uuid.UUID) *Connection {
	conn := &Connection{
		userID: userID,
		frames: make(chan []byte, r.bufferSize),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	prev := r.connections[userID]
	r.connections[userID] = conn
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	return conn
}

// Unregister removes the entry for userID, but only if conn is still the
// registered connection; a stale handle from a replaced connection is a
// no-op against the map. The connection is closed either way. Idempotent.
func (r *Registry) Unregister(userID uuid.UUID, conn *Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	if r.connections[userID] == conn {
		delete(r.connections, userID)
	}
	r.mu.Unlock()

	conn.Close()
}

// Lookup returns the live connection for userID, if any. Never blocks.
func (r *Registry) Lookup(userID uuid.UUID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[userID]
	return conn, ok
}

// Len returns the number of currently registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
