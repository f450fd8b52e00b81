package realtime

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendQueueFull  = errors.New("connection send queue full")
	ErrGroupNameEmpty = errors.New("group name is empty")
)

// ItemTenantIdentifier is the connection item that remembers which tenant
// the connection joined. Inbound messages re-resolve their tenant from it.
const ItemTenantIdentifier = "tenant_identifier"

const defaultSendQueueSize = 256

type State int32

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is one realtime client connection. Its items live as long as the
// connection does; outbound frames go through a bounded queue drained by the
// transport.
type Conn struct {
	id     string
	userID string
	send   chan []byte
	closed chan struct{}

	mu    sync.RWMutex
	items map[string]string
	state State
	group string
}

func NewConn(userID string, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = defaultSendQueueSize
	}
	return &Conn{
		id:     uuid.New().String(),
		userID: userID,
		send:   make(chan []byte, queueSize),
		closed: make(chan struct{}),
		items:  make(map[string]string),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) UserID() string {
	return c.userID
}

func (c *Conn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Group returns the group the connection belongs to, or "".
func (c *Conn) Group() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group
}

func (c *Conn) SetItem(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Item implements tenancy.Source. Connections expose only their items.
func (c *Conn) Item(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[key]
}

func (c *Conn) Claim(string) string      { return "" }
func (c *Conn) Header(string) string     { return "" }
func (c *Conn) RouteParam(string) string { return "" }
func (c *Conn) Query(string) string      { return "" }

// Send queues an outbound frame without blocking.
func (c *Conn) Send(frame []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.closed:
		return ErrConnClosed
	default:
		return ErrSendQueueFull
	}
}

// Outbound is drained by the transport write loop.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

// join is called by the Registry while it holds its lock.
func (c *Conn) join(group string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrConnClosed
	}
	c.state = StateJoined
	c.group = group
	return nil
}

// Close marks the connection closed. It is idempotent.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	c.group = ""
	close(c.closed)
}
