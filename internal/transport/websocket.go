// internal/transport/websocket.go
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vascomart-client/internal/common/errors"
)

// WebSocketDialer dials the broker over a native WebSocket.
type WebSocketDialer struct {
	HandshakeTimeout time.Duration
}

func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Channel, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.NewTransportDialError(endpoint, err)
	}

	ch := &wsChannel{
		conn:   conn,
		events: make(chan Event, 32),
		done:   make(chan struct{}),
	}
	ch.emit(Event{Kind: EventOpen})
	go ch.readLoop()
	return ch, nil
}

type wsChannel struct {
	conn      *websocket.Conn
	events    chan Event
	done      chan struct{}
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *wsChannel) Send(ctx context.Context, data []byte) error {
	// gorilla allows a single concurrent writer
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	} else {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.NewTransportFailureError(err)
	}
	return nil
}

func (c *wsChannel) Events() <-chan Event {
	return c.events
}

func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	return nil
}

// emit delivers an event unless the channel was already torn down; a
// consumer that stopped draining must not wedge the read loop.
func (c *wsChannel) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *wsChannel) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			reason := "read failed"
			if closeErr, ok := err.(*websocket.CloseError); ok {
				reason = closeErr.Text
				if reason == "" {
					reason = closeErr.Error()
				}
			} else {
				c.emit(Event{Kind: EventError, Err: errors.NewTransportFailureError(err)})
			}
			c.emit(Event{Kind: EventClose, Reason: reason})
			_ = c.Close()
			return
		}
		c.emit(Event{Kind: EventMessage, Data: data})
	}
}
