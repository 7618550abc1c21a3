// Package transport provides the bidirectional channel abstraction the
// STOMP client runs on, with a native WebSocket implementation and a
// long-polling emulation used when a WebSocket cannot be established.
package transport

import "context"

// EventKind identifies a channel lifecycle event.
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventClose
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one occurrence on a channel: an open handshake, an inbound
// message, a close with reason, or a low-level error.
type Event struct {
	Kind   EventKind
	Data   []byte
	Reason string
	Err    error
}

// Channel is a socket-like bidirectional message channel. The channel
// does not interpret message content and never retries on its own;
// failures surface as error and close events.
type Channel interface {
	// Send writes one outbound message.
	Send(ctx context.Context, data []byte) error

	// Events returns the event stream. The channel closes it after the
	// final close event.
	Events() <-chan Event

	// Close tears the channel down. Safe to call multiple times.
	Close() error
}

// Dialer establishes a Channel to a broker endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Channel, error)
}
