// internal/transport/dialer.go
package transport

import (
	"context"
	"time"

	"vascomart-client/internal/common/logger"
)

// FallbackDialer tries a native WebSocket first and transparently falls
// back to the long-polling emulation when the socket cannot be opened.
// Retrying a failed connection stays the protocol client's job; the
// fallback only changes which channel flavor a single dial produces.
type FallbackDialer struct {
	ws       *WebSocketDialer
	longPoll *LongPollDialer
	log      logger.Logger
}

func NewFallbackDialer(handshakeTimeout time.Duration, enableLongPoll bool, log logger.Logger) *FallbackDialer {
	d := &FallbackDialer{
		ws:  &WebSocketDialer{HandshakeTimeout: handshakeTimeout},
		log: log,
	}
	if enableLongPoll {
		d.longPoll = &LongPollDialer{}
	}
	return d
}

func (d *FallbackDialer) Dial(ctx context.Context, endpoint string) (Channel, error) {
	ch, err := d.ws.Dial(ctx, endpoint)
	if err == nil {
		return ch, nil
	}
	if d.longPoll == nil {
		return nil, err
	}

	d.log.Warn("websocket dial failed, falling back to long polling", map[string]interface{}{
		"endpoint": endpoint,
		"error":    err.Error(),
	})
	return d.longPoll.Dial(ctx, endpoint)
}
