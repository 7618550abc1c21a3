// internal/transport/longpoll.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vascomart-client/internal/common/errors"
)

// LongPollDialer emulates the channel abstraction over plain HTTP using
// SockJS-style xhr polling, for environments where a native WebSocket
// cannot be established. The event surface is identical to the
// WebSocket channel.
type LongPollDialer struct {
	Client      *http.Client
	PollTimeout time.Duration
}

func (d *LongPollDialer) Dial(ctx context.Context, endpoint string) (Channel, error) {
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 35 * time.Second}
	}

	base := fmt.Sprintf("%s/%03d/%s", wsToHTTP(endpoint), rand.Intn(1000), uuid.New().String()[:8])

	// SockJS opens a session on the first poll, answering "o".
	body, err := post(ctx, client, base+"/xhr", nil)
	if err != nil {
		return nil, errors.NewTransportDialError(endpoint, err)
	}
	if len(body) == 0 || body[0] != 'o' {
		return nil, errors.NewTransportDialError(endpoint,
			fmt.Errorf("unexpected open frame: %q", string(body)))
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	ch := &lpChannel{
		base:   base,
		client: client,
		events: make(chan Event, 32),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	ch.emit(Event{Kind: EventOpen})
	go ch.pollLoop(pollCtx)
	return ch, nil
}

type lpChannel struct {
	base      string
	client    *http.Client
	events    chan Event
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (c *lpChannel) Send(ctx context.Context, data []byte) error {
	// xhr_send carries a JSON array of message strings
	payload, err := json.Marshal([]string{string(data)})
	if err != nil {
		return errors.NewTransportFailureError(err)
	}
	if _, err := post(ctx, c.client, c.base+"/xhr_send", payload); err != nil {
		return errors.NewTransportFailureError(err)
	}
	return nil
}

func (c *lpChannel) Events() <-chan Event {
	return c.events
}

func (c *lpChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
	return nil
}

func (c *lpChannel) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *lpChannel) pollLoop(ctx context.Context) {
	defer close(c.events)
	for {
		body, err := post(ctx, c.client, c.base+"/xhr", nil)
		if err != nil {
			if ctx.Err() != nil {
				c.emit(Event{Kind: EventClose, Reason: "closed"})
				return
			}
			c.emit(Event{Kind: EventError, Err: errors.NewTransportFailureError(err)})
			c.emit(Event{Kind: EventClose, Reason: "poll failed"})
			_ = c.Close()
			return
		}
		if len(body) == 0 {
			continue
		}

		switch body[0] {
		case 'h', 'o':
			// heartbeat / duplicate open, nothing to deliver
			c.emit(Event{Kind: EventMessage, Data: []byte("\n")})
		case 'a':
			var msgs []string
			if err := json.Unmarshal(bytes.TrimSpace(body[1:]), &msgs); err != nil {
				c.emit(Event{Kind: EventError, Err: errors.NewTransportFailureError(err)})
				continue
			}
			for _, m := range msgs {
				c.emit(Event{Kind: EventMessage, Data: []byte(m)})
			}
		case 'c':
			c.emit(Event{Kind: EventClose, Reason: strings.TrimSpace(string(body[1:]))})
			_ = c.Close()
			return
		}
	}
}

func post(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("poll returned status %d", resp.StatusCode)
	}
	return data, nil
}

func wsToHTTP(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "ws://"):
		return "http://" + strings.TrimPrefix(endpoint, "ws://")
	case strings.HasPrefix(endpoint, "wss://"):
		return "https://" + strings.TrimPrefix(endpoint, "wss://")
	default:
		return endpoint
	}
}
