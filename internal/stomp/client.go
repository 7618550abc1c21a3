// internal/stomp/client.go
package stomp

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"vascomart-client/internal/common/errors"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/metrics"
	"vascomart-client/internal/transport"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// peerSilenceFactor is the multiple of the heartbeat interval after
// which a silent peer counts as a dead connection.
const peerSilenceFactor = 2.5

// Message is one MESSAGE frame delivered to a subscription handler.
type Message struct {
	Topic   string
	Body    []byte
	Headers map[string]string
}

// MessageHandler is invoked once per inbound frame addressed to the
// subscribed topic, in receipt order.
type MessageHandler func(msg *Message)

// Options configures a Client.
type Options struct {
	Endpoint          string
	Dialer            transport.Dialer
	ReconnectDelay    time.Duration
	HeartbeatIncoming time.Duration
	HeartbeatOutgoing time.Duration
	ConnectTimeout    time.Duration
	Logger            logger.Logger
}

func (o *Options) applyDefaults() {
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.HeartbeatIncoming == 0 {
		o.HeartbeatIncoming = 4 * time.Second
	}
	if o.HeartbeatOutgoing == 0 {
		o.HeartbeatOutgoing = 4 * time.Second
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logger.NewNoOpLogger()
	}
}

type subscription struct {
	id      string
	topic   string
	handler MessageHandler
}

// Subscription is the consumer's handle on an active topic
// subscription. Unsubscribe is safe after the connection dropped.
type Subscription struct {
	id    string
	topic string
	c     *Client
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.c == nil {
		return
	}
	s.c.unsubscribe(s)
}

// Client layers the STOMP pub/sub protocol on a transport channel and
// owns the connect/reconnect lifecycle:
//
//	Disconnected -> Connecting -> Connected -> Disconnecting -> Disconnected
//
// with Error reachable from Connecting/Connected, cycling back to
// Connecting after a fixed backoff until Deactivate.
//
// The client does not re-establish topic subscriptions across
// reconnects; each connection segment starts with an empty subscription
// table and the consumer subscribes again from its connect callback.
type Client struct {
	opts Options
	log  logger.Logger

	mu       sync.Mutex
	state    State
	active   bool
	subs     map[string]*subscription
	subSeq   int
	ch       transport.Channel
	lastRecv time.Time

	onConnect    func()
	onDisconnect func(err error)

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewClient(opts Options) *Client {
	opts.applyDefaults()
	return &Client{
		opts:  opts,
		log:   opts.Logger.WithFields(map[string]interface{}{"endpoint": opts.Endpoint}),
		state: StateDisconnected,
		subs:  make(map[string]*subscription),
	}
}

// OnConnect registers a callback invoked on every successful connect,
// including automatic reconnects. Register before Activate.
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
}

// OnDisconnect registers a callback invoked whenever an established or
// in-progress connection fails. Register before Activate.
func (c *Client) OnDisconnect(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate begins connection attempts. Idempotent while already
// connecting or connected.
func (c *Client) Activate() {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.stop = make(chan struct{})
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run()
}

// Deactivate closes the channel, drops all subscriptions and returns to
// Disconnected. Safe to call multiple times and after the owning
// consumer is gone.
func (c *Client) Deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.setStateLocked(StateDisconnecting)
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.subs = make(map[string]*subscription)
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()
}

// Subscribe registers handler for frames addressed to topic. Valid only
// while connected; at most one active subscription per topic per
// connection segment.
func (c *Client) Subscribe(topic string, handler MessageHandler) (*Subscription, error) {
	c.mu.Lock()
	if c.state != StateConnected || c.ch == nil {
		c.mu.Unlock()
		return nil, errors.NewNotConnectedError("subscribe")
	}
	if _, exists := c.subs[topic]; exists {
		c.mu.Unlock()
		return nil, errors.NewDuplicateSubscribeError(topic)
	}
	c.subSeq++
	id := fmt.Sprintf("sub-%d", c.subSeq)
	c.subs[topic] = &subscription{id: id, topic: topic, handler: handler}
	ch := c.ch
	c.mu.Unlock()

	frame := NewFrame(CmdSubscribe, "id", id, "destination", topic, "ack", "auto")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ch.Send(ctx, frame.Marshal()); err != nil {
		c.mu.Lock()
		delete(c.subs, topic)
		c.mu.Unlock()
		return nil, err
	}

	c.log.Info("subscribed to topic", map[string]interface{}{"topic": topic, "id": id})
	return &Subscription{id: id, topic: topic, c: c}, nil
}

func (c *Client) unsubscribe(s *Subscription) {
	c.mu.Lock()
	sub, exists := c.subs[s.topic]
	if !exists || sub.id != s.id {
		// subscription belongs to an earlier connection segment
		c.mu.Unlock()
		return
	}
	delete(c.subs, s.topic)
	ch := c.ch
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || ch == nil {
		return
	}
	frame := NewFrame(CmdUnsubscribe, "id", s.id)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ch.Send(ctx, frame.Marshal()); err != nil {
		c.log.Debug("unsubscribe frame not sent", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Client) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		err := c.runOnce()
		if err == nil {
			// clean teardown requested
			return
		}

		c.log.Warn("connection lost, retrying after backoff", map[string]interface{}{
			"error":   err.Error(),
			"backoff": c.opts.ReconnectDelay.String(),
		})
		c.setState(StateError)
		c.notifyDisconnect(err)

		select {
		case <-c.stop:
			return
		case <-time.After(c.opts.ReconnectDelay):
			metrics.Reconnects.Inc()
		}
	}
}

// runOnce drives a single connection segment from dial to failure or
// deliberate shutdown. A nil return means Deactivate was requested.
func (c *Client) runOnce() error {
	c.setState(StateConnecting)

	dialCtx, cancel := context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-dialCtx.Done():
		}
	}()
	ch, err := c.opts.Dialer.Dial(dialCtx, c.opts.Endpoint)
	cancel()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ch = ch
	c.lastRecv = time.Now()
	c.mu.Unlock()

	defer func() {
		_ = ch.Close()
		c.mu.Lock()
		c.ch = nil
		// the segment is over; its subscriptions die with it
		c.subs = make(map[string]*subscription)
		c.mu.Unlock()
	}()

	sendTicker := time.NewTicker(c.opts.HeartbeatOutgoing)
	defer sendTicker.Stop()
	checkTicker := time.NewTicker(c.opts.HeartbeatIncoming)
	defer checkTicker.Stop()

	maxSilence := time.Duration(float64(c.opts.HeartbeatIncoming) * peerSilenceFactor)

	for {
		select {
		case <-c.stop:
			c.sendDisconnect(ch)
			return nil

		case ev, ok := <-ch.Events():
			if !ok {
				return errors.NewTransportClosedError("event stream ended")
			}
			c.touch()

			switch ev.Kind {
			case transport.EventOpen:
				if err := c.sendConnect(ch); err != nil {
					return err
				}

			case transport.EventMessage:
				if err := c.handleWireData(ev.Data); err != nil {
					return err
				}

			case transport.EventError:
				c.log.Warn("transport error", map[string]interface{}{"error": ev.Err.Error()})

			case transport.EventClose:
				return errors.NewTransportClosedError(ev.Reason)
			}

		case <-sendTicker.C:
			sendCtx, sendCancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := ch.Send(sendCtx, Heartbeat())
			sendCancel()
			if err != nil {
				return err
			}

		case <-checkTicker.C:
			if silence := c.sinceLastRecv(); silence > maxSilence {
				return errors.NewHeartbeatTimeoutError(silence)
			}
		}
	}
}

func (c *Client) handleWireData(data []byte) error {
	frame, err := Parse(data)
	if err != nil {
		return errors.NewProtocolError(err.Error())
	}
	if frame == nil {
		// heartbeat, lastRecv already touched
		return nil
	}

	switch frame.Command {
	case CmdConnected:
		c.setState(StateConnected)
		c.log.Info("connected to broker", map[string]interface{}{
			"heartBeat": frame.Headers["heart-beat"],
		})
		c.mu.Lock()
		cb := c.onConnect
		c.mu.Unlock()
		if cb != nil {
			// synchronous so the consumer subscribes before the next
			// frame is processed
			cb()
		}
		return nil

	case CmdMessage:
		topic := frame.Headers["destination"]
		c.mu.Lock()
		sub := c.subs[topic]
		c.mu.Unlock()
		if sub == nil {
			c.log.Debug("frame for unsubscribed destination", map[string]interface{}{"topic": topic})
			return nil
		}
		metrics.FramesReceived.WithLabelValues(topic).Inc()
		sub.handler(&Message{Topic: topic, Body: frame.Body, Headers: frame.Headers})
		return nil

	case CmdError:
		return errors.NewBrokerRejectedError(frame.Headers["message"])

	case CmdReceipt:
		return nil

	default:
		return errors.NewProtocolError(fmt.Sprintf("unexpected command %s", frame.Command))
	}
}

func (c *Client) sendConnect(ch transport.Channel) error {
	host := "localhost"
	if u, err := url.Parse(c.opts.Endpoint); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	beat := fmt.Sprintf("%d,%d",
		c.opts.HeartbeatOutgoing.Milliseconds(),
		c.opts.HeartbeatIncoming.Milliseconds())

	frame := NewFrame(CmdConnect,
		"accept-version", "1.2",
		"host", host,
		"heart-beat", beat)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ch.Send(ctx, frame.Marshal())
}

func (c *Client) sendDisconnect(ch transport.Channel) {
	frame := NewFrame(CmdDisconnect)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ch.Send(ctx, frame.Marshal()); err != nil {
		c.log.Debug("disconnect frame not sent", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastRecv = time.Now()
	c.mu.Unlock()
}

func (c *Client) sinceLastRecv() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastRecv)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

func (c *Client) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	switch s {
	case StateConnected:
		metrics.ConnectionState.Set(2)
	case StateConnecting:
		metrics.ConnectionState.Set(1)
	default:
		metrics.ConnectionState.Set(0)
	}
}

func (c *Client) notifyDisconnect(err error) {
	c.mu.Lock()
	cb := c.onDisconnect
	c.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}
