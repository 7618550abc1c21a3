// Package session owns one connection lifetime of the notification
// pipeline: it activates the protocol client, subscribes the order
// topic on every connect, funnels frames through dedup, normalization,
// the store and the alert dispatcher, and guards every async callback
// against teardown.
package session

import (
	"context"
	"sync"
	"time"

	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/metrics"
	"vascomart-client/internal/common/observability"
	"vascomart-client/internal/models"
	"vascomart-client/internal/notify"
	"vascomart-client/internal/notify/alert"
)

// Status is the connectivity indicator surfaced to the UI.
type Status int

const (
	StatusOffline Status = iota
	StatusLive
)

func (s Status) String() string {
	if s == StatusLive {
		return "Live"
	}
	return "Offline"
}

// Unsubscriber releases a topic subscription.
type Unsubscriber interface {
	Unsubscribe()
}

// Broker is the protocol client surface the session drives.
// *stomp.Client satisfies it through NewStompBroker.
type Broker interface {
	OnConnect(fn func())
	OnDisconnect(fn func(err error))
	Activate()
	Subscribe(topic string, handler func(body []byte)) (Unsubscriber, error)
	Deactivate()
}

// Options configures a Session.
type Options struct {
	Broker     Broker
	Topic      string
	Store      *notify.Store
	Normalizer *notify.Normalizer
	Dispatcher *alert.Dispatcher
	History    *notify.RedisHistory
	Logger     logger.Logger
	Obs        *observability.Observability

	// OnNotification fires after a notification is stored, on the frame
	// delivery goroutine.
	OnNotification func(n models.Notification)

	// OnStatus fires on Live/Offline transitions.
	OnStatus func(s Status)
}

// Session is a single connection lifetime. The dedup key set and the
// store are owned exclusively by the running session.
type Session struct {
	opts Options
	log  logger.Logger

	mu      sync.Mutex
	seen    map[string]struct{}
	sub     Unsubscriber
	status  Status
	started bool
	closed  bool
}

func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = notify.NewNormalizer()
	}
	if opts.Topic == "" {
		opts.Topic = "/topic/orders"
	}
	return &Session{
		opts: opts,
		log:  opts.Logger.WithFields(map[string]interface{}{"topic": opts.Topic}),
		seen: make(map[string]struct{}),
	}
}

// Start activates the broker. Idempotent.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.opts.Broker.OnConnect(s.handleConnect)
	s.opts.Broker.OnDisconnect(s.handleDisconnect)
	s.opts.Broker.Activate()
}

// Stop tears the session down: unsubscribe, deactivate, clear the
// dedup set, flip the guard so late frames become no-ops. Safe to call
// multiple times.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.seen = make(map[string]struct{})
	s.setStatusLocked(StatusOffline)
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	s.opts.Broker.Deactivate()
	s.log.Info("session stopped", nil)
}

// Status returns the current connectivity indicator.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Store exposes the session's notification store.
func (s *Session) Store() *notify.Store {
	return s.opts.Store
}

// handleConnect runs on every successful connect, including automatic
// reconnects: the subscription is re-established here because each
// connection segment starts with an empty subscription table.
func (s *Session) handleConnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.setStatusLocked(StatusLive)
	s.mu.Unlock()

	sub, err := s.opts.Broker.Subscribe(s.opts.Topic, s.handleFrame)
	if err != nil {
		s.log.Error("subscribe failed", map[string]interface{}{"error": err.Error()})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

func (s *Session) handleDisconnect(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.sub = nil
	s.setStatusLocked(StatusOffline)
	s.mu.Unlock()

	s.log.Warn("connection lost", map[string]interface{}{"error": err.Error()})
}

// handleFrame processes one inbound frame body: dedup check first, then
// normalize, store, mirror to history and dispatch alerts. Frames are
// handled in receipt order on the delivery goroutine.
func (s *Session) handleFrame(body []byte) {
	start := time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	key := s.opts.Normalizer.DedupKey(body)
	if _, dup := s.seen[key]; dup {
		s.mu.Unlock()
		metrics.DedupDropped.Inc()
		s.recordFrame(start, "dedup")
		return
	}
	s.seen[key] = struct{}{}
	s.mu.Unlock()

	n := s.opts.Normalizer.Normalize(body)
	if n == nil {
		s.recordFrame(start, "dropped")
		return
	}

	// Insert under the same lock acquisition as the closed check so a
	// concurrent Stop cannot slip in between guard and mutation.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.opts.Store.Insert(n)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.opts.History != nil {
		if err := s.opts.History.Append(ctx, n); err != nil {
			s.log.Warn("history append failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.opts.Dispatcher != nil {
		s.opts.Dispatcher.Dispatch(ctx, n)
	}
	if s.opts.OnNotification != nil {
		s.opts.OnNotification(*n)
	}

	s.recordFrame(start, "stored")
}

func (s *Session) recordFrame(start time.Time, outcome string) {
	if s.opts.Obs == nil {
		return
	}
	ctx := context.Background()
	s.opts.Obs.RecordFrameProcessed(ctx, outcome)
	s.opts.Obs.RecordFrameDuration(ctx, time.Since(start), outcome)
}

func (s *Session) setStatusLocked(status Status) {
	if s.status == status {
		return
	}
	s.status = status
	if s.opts.OnStatus != nil {
		// fire outside the lock would race with Stop; keep it simple
		// and require cheap handlers
		go s.opts.OnStatus(status)
	}
}

// Manager enforces the single-active-session policy: starting a new
// session fully stops the previous one first, so two sessions never
// hold subscriptions at the same time.
type Manager struct {
	mu      sync.Mutex
	current *Session
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Activate(s *Session) {
	m.mu.Lock()
	old := m.current
	m.current = s
	m.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	s.Start()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	old := m.current
	m.current = nil
	m.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}
