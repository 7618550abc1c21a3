// internal/transport/longpoll_test.go
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vascomart-client/internal/common/logger"
)

// ==========================
// SockJS Stub
// ==========================

// sockJSStub answers xhr polls the way a SockJS server does: "o" on the
// first poll of a session, then whatever frames the test queued, with
// "h" heartbeats while the queue is empty.
type sockJSStub struct {
	*httptest.Server
	mu     sync.Mutex
	opened map[string]bool
	frames chan string
	sent   chan string
}

func newSockJSStub(t *testing.T) *sockJSStub {
	t.Helper()
	s := &sockJSStub{
		opened: make(map[string]bool),
		frames: make(chan string, 16),
		sent:   make(chan string, 16),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/xhr_send"):
			body, _ := io.ReadAll(r.Body)
			s.sent <- string(body)
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/xhr"):
			session := strings.TrimSuffix(r.URL.Path, "/xhr")
			s.mu.Lock()
			first := !s.opened[session]
			s.opened[session] = true
			s.mu.Unlock()
			if first {
				io.WriteString(w, "o\n")
				return
			}
			select {
			case frame := <-s.frames:
				io.WriteString(w, frame)
			case <-time.After(50 * time.Millisecond):
				io.WriteString(w, "h\n")
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *sockJSStub) endpoint() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *sockJSStub) queue(frame string) {
	s.frames <- frame
}

// ==========================
// Long Poll Channel Tests
// ==========================

func TestLongPollDialer_OpenAndReceive(t *testing.T) {
	stub := newSockJSStub(t)
	dialer := &LongPollDialer{}

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	require.NoError(t, err)
	defer ch.Close()

	ev := nextEvent(t, ch)
	assert.Equal(t, EventOpen, ev.Kind)

	stub.queue("a[\"MESSAGE\\ndestination:/topic/orders\\n\\n{}\\u0000\"]\n")

	for {
		ev = nextEvent(t, ch)
		require.Equal(t, EventMessage, ev.Kind)
		if string(ev.Data) == "\n" {
			// heartbeat while the queue was empty
			continue
		}
		assert.Equal(t, "MESSAGE\ndestination:/topic/orders\n\n{}\x00", string(ev.Data))
		return
	}
}

func TestLongPollDialer_BatchedFrames(t *testing.T) {
	stub := newSockJSStub(t)
	dialer := &LongPollDialer{}

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	require.NoError(t, err)
	defer ch.Close()

	ev := nextEvent(t, ch)
	require.Equal(t, EventOpen, ev.Kind)

	stub.queue(`a["first","second"]` + "\n")

	var got []string
	for len(got) < 2 {
		ev = nextEvent(t, ch)
		require.Equal(t, EventMessage, ev.Kind)
		if string(ev.Data) == "\n" {
			continue
		}
		got = append(got, string(ev.Data))
	}
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestLongPollChannel_Send(t *testing.T) {
	stub := newSockJSStub(t)
	dialer := &LongPollDialer{}

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(context.Background(), []byte("SUBSCRIBE\nid:sub-1\n\n\x00")))

	select {
	case payload := <-stub.sent:
		var msgs []string
		require.NoError(t, json.Unmarshal([]byte(payload), &msgs))
		require.Len(t, msgs, 1)
		assert.Equal(t, "SUBSCRIBE\nid:sub-1\n\n\x00", msgs[0])
	case <-time.After(2 * time.Second):
		t.Fatal("nothing posted to xhr_send")
	}
}

func TestLongPollDialer_ServerClose(t *testing.T) {
	stub := newSockJSStub(t)
	dialer := &LongPollDialer{}

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	require.NoError(t, err)
	defer ch.Close()

	ev := nextEvent(t, ch)
	require.Equal(t, EventOpen, ev.Kind)

	stub.queue(`c[3000,"Go away!"]` + "\n")

	for {
		ev = nextEvent(t, ch)
		if ev.Kind == EventMessage && string(ev.Data) == "\n" {
			continue
		}
		require.Equal(t, EventClose, ev.Kind)
		assert.Equal(t, `[3000,"Go away!"]`, ev.Reason)
		return
	}
}

func TestLongPollDialer_BadOpenFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "nope")
	}))
	defer server.Close()

	dialer := &LongPollDialer{}
	ch, err := dialer.Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"))
	assert.Error(t, err)
	assert.Nil(t, ch)
}

// ==========================
// Fallback Dialer Tests
// ==========================

func TestFallbackDialer_UsesWebSocketWhenAvailable(t *testing.T) {
	server := newWSTestServer(t)
	dialer := NewFallbackDialer(2*time.Second, true, logger.NewTestLogger(t))

	ch, err := dialer.Dial(context.Background(), server.wsURL())
	require.NoError(t, err)
	defer ch.Close()

	ev := nextEvent(t, ch)
	assert.Equal(t, EventOpen, ev.Kind)
	server.conn(t)
}

func TestFallbackDialer_FallsBackToLongPolling(t *testing.T) {
	// the stub speaks SockJS only, so the websocket handshake fails
	stub := newSockJSStub(t)
	dialer := NewFallbackDialer(2*time.Second, true, logger.NewTestLogger(t))

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	require.NoError(t, err)
	defer ch.Close()

	ev := nextEvent(t, ch)
	assert.Equal(t, EventOpen, ev.Kind)
}

func TestFallbackDialer_Disabled(t *testing.T) {
	stub := newSockJSStub(t)
	dialer := NewFallbackDialer(2*time.Second, false, logger.NewTestLogger(t))

	ch, err := dialer.Dial(context.Background(), stub.endpoint())
	assert.Error(t, err)
	assert.Nil(t, ch)
}
