package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

// chatServerStub speaks just enough of the wire protocol to exercise the
// client: it records join-room frames and echoes send-message intents back as
// new-message envelopes with a server-assigned id.
type chatServerStub struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	joins    []string
	conns    []*websocket.Conn
	seq      int
	dropNext bool // close the connection right after its next join
}

func newChatServerStub(t *testing.T) *chatServerStub {
	t.Helper()
	s := &chatServerStub{}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *chatServerStub) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// closeConns closes the upgraded websocket connections directly:
// CloseClientConnections does not cover hijacked connections, so killing the
// server alone never surfaces a read error on the client side.
func (s *chatServerStub) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
}

func (s *chatServerStub) joinCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.joins)
}

func (s *chatServerStub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame chattypes.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		switch frame.Event {
		case chattypes.EventJoinRoom:
			var ref chattypes.RoomRef
			_ = json.Unmarshal(frame.Data, &ref)
			s.mu.Lock()
			s.joins = append(s.joins, ref.ConversationID)
			drop := s.dropNext
			s.dropNext = false
			s.mu.Unlock()
			if drop {
				return
			}

		case chattypes.EventSendMessage:
			var intent chattypes.SendMessage
			_ = json.Unmarshal(frame.Data, &intent)
			s.mu.Lock()
			s.seq++
			id := fmt.Sprintf("srv-%d", s.seq)
			s.mu.Unlock()

			payload, _ := chattypes.Encode(chattypes.EventNewMessage, chattypes.Envelope{
				ID:             id,
				ClientID:       intent.ClientID,
				ConversationID: intent.ConversationID,
				SenderID:       "1",
				Type:           intent.Type,
				Content:        intent.Content,
				CreatedAt:      time.Now(),
			})
			_ = conn.WriteMessage(websocket.TextMessage, payload)
		}
	}
}

func testRealtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		ReconnectAttempts: 5,
		ReconnectDelay:    20 * time.Millisecond,
		TypingStopAfter:   time.Second,
	}
}

func TestClientSendReconcilesOwnEcho(t *testing.T) {
	stub := newChatServerStub(t)
	c := NewClient(stub.wsURL(), "test-token", testRealtimeConfig())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	tl, err := c.JoinConversation("c1")
	require.NoError(t, err)

	_, err = c.Send("c1", "hello")
	require.NoError(t, err)

	// Optimistic entry is visible immediately.
	require.Equal(t, 1, tl.Len())

	require.Eventually(t, func() bool {
		return tl.PendingCount() == 0
	}, time.Second, 10*time.Millisecond, "echo never confirmed the optimistic entry")

	entries := tl.Entries()
	require.Len(t, entries, 1, "own echo must not duplicate the optimistic entry")
	require.Equal(t, "srv-1", entries[0].ID)
	require.Equal(t, "hello", entries[0].Content)
}

func TestClientReconnectRejoinsActiveRoom(t *testing.T) {
	stub := newChatServerStub(t)
	stub.mu.Lock()
	stub.dropNext = true
	stub.mu.Unlock()

	c := NewClient(stub.wsURL(), "test-token", testRealtimeConfig())

	var states []State
	var statesMu sync.Mutex
	c.OnStateChange(func(s State) {
		statesMu.Lock()
		states = append(states, s)
		statesMu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	_, err := c.JoinConversation("c1")
	require.NoError(t, err)

	// The server drops the connection after that join; the client must come
	// back and join again on its own.
	require.Eventually(t, func() bool {
		return stub.joinCount() == 2 && c.State() == StateConnected
	}, 2*time.Second, 10*time.Millisecond)

	statesMu.Lock()
	defer statesMu.Unlock()
	require.Contains(t, states, StateReconnecting)
}

func TestClientGivesUpAfterBoundedAttempts(t *testing.T) {
	stub := newChatServerStub(t)
	cfg := config.RealtimeConfig{ReconnectAttempts: 2, ReconnectDelay: 10 * time.Millisecond}

	c := NewClient(stub.wsURL(), "test-token", cfg)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	// Kill the server so every reconnect attempt fails.
	stub.srv.CloseClientConnections()
	stub.srv.Close()
	stub.closeConns()

	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, 2*time.Second, 10*time.Millisecond, "client should land in disconnected after exhausting attempts")
}

func TestClientWriteWhileDisconnected(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws/chat", "t", testRealtimeConfig())
	_, err := c.JoinConversation("c1")
	require.Error(t, err)

	// The optimistic entry survives a failed send.
	clientID, err := c.Send("c1", "offline")
	require.Error(t, err)
	require.NotEmpty(t, clientID)
	require.Equal(t, 1, c.Timeline("c1").Len())
}
