package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studyhub/internal/chattypes"
)

func recvFrame(t *testing.T, c *Client) chattypes.Frame {
	t.Helper()
	select {
	case payload := <-c.send:
		frame, err := decodeFrame(payload)
		require.NoError(t, err)
		return frame
	case <-time.After(time.Second):
		t.Fatalf("no frame delivered to %s", c.ID)
		return chattypes.Frame{}
	}
}

func requireNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame delivered to %s: %s", c.ID, payload)
		}
	default:
	}
}

func TestFanOutReachesEveryMemberOnce(t *testing.T) {
	h := NewHub()
	sender := newTestClient("sender", 1)
	peer := newTestClient("peer", 2)
	outsider := newTestClient("outsider", 3)
	h.registry.Join(sender, "conv-1")
	h.registry.Join(peer, "conv-1")
	h.registry.Join(outsider, "conv-2")

	env := chattypes.Envelope{
		ID:             "m1",
		ClientID:       "tmp-1",
		ConversationID: "conv-1",
		SenderID:       "1",
		Content:        "hello",
	}
	h.fanOut(publication{envelope: env, mirror: true})

	// The sender gets its own message back; reconciliation happens client-side.
	for _, c := range []*Client{sender, peer} {
		frame := recvFrame(t, c)
		require.Equal(t, chattypes.EventNewMessage, frame.Event)

		var got chattypes.Envelope
		require.NoError(t, json.Unmarshal(frame.Data, &got))
		require.Equal(t, "m1", got.ID)
		require.Equal(t, "tmp-1", got.ClientID)
		requireNoFrame(t, c)
	}
	requireNoFrame(t, outsider)
}

func TestFanOutMirrorsLocalPublicationsOnly(t *testing.T) {
	h := NewHub()
	var mirrored []string
	h.SetMirror(func(env chattypes.Envelope) {
		mirrored = append(mirrored, env.ID)
	})

	h.fanOut(publication{envelope: chattypes.Envelope{ID: "local", ConversationID: "conv-1"}, mirror: true})
	h.fanOut(publication{envelope: chattypes.Envelope{ID: "remote", ConversationID: "conv-1"}, mirror: false})

	require.Equal(t, []string{"local"}, mirrored)
}

func TestTypingRelayExcludesOrigin(t *testing.T) {
	h := NewHub()
	origin := newTestClient("origin", 1)
	peer := newTestClient("peer", 2)
	h.registry.Join(origin, "conv-1")
	h.registry.Join(peer, "conv-1")

	sig := chattypes.TypingSignal{ConversationID: "conv-1", UserID: "1"}
	h.relayTyping(typingRelay{origin: origin, signal: sig, stop: false})
	h.relayTyping(typingRelay{origin: origin, signal: sig, stop: true})

	first := recvFrame(t, peer)
	require.Equal(t, chattypes.EventUserTyping, first.Event)
	second := recvFrame(t, peer)
	require.Equal(t, chattypes.EventUserStopped, second.Event)

	requireNoFrame(t, origin)
}

func TestSlowConsumerIsDropped(t *testing.T) {
	h := NewHub()
	slow := &Client{ID: "slow", UserID: 9, send: make(chan []byte, 1)}
	slow.send <- []byte("stuck") // buffer full
	h.registry.Join(slow, "conv-1")

	h.fanOut(publication{envelope: chattypes.Envelope{ID: "m1", ConversationID: "conv-1"}})

	require.Empty(t, h.registry.MembersOf("conv-1"))

	<-slow.send // the stuck payload
	_, ok := <-slow.send
	require.False(t, ok, "send channel should be closed after drop")
}

func TestHubRunLifecycle(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newTestClient("a", 1)
	b := newTestClient("b", 2)
	h.register <- a
	h.register <- b
	h.join <- membership{client: a, roomID: "conv-1"}
	h.join <- membership{client: b, roomID: "conv-1"}

	h.Publish(chattypes.Envelope{ID: "m1", ConversationID: "conv-1", Content: "hi"})
	recvFrame(t, a)
	recvFrame(t, b)

	// Once the disconnect is processed no later publish reaches b.
	h.unregister <- b
	_, ok := <-b.send
	require.False(t, ok, "send channel should be closed on unregister")

	h.Publish(chattypes.Envelope{ID: "m2", ConversationID: "conv-1", Content: "again"})
	frame := recvFrame(t, a)
	var got chattypes.Envelope
	require.NoError(t, json.Unmarshal(frame.Data, &got))
	require.Equal(t, "m2", got.ID)
}
