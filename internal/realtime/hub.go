package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
	"studyhub/internal/metrics"
)

type membership struct {
	client *Client
	roomID string
}

type typingRelay struct {
	origin *Client
	signal chattypes.TypingSignal
	stop   bool
}

type publication struct {
	envelope chattypes.Envelope
	// mirror is false for envelopes that arrived over the bridge, so they
	// are not bounced back out.
	mirror bool
}

// Hub owns the room registry and performs all fan-out. Every mutation goes
// through its channels and is applied by the single Run goroutine, so joins,
// leaves and publishes are linearizable with respect to each other: once a
// disconnect is processed, no later publish can reach that connection.
type Hub struct {
	registry *Registry

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	publish    chan publication
	typing     chan typingRelay

	// mirror, when set, forwards locally published envelopes to the other
	// instances (see Bridge).
	mirror func(chattypes.Envelope)
}

// NewHub creates a Hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		registry:   NewRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		publish:    make(chan publication, 256),
		typing:     make(chan typingRelay, 256),
	}
}

// SetMirror installs the cross-instance forwarder. Must be called before Run.
func (h *Hub) SetMirror(fn func(chattypes.Envelope)) {
	h.mirror = fn
}

// Publish delivers the envelope to every current member of its conversation
// room. Non-blocking: if the hub is saturated the envelope is dropped with a
// warning rather than stalling the caller.
func (h *Hub) Publish(env chattypes.Envelope) {
	h.offer(publication{envelope: env, mirror: true})
}

// PublishRemote injects an envelope received from another instance. It is
// fanned out locally but not mirrored again.
func (h *Hub) PublishRemote(env chattypes.Envelope) {
	h.offer(publication{envelope: env, mirror: false})
}

func (h *Hub) offer(p publication) {
	select {
	case h.publish <- p:
	default:
		log.Warn().
			Str("conversation", p.envelope.ConversationID).
			Str("message", p.envelope.ID).
			Msg("hub publish queue full, dropping envelope")
	}
}

// Run processes hub events until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("realtime hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("realtime hub stopping")
			return

		case c := <-h.register:
			metrics.WsConnections.Inc()
			log.Debug().Str("conn", c.ID).Uint("user", c.UserID).Msg("connection registered")

		case c := <-h.unregister:
			h.registry.LeaveAll(c)
			c.closeSend()
			metrics.WsConnections.Dec()
			log.Debug().Str("conn", c.ID).Uint("user", c.UserID).Msg("connection unregistered")

		case m := <-h.join:
			h.registry.Join(m.client, m.roomID)

		case m := <-h.leave:
			h.registry.Leave(m.client, m.roomID)

		case p := <-h.publish:
			h.fanOut(p)

		case t := <-h.typing:
			h.relayTyping(t)
		}
	}
}

// fanOut delivers to the membership snapshot taken now. A connection joining
// after this point sees only subsequent envelopes.
func (h *Hub) fanOut(p publication) {
	metrics.MessagesPublished.Inc()

	members := h.registry.MembersOf(p.envelope.ConversationID)
	if len(members) > 0 {
		payload, err := chattypes.Encode(chattypes.EventNewMessage, p.envelope)
		if err != nil {
			log.Error().Err(err).Str("message", p.envelope.ID).Msg("failed to encode envelope")
			return
		}
		for _, member := range members {
			h.deliver(member, payload)
		}
	}

	if p.mirror && h.mirror != nil {
		h.mirror(p.envelope)
	}
}

// relayTyping forwards a typing signal to every room member except the
// originating connection. No typing state is kept server-side; staleness is
// the consuming client's problem.
func (h *Hub) relayTyping(t typingRelay) {
	event := chattypes.EventUserTyping
	if t.stop {
		event = chattypes.EventUserStopped
	}
	payload, err := chattypes.Encode(event, t.signal)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode typing signal")
		return
	}
	for _, member := range h.registry.MembersOf(t.signal.ConversationID) {
		if member == t.origin {
			continue
		}
		h.deliver(member, payload)
		metrics.TypingRelays.Inc()
	}
}

// deliver hands the payload to the client's write pump without blocking. A
// slow consumer whose buffer is full is dropped; it will reconnect and
// backfill over HTTP.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
		metrics.MessagesFannedOut.Inc()
	default:
		log.Warn().Str("conn", c.ID).Uint("user", c.UserID).Msg("send buffer full, dropping connection")
		h.registry.LeaveAll(c)
		c.closeSend()
	}
}

// raw JSON helper used by tests to inspect delivered frames.
func decodeFrame(payload []byte) (chattypes.Frame, error) {
	var f chattypes.Frame
	err := json.Unmarshal(payload, &f)
	return f, err
}
