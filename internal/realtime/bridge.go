package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
)

// bridgeFrame is the cross-instance wire form. Origin identifies the sending
// instance so its own publications are ignored on the way back in.
type bridgeFrame struct {
	Origin   string             `json:"origin"`
	Envelope chattypes.Envelope `json:"envelope"`
}

// Bridge mirrors locally published envelopes to other chatserver instances
// over redis pub/sub and injects envelopes published elsewhere into the local
// hub. Optional; a single-instance deployment runs without one.
type Bridge struct {
	client   *redis.Client
	hub      *Hub
	channel  string
	instance string
}

// NewBridge wires the hub's mirror to the redis channel. Call Run to start
// consuming the inbound side.
func NewBridge(client *redis.Client, hub *Hub, channel string) *Bridge {
	b := &Bridge{
		client:   client,
		hub:      hub,
		channel:  channel,
		instance: uuid.New().String(),
	}
	hub.SetMirror(b.forward)
	return b
}

func (b *Bridge) forward(env chattypes.Envelope) {
	payload, err := json.Marshal(bridgeFrame{Origin: b.instance, Envelope: env})
	if err != nil {
		log.Error().Err(err).Str("message", env.ID).Msg("failed to encode bridge frame")
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("message", env.ID).Msg("failed to publish to bridge channel")
	}
}

// Run subscribes to the bridge channel and feeds remote envelopes into the
// hub until the context is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Confirm the subscription before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	log.Info().Str("channel", b.channel).Str("instance", b.instance).Msg("fanout bridge started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("channel", b.channel).Msg("fanout bridge stopping")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("bridge subscription on %s closed", b.channel)
			}
			var frame bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				log.Warn().Err(err).Msg("malformed bridge frame")
				continue
			}
			if frame.Origin == b.instance {
				continue
			}
			b.hub.PublishRemote(frame.Envelope)
		}
	}
}
