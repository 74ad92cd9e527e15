package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
	"studyhub/internal/kafka"
)

// kafkaEnvelopePublisher carries envelopes created on the apiserver to the
// chatserver's hub over the envelopes topic. Keyed by conversation id so one
// conversation's messages stay in order within a partition.
type kafkaEnvelopePublisher struct {
	producer kafka.MessageProducer
	topic    string
}

// NewKafkaEnvelopePublisher creates an EnvelopePublisher backed by Kafka.
func NewKafkaEnvelopePublisher(producer kafka.MessageProducer, topic string) EnvelopePublisher {
	return &kafkaEnvelopePublisher{producer: producer, topic: topic}
}

// Publish is fire-and-forget: the message is already persisted, a delivery
// problem only delays the realtime echo.
func (p *kafkaEnvelopePublisher) Publish(env chattypes.Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("message", env.ID).Msg("failed to encode envelope for kafka")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.producer.SendMessage(ctx, p.topic, []byte(env.ConversationID), payload); err != nil {
		log.Error().Err(err).Str("message", env.ID).Str("topic", p.topic).
			Msg("failed to publish envelope to kafka")
	}
}
