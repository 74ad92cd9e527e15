package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/internal/kafka"
)

// ActivityEvent is a platform activity record (group created, member joined,
// session scheduled, ...). Consumed by downstream tooling; nothing in the
// request path depends on it.
type ActivityEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"userId"`
	Ref    string    `json:"ref,omitempty"` // id of the affected entity
	At     time.Time `json:"at"`
}

// ActivityRecorder emits activity events, fire-and-forget.
type ActivityRecorder interface {
	Record(ctx context.Context, event ActivityEvent)
}

type kafkaActivityRecorder struct {
	producer kafka.MessageProducer
	topic    string
}

// NewKafkaActivityRecorder creates an ActivityRecorder backed by Kafka.
func NewKafkaActivityRecorder(producer kafka.MessageProducer, topic string) ActivityRecorder {
	return &kafkaActivityRecorder{producer: producer, topic: topic}
}

func (r *kafkaActivityRecorder) Record(ctx context.Context, event ActivityEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("failed to encode activity event")
		return
	}
	key := []byte(strconv.FormatUint(uint64(event.UserID), 10))
	if err := r.producer.SendMessage(ctx, r.topic, key, payload); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Msg("failed to record activity event")
	}
}
