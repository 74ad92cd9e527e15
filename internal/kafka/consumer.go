package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog/log"

	"studyhub/internal/config"
)

// MessageHandler processes one consumed Kafka message.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer is the receiving side of the event pipeline.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
}

// NewConsumer creates a Kafka consumer; the group id is bound in Consume.
func NewConsumer(cfg config.KafkaConfig) (MessageConsumer, error) {
	return &confluentKafkaConsumer{cfg: cfg}, nil
}

// Consume polls the topics until the context is canceled or a fatal broker
// error occurs. Offsets are committed only after the handler succeeds.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("create consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	if err := c.consumer.SubscribeTopics(topics, nil); err != nil {
		_ = c.consumer.Close()
		return fmt.Errorf("subscribe to %v for group %s: %w", topics, groupID, err)
	}

	log.Info().Str("group", groupID).Strs("topics", topics).Msg("kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("group", groupID).Msg("kafka consumer stopping")
			return nil
		default:
			ev := c.consumer.Poll(1000)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				if err := handler(ctx, e); err != nil {
					log.Error().Err(err).
						Str("group", groupID).
						Str("topic", *e.TopicPartition.Topic).
						Msg("failed to process kafka message")
					continue
				}
				if _, err := c.consumer.CommitMessage(e); err != nil {
					log.Error().Err(err).Str("group", groupID).Msg("failed to commit offset")
				}
			case kafka.Error:
				if e.IsFatal() {
					log.Error().Err(e).Str("group", groupID).Msg("fatal kafka error")
					return e
				}
				log.Warn().Err(e).Str("group", groupID).Msg("kafka error")
			case kafka.AssignedPartitions:
				c.consumer.Assign(e.Partitions)
			case kafka.RevokedPartitions:
				c.consumer.Unassign()
			}
		}
	}
}

// Close closes the consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		log.Error().Err(err).Str("group", c.groupID).Msg("error closing kafka consumer")
	}
	c.consumer = nil
}
