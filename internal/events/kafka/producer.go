package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/events"
)

const (
	cloudEventSpecVersion     = "1.0"
	cloudEventDataContentType = "application/json"
	cloudEventSource          = "/photoapp/auth-service"
)

// cloudEvent is the CloudEvents v1.0 envelope used on the wire.
type cloudEvent struct {
	SpecVersion     string           `json:"specversion"`
	Type            string           `json:"type"`
	Source          string           `json:"source"`
	Subject         string           `json:"subject,omitempty"`
	ID              string           `json:"id"`
	Time            time.Time        `json:"time"`
	DataContentType string           `json:"datacontenttype"`
	Data            events.UserEvent `json:"data"`
}

// Producer publishes auth events to a Kafka topic as CloudEvents.
type Producer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	topic    string
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // required by the idempotent producer

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: producer, logger: logger, topic: topic}, nil
}

// Publish wraps payload in a CloudEvent and sends it, keyed by subject so
// per-user events stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, eventType events.EventType, payload events.UserEvent) error {
	event := cloudEvent{
		SpecVersion:     cloudEventSpecVersion,
		Type:            string(eventType),
		Source:          cloudEventSource,
		Subject:         payload.Subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: cloudEventDataContentType,
		Data:            payload,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(payload.Subject),
		Value: sarama.ByteEncoder(value),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to publish auth event",
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
		return err
	}
	p.logger.Debug("auth event published",
		zap.String("type", string(eventType)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
