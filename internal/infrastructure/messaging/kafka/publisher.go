// Package kafka publishes integration events to Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Message headers set on every published record
const (
	HeaderEventType   = "event_type"
	HeaderEventID     = "event_id"
	HeaderContentType = "content-type"
)

// ErrPublisherClosed is returned when publishing after Close
var ErrPublisherClosed = errors.New("kafka publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type writerFactory func(topic string) messageWriter

// Publisher writes JSON-encoded events to Kafka, one writer per topic.
// Writers are created on first use and reused until Close.
type Publisher struct {
	newWriter    writerFactory
	writeTimeout time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	writers map[string]messageWriter
	closed  bool
}

// NewPublisher creates a publisher for the configured brokers
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) *Publisher {
	acks := kafkaGo.RequiredAcks(cfg.RequiredAcks)
	factory := func(topic string) messageWriter {
		return &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			RequiredAcks:           acks,
			WriteTimeout:           cfg.WriteTimeout,
			AllowAutoTopicCreation: cfg.AllowAutoTopicCfg,
		}
	}
	return newPublisher(factory, cfg.WriteTimeout, logger)
}

func newPublisher(factory writerFactory, writeTimeout time.Duration, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Publisher{
		newWriter:    factory,
		writeTimeout: writeTimeout,
		logger:       logger.Named("kafka"),
		writers:      make(map[string]messageWriter),
	}
}

// PublishEvent encodes event as JSON and writes it to topic under key.
// Records with the same key land on the same partition.
func (p *Publisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	w, err := p.writer(topic)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafkaGo.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafkaGo.Header{{Key: HeaderContentType, Value: []byte("application/json")}},
	}
	if de, ok := event.(shared.DomainEvent); ok {
		msg.Headers = append(msg.Headers,
			kafkaGo.Header{Key: HeaderEventType, Value: []byte(de.EventType())},
			kafkaGo.Header{Key: HeaderEventID, Value: []byte(de.EventID().String())},
		)
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := w.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

func (p *Publisher) writer(topic string) (messageWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}
	w, ok := p.writers[topic]
	if !ok {
		w = p.newWriter(topic)
		p.writers[topic] = w
	}
	return w, nil
}

// Close flushes and closes every writer
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer for %s: %w", topic, err))
		}
	}
	p.writers = nil
	return errors.Join(errs...)
}

// LogPublisher stands in for Kafka when it is disabled; events are only logged.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// PublishEvent logs the event instead of sending it
func (p *LogPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.logger.Info("kafka disabled, event not forwarded",
		zap.String("topic", topic),
		zap.String("key", key),
	)
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error { return nil }
