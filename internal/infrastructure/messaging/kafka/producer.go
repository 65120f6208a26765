package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/config"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Writer abstraction
// ---------------------------------------------------------------------------

// WriterInterface abstracts kafka.Writer so producers can be tested
// without a broker.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ---------------------------------------------------------------------------
// Producer
// ---------------------------------------------------------------------------

// ProducerMetrics tracks publish outcomes with atomic counters.
type ProducerMetrics struct {
	MessagesPublished int64
	MessagesFailed    int64
	BytesPublished    int64
}

// Producer publishes event envelopes to pipeline topics.
type Producer struct {
	writer  WriterInterface
	source  string
	retries int
	logger  logging.Logger

	metrics ProducerMetrics

	mu     sync.Mutex
	closed bool
}

// NewProducer builds a producer connected to the configured brokers.
// Source is stamped into every envelope this producer publishes.
func NewProducer(cfg config.KafkaConfig, source string, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "kafka brokers are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return newProducerWithWriter(writer, cfg, source, log), nil
}

func newProducerWithWriter(w WriterInterface, cfg config.KafkaConfig, source string, log logging.Logger) *Producer {
	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	return &Producer{
		writer:  w,
		source:  source,
		retries: retries,
		logger:  log.Named("kafka.producer"),
	}
}

// Publish wraps payload in an envelope and writes it to topic. The key
// partitions related events together; pass the job id so a job's
// request and result land on the same partition.
func (p *Producer) Publish(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	env, err := NewEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	return p.PublishEnvelope(ctx, topic, key, env)
}

// PublishEnvelope writes an already built envelope to topic, retrying
// transient write failures with exponential backoff.
func (p *Producer) PublishEnvelope(ctx context.Context, topic, key string, env *EventEnvelope) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New(errors.ErrCodeServiceUnavailable, "producer is closed")
	}
	p.mu.Unlock()

	if err := env.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(env)
	if err != nil {
		atomic.AddInt64(&p.metrics.MessagesFailed, 1)
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				atomic.AddInt64(&p.metrics.MessagesFailed, 1)
				return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "publish cancelled")
			case <-time.After(backoff):
			}
		}

		lastErr = p.writer.WriteMessages(ctx, msg)
		if lastErr == nil {
			atomic.AddInt64(&p.metrics.MessagesPublished, 1)
			atomic.AddInt64(&p.metrics.BytesPublished, int64(len(raw)))
			p.logger.Debug("event published",
				logging.String("topic", topic),
				logging.String("event_id", env.EventID),
				logging.String("event_type", env.EventType))
			return nil
		}

		p.logger.Warn("publish attempt failed",
			logging.String("topic", topic),
			logging.Int("attempt", attempt+1),
			logging.Err(lastErr))
	}

	atomic.AddInt64(&p.metrics.MessagesFailed, 1)
	return errors.Wrap(lastErr, errors.ErrCodeExternalService, "failed to publish event after retries")
}

// Metrics returns a snapshot of the publish counters.
func (p *Producer) Metrics() ProducerMetrics {
	return ProducerMetrics{
		MessagesPublished: atomic.LoadInt64(&p.metrics.MessagesPublished),
		MessagesFailed:    atomic.LoadInt64(&p.metrics.MessagesFailed),
		BytesPublished:    atomic.LoadInt64(&p.metrics.BytesPublished),
	}
}

// Close flushes and closes the underlying writer. Safe to call twice.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
