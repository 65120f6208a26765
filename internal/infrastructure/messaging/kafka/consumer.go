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
// Reader abstraction
// ---------------------------------------------------------------------------

// ReaderInterface abstracts kafka.Reader so consumers can be tested
// without a broker.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageHandler processes a decoded envelope. Returning an error sends
// the message through the retry and dead letter path.
type MessageHandler func(ctx context.Context, env *EventEnvelope) error

// ---------------------------------------------------------------------------
// Consumer
// ---------------------------------------------------------------------------

// ConsumerMetrics tracks consume outcomes with atomic counters.
type ConsumerMetrics struct {
	MessagesProcessed    int64
	MessagesFailed       int64
	MessagesDeadLettered int64
}

// Consumer reads envelopes from one topic and dispatches them to a
// handler. Failed messages are retried in place and forwarded to the
// dead letter topic once retries are exhausted, so one poison message
// never stalls the partition.
type Consumer struct {
	reader     ReaderInterface
	handler    MessageHandler
	deadLetter *Producer
	topic      string
	maxRetries int
	logger     logging.Logger

	metrics ConsumerMetrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// ConsumerOption customizes a consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter routes exhausted messages to the dead letter topic via p.
func WithDeadLetter(p *Producer) ConsumerOption {
	return func(c *Consumer) { c.deadLetter = p }
}

// WithMaxRetries overrides the per-message retry count.
func WithMaxRetries(n int) ConsumerOption {
	return func(c *Consumer) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewConsumer builds a consumer for topic in the configured group.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler, log logging.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "kafka brokers are required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "kafka group id is required")
	}
	if handler == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "message handler is required")
	}

	startOffset := kafka.LastOffset
	if cfg.AutoOffsetReset == "earliest" {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          topic,
		StartOffset:    startOffset,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits only
	})

	return newConsumerWithReader(reader, topic, handler, log, opts...), nil
}

func newConsumerWithReader(r ReaderInterface, topic string, handler MessageHandler, log logging.Logger, opts ...ConsumerOption) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Consumer{
		reader:     r,
		handler:    handler,
		topic:      topic,
		maxRetries: 2,
		logger:     log.Named("kafka.consumer").With(logging.String("topic", topic)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consumes until ctx is cancelled or Close is called. It blocks,
// so callers run it in a goroutine when they need to do other work.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeServiceUnavailable, "consumer is closed")
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	c.logger.Info("consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return nil
			}
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to fetch message")
		}

		c.processMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to commit offset")
		}
	}
}

// processMessage decodes and handles one message. It never returns an
// error; anything unrecoverable goes to the dead letter topic so the
// offset can still be committed.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Error("dropping undecodable message",
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		atomic.AddInt64(&c.metrics.MessagesFailed, 1)
		c.forwardToDeadLetter(ctx, msg, "undecodable envelope")
		return
	}
	if err := env.Validate(); err != nil {
		c.logger.Error("dropping invalid envelope",
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		atomic.AddInt64(&c.metrics.MessagesFailed, 1)
		c.forwardToDeadLetter(ctx, msg, "invalid envelope")
		return
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		lastErr = c.handler(ctx, &env)
		if lastErr == nil {
			atomic.AddInt64(&c.metrics.MessagesProcessed, 1)
			return
		}
		c.logger.Warn("handler failed",
			logging.String("event_id", env.EventID),
			logging.Int("attempt", attempt+1),
			logging.Err(lastErr))
	}

	atomic.AddInt64(&c.metrics.MessagesFailed, 1)
	c.forwardToDeadLetter(ctx, msg, lastErr.Error())
}

func (c *Consumer) forwardToDeadLetter(ctx context.Context, msg kafka.Message, reason string) {
	if c.deadLetter == nil {
		return
	}

	dlq := kafka.Message{
		Topic: TopicDeadLetter,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "dlq_reason", Value: []byte(reason)},
			kafka.Header{Key: "dlq_source_topic", Value: []byte(c.topic)},
		),
	}
	if err := c.deadLetter.writer.WriteMessages(ctx, dlq); err != nil {
		c.logger.Error("failed to forward to dead letter topic", logging.Err(err))
		return
	}
	atomic.AddInt64(&c.metrics.MessagesDeadLettered, 1)
}

// Metrics returns a snapshot of the consume counters.
func (c *Consumer) Metrics() ConsumerMetrics {
	return ConsumerMetrics{
		MessagesProcessed:    atomic.LoadInt64(&c.metrics.MessagesProcessed),
		MessagesFailed:       atomic.LoadInt64(&c.metrics.MessagesFailed),
		MessagesDeadLettered: atomic.LoadInt64(&c.metrics.MessagesDeadLettered),
	}
}

// Close stops the consumer and waits for the active loop to drain.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()
	return err
}
