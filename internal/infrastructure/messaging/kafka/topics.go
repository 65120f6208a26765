package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// Topic names used by the asynchronous enhancement pipeline.
const (
	// TopicEnhanceRequest carries batches of SVO tuples waiting for trait
	// inference.
	TopicEnhanceRequest = "svo.enhance.request"

	// TopicEnhanceResult carries completed enhancement results.
	TopicEnhanceResult = "svo.enhance.result"

	// TopicDeadLetter receives messages that could not be processed after
	// all retries were exhausted.
	TopicDeadLetter = "dead_letter.enhance"
)

// Event types stamped into the envelope.
const (
	EventTypeEnhanceRequested = "enhance.requested"
	EventTypeEnhanceCompleted = "enhance.completed"
	EventTypeEnhanceFailed    = "enhance.failed"
)

// SchemaVersion is the current envelope schema version.
const SchemaVersion = "1.0"

// EventEnvelope is the wire format for every message on the pipeline
// topics. The payload is carried opaque so topics can evolve their
// payload schemas independently of the envelope.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EnhanceRequestPayload asks a worker to enhance a batch of tuples.
// Contexts is positional and may be shorter than Tuples; missing
// entries default to empty context.
type EnhanceRequestPayload struct {
	JobID    string      `json:"job_id"`
	Tuples   []svo.Tuple `json:"tuples"`
	Contexts []string    `json:"contexts,omitempty"`
}

// EnhanceResultPayload reports a completed enhancement job. Results is
// the exported JSON document produced for the batch so downstream
// consumers do not need the engine types to read it.
type EnhanceResultPayload struct {
	JobID       string          `json:"job_id"`
	Processed   int             `json:"processed"`
	Results     json.RawMessage `json:"results"`
	CompletedAt time.Time       `json:"completed_at"`
}

// EnhanceFailedPayload reports a job that could not be completed.
type EnhanceFailedPayload struct {
	JobID    string `json:"job_id"`
	Error    string `json:"error"`
	FailedAt string `json:"failed_at"`
}

// NewEnvelope wraps a payload in a fresh envelope with a generated
// event id and the current schema version.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}

	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       raw,
	}, nil
}

// UnmarshalPayload decodes the envelope payload into dest.
func (e *EventEnvelope) UnmarshalPayload(dest interface{}) error {
	if err := json.Unmarshal(e.Payload, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event payload")
	}
	return nil
}

// Validate checks that an incoming envelope carries the fields every
// consumer depends on.
func (e *EventEnvelope) Validate() error {
	if e.EventID == "" {
		return errors.New(errors.ErrCodeBadRequest, "event id is required")
	}
	if e.EventType == "" {
		return errors.New(errors.ErrCodeBadRequest, "event type is required")
	}
	if len(e.Payload) == 0 {
		return errors.New(errors.ErrCodeBadRequest, "event payload is required")
	}
	return nil
}
