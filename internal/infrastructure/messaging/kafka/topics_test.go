package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

func TestNewEnvelope(t *testing.T) {
	payload := EnhanceRequestPayload{
		JobID:    "job-42",
		Tuples:   []svo.Tuple{{Subject: "plant", Verb: "bears", Object: "flowers"}},
		Contexts: []string{"the plant bears 5 flowers"},
	}

	env, err := NewEnvelope(EventTypeEnhanceRequested, "apiserver", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventTypeEnhanceRequested, env.EventType)
	assert.Equal(t, "apiserver", env.Source)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)
	assert.False(t, env.Timestamp.IsZero())
	require.NoError(t, env.Validate())

	var decoded EnhanceRequestPayload
	require.NoError(t, env.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEnvelopeUniqueEventIDs(t *testing.T) {
	a, err := NewEnvelope(EventTypeEnhanceRequested, "apiserver", EnhanceRequestPayload{JobID: "j"})
	require.NoError(t, err)
	b, err := NewEnvelope(EventTypeEnhanceRequested, "apiserver", EnhanceRequestPayload{JobID: "j"})
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     EventEnvelope
		wantErr bool
	}{
		{
			name: "valid",
			env: EventEnvelope{
				EventID:   "e1",
				EventType: EventTypeEnhanceCompleted,
				Payload:   json.RawMessage(`{}`),
			},
		},
		{
			name:    "missing event id",
			env:     EventEnvelope{EventType: EventTypeEnhanceCompleted, Payload: json.RawMessage(`{}`)},
			wantErr: true,
		},
		{
			name:    "missing event type",
			env:     EventEnvelope{EventID: "e1", Payload: json.RawMessage(`{}`)},
			wantErr: true,
		},
		{
			name:    "missing payload",
			env:     EventEnvelope{EventID: "e1", EventType: EventTypeEnhanceCompleted},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.GetCode(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUnmarshalPayloadTypeMismatch(t *testing.T) {
	env := EventEnvelope{Payload: json.RawMessage(`{"job_id": 12}`)}

	var p EnhanceRequestPayload
	err := env.UnmarshalPayload(&p)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSerialization, apperrors.GetCode(err))
}
