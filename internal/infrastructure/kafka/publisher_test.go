package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"txdash/internal/application"
	"txdash/internal/domain"
	"txdash/internal/streaming"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewPublisherRequiresBrokers(t *testing.T) {
	_, err := NewPublisher(PublisherConfig{})
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}, ChainID: 71})
	require.NoError(t, err)
	defer publisher.Close()

	tests := []struct {
		name     string
		event    application.FetchEvent
		wantType streaming.MessageType
		wantErr  string
	}{
		{
			name: "success",
			event: application.FetchEvent{
				Address: "0xABC",
				Count:   2,
				Summary: domain.Summary{Value: []domain.ChartBucket{{Key: "zero", Count: 2}}},
			},
			wantType: streaming.MessageTypeFetch,
		},
		{
			name:     "failure",
			event:    application.FetchEvent{Address: "0xABC", Err: errors.New("NOTOK")},
			wantType: streaming.MessageTypeFetchFailed,
			wantErr:  "NOTOK",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := publisher.buildMessage(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, defaultTopic, msg.Topic)
			assert.Equal(t, "0xabc", string(msg.Key))

			var decoded streaming.Message
			require.NoError(t, json.Unmarshal(msg.Value, &decoded))
			assert.Equal(t, tt.wantType, decoded.Type)
			assert.Equal(t, uint64(71), decoded.ChainID)
			assert.Equal(t, tt.event.Count, decoded.Count)
			assert.Equal(t, tt.wantErr, decoded.Error)
			assert.NotEmpty(t, decoded.TraceID)
		})
	}
}

func TestBuildMessageRejectsEmptyAddress(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer publisher.Close()

	_, err = publisher.buildMessage(context.Background(), application.FetchEvent{})
	assert.Error(t, err)
}

func TestSeedTrace(t *testing.T) {
	seeded := seedTrace(context.Background())
	spanCtx := trace.SpanContextFromContext(seeded)
	require.True(t, spanCtx.IsValid())
	assert.True(t, spanCtx.IsSampled())

	assert.Equal(t, seeded, seedTrace(seeded))
}
