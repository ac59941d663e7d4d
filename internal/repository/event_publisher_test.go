package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	target string
	value  interface{}
}

type fakeKafka struct {
	sent   []capturedMessage
	closed bool
}

func (f *fakeKafka) Publish(_ context.Context, key []byte, value interface{}) error {
	f.sent = append(f.sent, capturedMessage{target: string(key), value: value})
	return nil
}

func (f *fakeKafka) Close() error {
	f.closed = true
	return nil
}

type fakeRedis struct {
	sent []capturedMessage
	err  error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, value interface{}) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, capturedMessage{target: channel, value: value})
	return 1, nil
}

func (f *fakeRedis) Close() error { return nil }

func sampleEvent() models.LifecycleEvent {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return models.LifecycleEvent{
		ID:   "7c0e1c8e-0d8b-4b8f-9a43-0d6f3c1e2a10",
		Type: models.EventSignalCreated,
		Signal: models.Signal{
			ID: 42, AssetID: "eur_usd", Asset: "EUR/USD",
			CallPercent: 70, PutPercent: 30, Direction: models.DirectionCall,
			Strength: models.StrengthModerate, TimeframeMinutes: 3,
			CreatedAt: now, ExpiresAt: now.Add(3 * time.Minute), Status: models.StatusActive,
		},
		OccurredAt: now,
	}
}

func TestKafkaEventPublisherKeysBySignalID(t *testing.T) {
	fk := &fakeKafka{}
	p := &KafkaEventPublisher{producer: fk}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, fk.sent, 1)
	assert.Equal(t, "42", fk.sent[0].target)

	b, err := json.Marshal(fk.sent[0].value)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "signal.created", decoded["type"])

	require.NoError(t, p.Close())
	assert.True(t, fk.closed)
}

func TestRedisEventPublisher(t *testing.T) {
	fr := &fakeRedis{}
	p := &RedisEventPublisher{client: fr, channel: "signaldesk:signals"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, fr.sent, 1)
	assert.Equal(t, "signaldesk:signals", fr.sent[0].target)

	fr.err = errors.New("connection refused")
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
