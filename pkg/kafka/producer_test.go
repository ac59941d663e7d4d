package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(WithTopic("t"))
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}))
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithTopic("signals"), WithCompression("zstd"))
	require.NoError(t, err)
	assert.Equal(t, "signals", p.Topic())
	require.NoError(t, p.Close())
}

func TestProducerPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "signals", "gzip")

	require.NoError(t, p.Publish(context.Background(), []byte("42"), map[string]int{"id": 42}))
	require.NoError(t, p.Publish(context.Background(), []byte("43"), []byte(`raw`)))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("42"), w.msgs[0].Key)
	assert.JSONEq(t, `{"id":42}`, string(w.msgs[0].Value))
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerPublishWrapsWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := NewProducerWithWriter(&fakeWriter{err: boom}, "signals", "gzip")
	err := p.Publish(context.Background(), nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Lz4, parseCompression("lz4"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
