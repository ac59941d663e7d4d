package repository

import (
	"context"
	"strconv"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	pkgkafka "SignalDesk/pkg/kafka"
	pkgredis "SignalDesk/pkg/redis"
)

type kafkaProducer interface {
	Publish(ctx context.Context, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher writes lifecycle events to a Kafka topic keyed by signal id,
// so all events of one signal land on the same partition in order.
type KafkaEventPublisher struct {
	producer kafkaProducer
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer) drepo.EventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, evt models.LifecycleEvent) error {
	return p.producer.Publish(ctx, []byte(strconv.FormatInt(evt.Signal.ID, 10)), evt)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) (int64, error)
	Close() error
}

// RedisEventPublisher fans lifecycle events out over a Redis pub/sub channel.
type RedisEventPublisher struct {
	client  redisPublisher
	channel string
}

func NewRedisEventPublisher(client *pkgredis.Client, channel string) drepo.EventPublisher {
	return &RedisEventPublisher{client: client, channel: channel}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, evt models.LifecycleEvent) error {
	_, err := p.client.Publish(ctx, p.channel, evt)
	return err
}

func (p *RedisEventPublisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

var (
	_ drepo.EventPublisher = (*KafkaEventPublisher)(nil)
	_ drepo.EventPublisher = (*RedisEventPublisher)(nil)
	_ drepo.EventPublisher = NoopPublisher{}
)
