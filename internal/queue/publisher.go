package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MaxStreamLen approximately caps the consistency stream.
const MaxStreamLen = 10000

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the stream and returns the Redis message ID.
	Publish(ctx context.Context, stream string, event ConsistencyEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewPublisher(client *redis.Client, log *zap.Logger) Publisher {
	return &RedisPublisher{client: client, log: log}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ConsistencyEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: MaxStreamLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		p.log.Warn("publish failed",
			zap.String("stream", stream),
			zap.String("type", event.Type),
			zap.Error(err))
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.Debug("published event",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.String("msg_id", messageID),
		zap.Int64("inconsistency_id", event.InconsistencyID),
		zap.Duration("duration", time.Since(startTime)))
	return messageID, nil
}
