package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel shared by all instances
const DefaultChannel = "trellolite:realtime"

// Backplane carries room emissions between server instances
type Backplane interface {
	Publish(ctx context.Context, d Delivery) error
	// Subscribe calls fn for every delivery until ctx is cancelled
	Subscribe(ctx context.Context, fn func(Delivery)) error
}

// RedisBackplane fans deliveries out over Redis pub/sub
type RedisBackplane struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBackplane creates a backplane on channel
func NewRedisBackplane(rdb *redis.Client, channel string, logger *zap.Logger) *RedisBackplane {
	return &RedisBackplane{rdb: rdb, channel: channel, logger: logger}
}

func (b *RedisBackplane) Publish(ctx context.Context, d Delivery) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish delivery: %w", err)
	}
	return nil
}

func (b *RedisBackplane) Subscribe(ctx context.Context, fn func(Delivery)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("realtime backplane subscribed", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var d Delivery
			if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
				b.logger.Warn("dropping malformed delivery", zap.Error(err))
				continue
			}
			fn(d)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
