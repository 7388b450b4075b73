package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisChannelPrefix = "beautycita:rt:"

// RedisBus fans events out through Redis pub/sub so every instance's local
// subscribers see them. Publishing does not deliver locally; delivery happens
// when the message comes back from Redis in Run.
type RedisBus struct {
	client *redis.Client
	local  *LocalBus
	logger *zap.Logger
	ready  chan struct{}
}

func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{client: client, local: NewLocalBus(), logger: logger, ready: make(chan struct{})}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.Name, err)
	}
	if err := b.client.Publish(ctx, redisChannelPrefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(topic string, h Handler) Subscription {
	return b.local.Subscribe(topic, h)
}

// Ready is closed once Run has its Redis subscription in place.
func (b *RedisBus) Ready() <-chan struct{} { return b.ready }

// Run relays Redis messages to local subscribers until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to realtime channels: %w", err)
	}
	close(b.ready)
	b.logger.Info("Realtime bus subscribed", zap.String("pattern", redisChannelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("Dropping malformed realtime message", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			b.local.Deliver(strings.TrimPrefix(msg.Channel, redisChannelPrefix), ev)
		}
	}
}
