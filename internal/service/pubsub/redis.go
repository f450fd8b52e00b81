package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const (
	groupChannelPrefix = "notifications:group:"
	globalChannel      = "notifications:global"
)

// RedisPubSub relays realtime envelopes between API instances.
type RedisPubSub struct {
	client       *redis.Client
	logger       *logger.Logger
	subscribers  map[string]*redis.PubSub // channel name to subscription
	subscriberMu sync.Mutex
}

func NewRedisPubSub(client *redis.Client, logger *logger.Logger) *RedisPubSub {
	return &RedisPubSub{
		client:      client,
		logger:      logger,
		subscribers: make(map[string]*redis.PubSub),
	}
}

func GroupChannel(group string) string {
	return groupChannelPrefix + group
}

func channelFor(env realtime.Envelope) string {
	if env.Target == realtime.TargetGroup {
		return GroupChannel(env.Group)
	}
	return globalChannel
}

// Publish sends env to the group channel for group targets and to the global
// channel otherwise.
func (ps *RedisPubSub) Publish(ctx context.Context, env realtime.Envelope) error {
	message, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	channel := channelFor(env)
	if err := ps.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

func (ps *RedisPubSub) Subscribe(ctx context.Context, group string, handler func(realtime.Envelope)) error {
	return ps.subscribe(ctx, GroupChannel(group), handler)
}

func (ps *RedisPubSub) SubscribeAll(ctx context.Context, handler func(realtime.Envelope)) error {
	return ps.subscribe(ctx, globalChannel, handler)
}

func (ps *RedisPubSub) subscribe(ctx context.Context, channel string, handler func(realtime.Envelope)) error {
	ps.subscriberMu.Lock()
	if _, exists := ps.subscribers[channel]; exists {
		ps.subscriberMu.Unlock()
		return nil
	}

	sub := ps.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so publishes issued right after
	// Subscribe returns are not missed.
	if _, err := sub.Receive(ctx); err != nil {
		ps.subscriberMu.Unlock()
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}
	ps.subscribers[channel] = sub
	ps.subscriberMu.Unlock()

	go func() {
		defer ps.release(channel, sub)

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env realtime.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					ps.logger.Errorf("Failed to unmarshal envelope from channel %s: %v", channel, err)
					continue
				}
				handler(env)

			case <-ctx.Done():
				return
			}
		}
	}()

	ps.logger.Infof("Subscribed to channel: %s", channel)
	return nil
}

// release drops sub if it is still the registered subscription for channel.
func (ps *RedisPubSub) release(channel string, sub *redis.PubSub) {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	if current, ok := ps.subscribers[channel]; ok && current == sub {
		delete(ps.subscribers, channel)
	}
	_ = sub.Close()
}

func (ps *RedisPubSub) Unsubscribe(group string) {
	channel := GroupChannel(group)

	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	if sub, exists := ps.subscribers[channel]; exists {
		_ = sub.Close()
		delete(ps.subscribers, channel)
		ps.logger.Infof("Unsubscribed from channel: %s", channel)
	}
}

func (ps *RedisPubSub) Close() {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	for channel, sub := range ps.subscribers {
		_ = sub.Close()
		delete(ps.subscribers, channel)
		ps.logger.Infof("Closed subscription for channel: %s", channel)
	}
}
