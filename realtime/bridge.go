package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// channelPattern matches every topic room name published by any
// instance (user:<id>, cafe:<id>, queue:<id>)
const channelPattern = "*:*"

// Bridge fans events out across instances through Redis pub/sub.
// Publishes go to a Redis channel named after the topic; every
// instance subscribes and relays received payloads into its local
// hub. Like the hub itself, the bridge is at-most-once: Redis pub/sub
// keeps no backlog for disconnected subscribers.
type Bridge struct {
	hub    *Hub
	client *redis.Client
}

// NewBridge connects a hub to a Redis instance
func NewBridge(hub *Hub, redisURL string) (*Bridge, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Bridge{hub: hub, client: redis.NewClient(opts)}, nil
}

// Publish encodes the event and sends it through Redis. The local hub
// receives it back via the relay loop like every other instance.
func (b *Bridge) Publish(topic Topic, event string, data interface{}) error {
	msg := Message{Event: event, Topic: topic.String(), Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", event, err)
	}

	if err := b.client.Publish(context.Background(), topic.String(), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Run subscribes to all topic channels and relays messages into the
// local hub until the context is cancelled. Intended to run in its
// own goroutine.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.client.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := ParseTopic(msg.Channel); err != nil {
				log.Printf("realtime: ignoring message on unknown channel %s", msg.Channel)
				continue
			}
			b.hub.broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}

// Close releases the Redis connection
func (b *Bridge) Close() error {
	return b.client.Close()
}
