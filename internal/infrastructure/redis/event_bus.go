package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"sci-z-declaration/internal/domain"
)

type RedisEventBus struct {
	client         *redis.Client
	createdChannel string
	updatedChannel string
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client:         client,
		createdChannel: "declaration:events:created",
		updatedChannel: "declaration:events:updated",
	}
}

// PublishDeclarationCreated broadcasts the event to the network
func (b *RedisEventBus) PublishDeclarationCreated(ctx context.Context, event domain.DeclarationCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.createdChannel, payload).Err()
}

// PublishDeclarationUpdated broadcasts a terminal status transition
func (b *RedisEventBus) PublishDeclarationUpdated(ctx context.Context, event domain.DeclarationUpdatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.updatedChannel, payload).Err()
}

// SubscribeToDeclarationUpdates opens a continuous stream for the Notifier
func (b *RedisEventBus) SubscribeToDeclarationUpdates(ctx context.Context) (<-chan domain.DeclarationUpdatedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.updatedChannel)

	// Create a Go channel to forward messages to the consumer
	msgChan := make(chan domain.DeclarationUpdatedEvent)

	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done(): // Handle shutdown gracefully
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err == nil {
					var event domain.DeclarationUpdatedEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil {
						msgChan <- event
					}
				}
			}
		}
	}()

	return msgChan, nil
}
