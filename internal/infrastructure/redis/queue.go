package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sci-z-declaration/internal/domain"
)

type RedisJobQueue struct {
	client    *redis.Client
	queueName string
}

func NewRedisJobQueue(client *redis.Client) *RedisJobQueue {
	return &RedisJobQueue{
		client:    client,
		queueName: "declaration:queue:workflow",
	}
}

// Enqueue adds a workflow job to the end of the list
func (q *RedisJobQueue) Enqueue(ctx context.Context, job domain.WorkflowJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal workflow job: %w", err)
	}
	return q.client.RPush(ctx, q.queueName, payload).Err()
}

// Dequeue waits for a job and removes it from the front of the list
func (q *RedisJobQueue) Dequeue(ctx context.Context) (*domain.WorkflowJob, error) {
	// 0 means "Wait forever until an item appears"
	result, err := q.client.BLPop(ctx, 0*time.Second, q.queueName).Result()
	if err != nil {
		return nil, err
	}

	// BLPop returns a slice: [QueueName, Element]
	var job domain.WorkflowJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal workflow job: %w", err)
	}
	return &job, nil
}
