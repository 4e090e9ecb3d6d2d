package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueClosed is returned by Dequeue once a memory queue is closed and drained.
var ErrQueueClosed = errors.New("mail queue closed")

// Job asks the worker pool to render Template with Data and send it to To.
type Job struct {
	ID         string            `json:"id"`
	Template   string            `json:"template"`
	To         string            `json:"to"`
	Data       map[string]string `json:"data"`
	Attempt    int               `json:"attempt"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// Queue buffers mail jobs between the request path and the delivery workers.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
}

type memoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue returns a process-local queue with the given buffer size.
func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 100
	}
	return &memoryQueue{jobs: make(chan Job, size)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue mail job: %w", ctx.Err())
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return Job{}, ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

type redisQueue struct {
	client *redis.Client
	key    string
	wait   time.Duration
}

// NewRedisQueue returns a queue backed by a Redis list at key.
func NewRedisQueue(client *redis.Client, key string) Queue {
	return &redisQueue{client: client, key: key, wait: 5 * time.Second}
}

func (q *redisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	return nil
}

func (q *redisQueue) Dequeue(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		res, err := q.client.BRPop(ctx, q.wait, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Job{}, ctxErr
			}
			return Job{}, fmt.Errorf("dequeue mail job: %w", err)
		}
		// BRPOP replies with [key, value].
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("decode mail job: %w", err)
		}
		return job, nil
	}
}
