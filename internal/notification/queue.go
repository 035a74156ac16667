package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueFull is returned by bounded queues that cannot accept more jobs.
var ErrQueueFull = errors.New("notification queue full")

// Queue carries jobs from the dispatcher to the worker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue waits up to wait for a job. It returns (nil, nil) on timeout.
	Dequeue(ctx context.Context, wait time.Duration) (*Job, error)
	Name() string
}

// MemoryQueue is a bounded in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue creates a queue holding at most size jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{jobs: make(chan Job, size)}
}

func (q *MemoryQueue) Name() string { return "memory" }

// Enqueue never blocks; it returns ErrQueueFull when the buffer is full.
func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// RedisQueue is a Redis list used as a FIFO: RPUSH to enqueue, BLPOP to consume.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Name() string { return "redis" }

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", q.key, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	item, err := q.rdb.BLPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blpop %s: %w", q.key, err)
	}
	if len(item) < 2 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Len returns the list length.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
