// Package anchor renders talking-head videos for segments through a
// fixed-size worker pool fed by a job queue.
package anchor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueClosed is returned by Dequeue once the queue is drained and
// closed.
var ErrQueueClosed = errors.New("queue closed")

// Job is one talking-head render: read one audio asset, write one video.
type Job struct {
	// ID identifies the job for logging.
	ID string `json:"id"`

	// SegmentID is the segment the render belongs to.
	SegmentID string `json:"segment_id"`

	// AudioPath is the rendered narration audio input.
	AudioPath string `json:"audio_path"`

	// OutputPath is where the video must be written.
	OutputPath string `json:"output_path"`
}

// Queue hands jobs to pool workers. Implementations must be safe for
// concurrent Dequeue.
type Queue interface {
	// Enqueue adds a job.
	Enqueue(ctx context.Context, job Job) error

	// Dequeue blocks until a job is available, the queue is finished and
	// drained (ErrQueueClosed), or the context is done.
	Dequeue(ctx context.Context) (*Job, error)

	// Finish marks that no more jobs will be enqueued; pending jobs
	// remain dequeueable, then Dequeue returns ErrQueueClosed.
	Finish()

	// Close releases queue resources.
	Close() error
}

// MemoryQueue is the default in-process queue.
type MemoryQueue struct {
	jobs   chan Job
	finish sync.Once
}

// NewMemoryQueue creates a queue buffering up to capacity jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryQueue{jobs: make(chan Job, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, ErrQueueClosed
		}
		return &job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Finish() {
	q.finish.Do(func() { close(q.jobs) })
}

func (q *MemoryQueue) Close() error {
	q.Finish()
	return nil
}

// RedisQueue shares jobs across processes through a Redis list. Multiple
// machines can work one render backlog.
type RedisQueue struct {
	client *redis.Client
	key    string
	closed chan struct{}
	drain  atomic.Bool
}

// NewRedisQueue connects to Redis and uses key as the job list.
func NewRedisQueue(addr, password string, db int, key string) (*RedisQueue, error) {
	if key == "" {
		key = "newscast:anchor:jobs"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &RedisQueue{client: client, key: key, closed: make(chan struct{})}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("pushing job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		select {
		case <-q.closed:
			return nil, ErrQueueClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Short poll interval so Close and ctx are observed promptly.
		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err == redis.Nil {
			if q.drain.Load() {
				return nil, ErrQueueClosed
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("popping job: %w", err)
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return nil, fmt.Errorf("parsing job: %w", err)
		}
		return &job, nil
	}
}

// Finish makes Dequeue return ErrQueueClosed once the list is empty
// instead of waiting for more producers.
func (q *RedisQueue) Finish() {
	q.drain.Store(true)
}

func (q *RedisQueue) Close() error {
	close(q.closed)
	return q.client.Close()
}
