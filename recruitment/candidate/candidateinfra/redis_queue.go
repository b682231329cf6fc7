package candidateinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements candidate.EmbeddingQueue with a Redis list plus a delayed ZSET
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

var _ candidate.EmbeddingQueue = (*RedisQueue)(nil)

// NewRedisQueue creates a new Redis-based queue
func NewRedisQueue(client *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

func (q *RedisQueue) delayedQueue() string {
	return q.queueName + ":delayed"
}

// Enqueue adds a job to the queue
func (q *RedisQueue) Enqueue(ctx context.Context, job *candidate.EmbeddingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal embedding job %s: %w", job.ID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue embedding job %s: %w", job.ID, err)
	}

	return nil
}

// Dequeue gets a job from the queue (blocking with timeout)
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*candidate.EmbeddingJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		// redis.Nil is returned when timeout occurs
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue embedding job: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}

	var job candidate.EmbeddingJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal embedding job: %w (data: %s)", err, result[1])
	}
	return &job, nil
}

// EnqueueDelayed schedules a job for later processing (for retries)
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, job *candidate.EmbeddingJob, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delayed embedding job %s: %w", job.ID, err)
	}

	score := float64(time.Now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, q.delayedQueue(), redis.Z{
		Score:  score,
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed embedding job %s: %w", job.ID, err)
	}

	return nil
}

// MoveDelayedToReady moves delayed jobs that are due to the main queue
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)

	jobs, err := q.client.ZRangeByScore(ctx, q.delayedQueue(), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed jobs: %w", err)
	}

	if len(jobs) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, job := range jobs {
		pipe.LPush(ctx, q.queueName, job)
		pipe.ZRem(ctx, q.delayedQueue(), job)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("move delayed jobs to ready: %w", err)
	}

	return len(jobs), nil
}

// Stats returns queue sizes for the health endpoint
func (q *RedisQueue) Stats(ctx context.Context) (map[string]any, error) {
	ready, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return nil, fmt.Errorf("get queue size: %w", err)
	}

	delayed, err := q.client.ZCard(ctx, q.delayedQueue()).Result()
	if err != nil {
		return nil, fmt.Errorf("get delayed queue size: %w", err)
	}

	return map[string]any{
		"queue_name":   q.queueName,
		"ready_jobs":   ready,
		"delayed_jobs": delayed,
	}, nil
}
