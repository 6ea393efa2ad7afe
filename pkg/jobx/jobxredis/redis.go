package jobxredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements jobx.Queue as a reliable list queue.
// Producers LPUSH onto the queue list; each consumer BLMOVEs into its own
// processing list and LREMs the payload once handled.
type RedisQueue struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisQueue creates a new Redis-backed queue. Keys are namespaced by prefix.
func NewRedisQueue(rdb redis.UniversalClient, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "jobx"
	}
	return &RedisQueue{rdb: rdb, prefix: prefix}
}

// Key helpers
func (q *RedisQueue) queueKey(name string) string {
	return fmt.Sprintf("%s:queue:%s", q.prefix, name)
}

func (q *RedisQueue) processingKey(name, consumer string) string {
	return fmt.Sprintf("%s:processing:%s:%s", q.prefix, name, consumer)
}

// Push adds payload to the tail of the queue.
func (q *RedisQueue) Push(ctx context.Context, queue, payload string) error {
	if err := q.rdb.LPush(ctx, q.queueKey(queue), payload).Err(); err != nil {
		return redisErrors.NewWithCause(ErrPush, err).WithDetail("queue", queue)
	}
	return nil
}

// Pop blocks until a payload is available or the timeout expires.
func (q *RedisQueue) Pop(ctx context.Context, queue, consumer string, timeout time.Duration) (*jobx.Message, error) {
	payload, err := q.rdb.BLMove(ctx, q.queueKey(queue), q.processingKey(queue, consumer), "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, redisErrors.NewWithCause(ErrPop, err).
			WithDetail("queue", queue).
			WithDetail("consumer", consumer)
	}

	return &jobx.Message{
		Queue:      queue,
		Payload:    payload,
		Consumer:   consumer,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// Ack removes the payload from the consumer's processing list.
func (q *RedisQueue) Ack(ctx context.Context, msg *jobx.Message) error {
	if err := q.rdb.LRem(ctx, q.processingKey(msg.Queue, msg.Consumer), 1, msg.Payload).Err(); err != nil {
		return redisErrors.NewWithCause(ErrAck, err).
			WithDetail("queue", msg.Queue).
			WithDetail("payload", msg.Payload)
	}
	return nil
}

// Recover moves everything left in consumer's processing list back onto the queue.
// It must only be called while that consumer is not running.
func (q *RedisQueue) Recover(ctx context.Context, queue, consumer string) (int, error) {
	src, dst := q.processingKey(queue, consumer), q.queueKey(queue)

	moved := 0
	for {
		err := q.rdb.LMove(ctx, src, dst, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, redisErrors.NewWithCause(ErrRecover, err).
				WithDetail("queue", queue).
				WithDetail("consumer", consumer)
		}
		moved++
	}
}

// Len returns the number of waiting payloads.
func (q *RedisQueue) Len(ctx context.Context, queue string) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.queueKey(queue)).Result()
	if err != nil {
		return 0, redisErrors.NewWithCause(ErrLen, err).WithDetail("queue", queue)
	}
	return n, nil
}

// Ping checks connectivity.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
