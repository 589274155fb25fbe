package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue keeps tasks on a single Redis list: LPUSH to enqueue,
// BRPOP to drain, so tasks come off in enqueue order.
type RedisQueue struct {
	rdb *redis.Client
	key string
	log *zap.Logger
}

func NewRedisQueue(rdb *redis.Client, key string, log *zap.Logger) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key, log: log}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	envelope, err := json.Marshal(Task{
		Task:       task,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return q.rdb.LPush(ctx, q.key, envelope).Err()
}

// Dequeue blocks up to timeout for the next task. An empty queue is
// not an error: it returns (nil, nil) so worker loops can just spin.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}

	var t Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		q.log.Warn("dropping malformed task envelope", zap.Error(err))
		return nil, nil
	}
	return &t, nil
}
