package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"creator-score/internal/common/errors"
	"creator-score/internal/models"
)

const (
	taskKeyPrefix = "score:task:"
	taskIndexKey  = "score:tasks:by_created"

	// Terminal tasks are kept for a day so clients can poll the result.
	taskTTL = 24 * time.Hour
)

// RedisStore persists tasks as JSON values with a sorted-set index on
// creation time for listing.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, task models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return errors.NewInternal("failed to encode task").WithCause(err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, data, taskTTL)
	pipe.ZAdd(ctx, taskIndexKey, redis.Z{
		Score:  float64(task.CreatedAt.UnixMilli()),
		Member: task.ID,
	})
	pipe.Expire(ctx, taskIndexKey, taskTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewInternal("failed to persist task").WithCause(err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Task, error) {
	data, err := s.client.Get(ctx, taskKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return models.Task{}, errors.NewNotFound("task not found").WithDetails("task_id", id)
	}
	if err != nil {
		return models.Task{}, errors.NewInternal("failed to load task").WithCause(err)
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return models.Task{}, errors.NewInternal("failed to decode task").WithCause(err)
	}
	return task, nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.Task, error) {
	// Newest first.
	ids, err := s.client.ZRevRange(ctx, taskIndexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.NewInternal("failed to list tasks").WithCause(err)
	}
	if len(ids) == 0 {
		return []models.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taskKeyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.NewInternal("failed to load tasks").WithCause(err)
	}

	out := make([]models.Task, 0, len(values))
	for i, v := range values {
		if v == nil {
			// Expired value, drop the dangling index entry.
			s.client.ZRem(ctx, taskIndexKey, ids[i])
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, errors.NewInternal(fmt.Sprintf("unexpected value type for task %s", ids[i]))
		}
		var task models.Task
		if err := json.Unmarshal([]byte(str), &task); err != nil {
			return nil, errors.NewInternal("failed to decode task").WithCause(err)
		}
		out = append(out, task)
	}
	return out, nil
}
