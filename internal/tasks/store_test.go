package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "creator-score/internal/common/errors"
	"creator-score/internal/models"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func sampleTask(id string, created time.Time) models.Task {
	return models.Task{
		ID:        id,
		Username:  "creator1",
		Keyword:   "skincare",
		Status:    models.TaskPending,
		CreatedAt: created,
	}
}

// storeContract exercises the behavior both backends must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("get missing task", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})

	t.Run("save and get round trip", func(t *testing.T) {
		task := sampleTask("t1", base)
		require.NoError(t, store.Save(ctx, task))

		got, err := store.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, models.TaskPending, got.Status)
		assert.Equal(t, "creator1", got.Username)
	})

	t.Run("save overwrites", func(t *testing.T) {
		task := sampleTask("t1", base)
		task.Status = models.TaskCompleted
		task.Result = &models.ScoreBreakdown{Username: "creator1", FinalScore: 80.25}
		require.NoError(t, store.Save(ctx, task))

		got, err := store.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskCompleted, got.Status)
		require.NotNil(t, got.Result)
		assert.Equal(t, 80.25, got.Result.FinalScore)
	})

	t.Run("list newest first", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleTask("t2", base.Add(time.Minute))))
		require.NoError(t, store.Save(ctx, sampleTask("t3", base.Add(2*time.Minute))))

		got, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "t3", got[0].ID)
		assert.Equal(t, "t2", got[1].ID)
		assert.Equal(t, "t1", got[2].ID)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	storeContract(t, newRedisStore(t))
}

func TestMemoryStoreSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	task := sampleTask("t1", time.Now())
	task.Result = &models.ScoreBreakdown{FinalScore: 50}
	require.NoError(t, store.Save(ctx, task))

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	got.Result.FinalScore = 999
	got.Status = models.TaskFailed

	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, again.Result.FinalScore)
	assert.Equal(t, models.TaskPending, again.Status)
}

func TestRedisStoreEmptyList(t *testing.T) {
	store := newRedisStore(t)
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
