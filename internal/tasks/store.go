// Package tasks implements the async scoring task lifecycle: submission,
// execution, and status tracking over a pluggable store.
package tasks

import (
	"context"
	"sort"
	"sync"

	"creator-score/internal/common/errors"
	"creator-score/internal/models"
)

// Store persists tasks keyed by ID. Implementations must be safe for
// concurrent use and must return copies, never shared pointers.
type Store interface {
	Save(ctx context.Context, task models.Task) error
	Get(ctx context.Context, id string) (models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
}

// MemoryStore keeps tasks in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]models.Task)}
}

func (s *MemoryStore) Save(ctx context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = copyTask(task)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, errors.NewNotFound("task not found").WithDetails("task_id", id)
	}
	return copyTask(task), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, copyTask(task))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// copyTask deep-copies the pointer fields so callers cannot mutate stored
// state through a returned snapshot.
func copyTask(t models.Task) models.Task {
	cp := t
	if t.Result != nil {
		r := *t.Result
		cp.Result = &r
	}
	if t.Error != nil {
		e := *t.Error
		cp.Error = &e
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		cp.StartedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		cp.CompletedAt = &ts
	}
	return cp
}
