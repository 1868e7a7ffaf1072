package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"creator-score/internal/common/errors"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/metrics"
	"creator-score/internal/common/observability"
	"creator-score/internal/models"
	"creator-score/internal/scoring"
)

// Runner executes one scoring run. Satisfied by scoring.Pipeline.
type Runner interface {
	Run(ctx context.Context, username, keyword string, progress scoring.ProgressFunc) (models.ScoreBreakdown, error)
}

// Orchestrator runs scoring tasks asynchronously: Submit returns immediately
// with a pending task; a goroutine drives it through processing to a terminal
// state. Transitions are forward-only.
type Orchestrator struct {
	store    Store
	pipeline Runner
	logger   logger.Logger
	obs      *observability.Metrics

	wg sync.WaitGroup
}

func NewOrchestrator(store Store, pipeline Runner, log logger.Logger, obs *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		store:    store,
		pipeline: pipeline,
		logger:   log,
		obs:      obs,
	}
}

// Submit registers a new pending task and starts executing it.
func (o *Orchestrator) Submit(ctx context.Context, req models.ScoreRequest) (models.Task, error) {
	if strings.TrimSpace(req.Username) == "" {
		return models.Task{}, errors.NewInvalidInput("username is required")
	}

	task := models.Task{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Keyword:   req.Keyword,
		Status:    models.TaskPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := o.store.Save(ctx, task); err != nil {
		return models.Task{}, err
	}

	metrics.TasksActive.Inc()
	o.wg.Add(1)
	go o.execute(task)

	o.logger.Info("task submitted", map[string]interface{}{
		"task_id":  task.ID,
		"username": task.Username,
		"keyword":  task.Keyword,
	})
	return task, nil
}

// Status returns the current snapshot of a task.
func (o *Orchestrator) Status(ctx context.Context, id string) (models.Task, error) {
	return o.store.Get(ctx, id)
}

// List returns all known tasks, newest first.
func (o *Orchestrator) List(ctx context.Context) ([]models.Task, error) {
	return o.store.List(ctx)
}

// Wait blocks until every in-flight task has reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// execute drives one task to a terminal state. Runs in its own goroutine with
// a background context so HTTP request cancellation cannot abort the task.
func (o *Orchestrator) execute(task models.Task) {
	defer o.wg.Done()
	defer metrics.TasksActive.Dec()

	ctx := context.Background()
	log := o.logger.WithFields(map[string]interface{}{"task_id": task.ID})

	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			o.fail(ctx, task, errors.NewInternal(fmt.Sprintf("task panicked: %v", r)))
		}
	}()

	now := time.Now().UTC()
	task.Status = models.TaskProcessing
	task.StartedAt = &now
	task.Progress = "starting"
	if err := o.store.Save(ctx, task); err != nil {
		log.WithError(err).Error("failed to mark task processing", nil)
		return
	}

	breakdown, err := o.pipeline.Run(ctx, task.Username, task.Keyword, func(stage string) {
		task.Progress = stage
		if saveErr := o.store.Save(ctx, task); saveErr != nil {
			log.WithError(saveErr).Warn("failed to save progress", nil)
		}
	})

	if err != nil {
		o.fail(ctx, task, err)
		return
	}

	done := time.Now().UTC()
	task.Status = models.TaskCompleted
	task.Progress = "done"
	task.Result = &breakdown
	task.CompletedAt = &done
	if err := o.store.Save(ctx, task); err != nil {
		log.WithError(err).Error("failed to save completed task", nil)
		return
	}

	duration := done.Sub(task.CreatedAt)
	metrics.TasksCompleted.Inc()
	metrics.TaskDuration.Observe(duration.Seconds())
	if o.obs != nil {
		o.obs.RecordTaskProcessed(ctx, "completed")
		o.obs.RecordTaskDuration(ctx, duration, "completed")
	}

	log.Info("task completed", map[string]interface{}{
		"final_score": breakdown.FinalScore,
		"duration_ms": duration.Milliseconds(),
	})
}

func (o *Orchestrator) fail(ctx context.Context, task models.Task, err error) {
	if task.Status.IsTerminal() {
		return
	}

	done := time.Now().UTC()
	code := errors.CodeOf(err)
	task.Status = models.TaskFailed
	task.Error = &models.TaskError{Code: code, Message: err.Error()}
	task.CompletedAt = &done

	if saveErr := o.store.Save(ctx, task); saveErr != nil {
		o.logger.WithError(saveErr).Error("failed to save failed task", map[string]interface{}{
			"task_id": task.ID,
		})
	}

	duration := done.Sub(task.CreatedAt)
	metrics.TasksFailed.WithLabelValues(code).Inc()
	metrics.TaskDuration.Observe(duration.Seconds())
	if o.obs != nil {
		o.obs.RecordTaskProcessed(ctx, "failed")
		o.obs.RecordTaskDuration(ctx, duration, "failed")
	}

	o.logger.WithError(err).Error("task failed", map[string]interface{}{
		"task_id":    task.ID,
		"error_code": code,
	})
}
