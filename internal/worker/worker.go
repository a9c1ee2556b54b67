// Package worker runs periodic maintenance tasks in the background.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/clientdesk/internal/metrics"
)

// Worker runs each registered task on its own ticker.
type Worker struct {
	tasks  []scheduled
	config Config
	logger *slog.Logger

	// Synchronization
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

type scheduled struct {
	task     Task
	interval time.Duration
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Register adds a task to the worker. A non-positive interval uses the
// configured default. Call this before Start().
func (w *Worker) Register(task Task, interval time.Duration) {
	if interval <= 0 {
		interval = w.config.Interval
	}
	for _, s := range w.tasks {
		if s.task.Type() == task.Type() {
			w.logger.Warn("Registering duplicate task type", "task_type", task.Type())
		}
	}
	w.tasks = append(w.tasks, scheduled{task: task, interval: interval})
	w.logger.Debug("Registered task", "task_type", task.Type(), "interval", interval)
}

// Start launches one goroutine per registered task.
func (w *Worker) Start(ctx context.Context) {
	for _, s := range w.tasks {
		w.wg.Add(1)
		go w.runTask(ctx, s)
	}

	w.logger.Info("Worker started", "tasks", len(w.tasks))
}

// Stop signals all tasks to stop and waits for them to finish.
// It respects the configured ShutdownTimeout.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopCh) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("Worker shutdown timeout exceeded, some tasks may still be running")
	}
}

// runTask is the loop for one task goroutine.
func (w *Worker) runTask(ctx context.Context, s scheduled) {
	defer w.wg.Done()

	logger := w.logger.With("task_type", s.task.Type())
	logger.Debug("Task loop started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			logger.Debug("Task loop stopping")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.execute(ctx, s.task, logger); err != nil && IsPermanent(err) {
				logger.Warn("Task failed with permanent error, will not run again", "error", err)
				return
			}
		}
	}
}

// execute runs one pass of task with a timeout context.
func (w *Worker) execute(ctx context.Context, task Task, logger *slog.Logger) error {
	taskCtx, cancel := context.WithTimeout(ctx, w.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		metrics.TaskFailed(task.Type(), duration)
		logger.Error("Task failed", "error", err, "duration", duration)
		return err
	}

	metrics.TaskCompleted(task.Type(), duration)
	logger.Debug("Task completed", "duration", duration)
	return nil
}
