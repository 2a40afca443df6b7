package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressDescription labels the progress bar of an executor run
const DefaultProgressDescription = "Analyzing files"

// TaskError is the failure of the task for one file
type TaskError struct {
	TaskName string
	Err      error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError holds every task failure of a run, ordered by task name
type AggregatedError struct {
	Errors []TaskError
}

func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d tasks failed: %s", len(e.Errors), strings.Join(e.Messages(), "; "))
}

// Unwrap exposes every cause to errors.Is and errors.As
func (e *AggregatedError) Unwrap() []error {
	if len(e.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(e.Errors))
	for i, te := range e.Errors {
		errs[i] = te.Err
	}
	return errs
}

// Messages returns one "[task] cause" line per failure
func (e *AggregatedError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, te := range e.Errors {
		msgs[i] = te.Error()
	}
	return msgs
}

// ParallelExecutorImpl implements domain.ParallelExecutor. Every file of a
// run is one task; a failing task never stops the others.
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration // 0 means no deadline
	description    string
	progress       domain.ProgressManager
	mu             sync.RWMutex
}

// NewParallelExecutor creates an executor using one worker per CPU and no deadline
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		description:    DefaultProgressDescription,
	}
}

// NewParallelExecutorFromConfig creates a parallel executor from configuration.
// MaxGoroutines <= 0 uses the number of CPUs and TimeoutSeconds <= 0 disables
// the deadline.
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	executor := NewParallelExecutor()
	if cfg == nil {
		return executor
	}
	if cfg.MaxGoroutines > 0 {
		executor.maxConcurrency = cfg.MaxGoroutines
	}
	if cfg.TimeoutSeconds > 0 {
		executor.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return executor
}

// NewParallelExecutorWithProgress creates a parallel executor with progress tracking
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutorFromConfig(cfg)
	executor.progress = pm
	return executor
}

// Execute runs the enabled tasks with the configured concurrency. When the
// deadline passes, tasks that have not started fail with the context error.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabledTasks := e.filterEnabledTasks(tasks)
	if len(enabledTasks) == 0 {
		return nil
	}

	e.mu.RLock()
	maxConcurrency := e.maxConcurrency
	timeout := e.timeout
	description := e.description
	e.mu.RUnlock()

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		task = e.progress.StartTask(description, len(enabledTasks))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(runCtx)
	g.SetLimit(maxConcurrency)

	var errMu sync.Mutex
	var taskErrors []TaskError
	record := func(name string, err error) {
		errMu.Lock()
		taskErrors = append(taskErrors, TaskError{TaskName: name, Err: err})
		errMu.Unlock()
	}

	for _, t := range enabledTasks {
		g.Go(func() error {
			defer task.Increment(1)

			if err := gCtx.Err(); err != nil {
				record(t.Name(), err)
				return nil
			}
			task.Describe(t.Name())
			if _, err := t.Execute(gCtx); err != nil {
				record(t.Name(), err)
			}
			// Failures are collected, not returned, so the group keeps running
			return nil
		})
	}
	_ = g.Wait()

	if len(taskErrors) == 0 {
		return nil
	}
	sort.SliceStable(taskErrors, func(i, j int) bool {
		return taskErrors[i].TaskName < taskErrors[j].TaskName
	})
	return &AggregatedError{Errors: taskErrors}
}

// SetMaxConcurrency sets the maximum number of concurrent tasks
func (e *ParallelExecutorImpl) SetMaxConcurrency(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > 0 {
		e.maxConcurrency = n
	}
}

// SetTimeout sets the deadline of a whole run; 0 disables it
func (e *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout >= 0 {
		e.timeout = timeout
	}
}

// SetDescription sets the progress bar label
func (e *ParallelExecutorImpl) SetDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.description = description
}

func (e *ParallelExecutorImpl) filterEnabledTasks(tasks []domain.ExecutableTask) []domain.ExecutableTask {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	return enabled
}
