package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// maintenanceTask is a built-in background job.
type maintenanceTask struct {
	id   string
	name string
	run  func(ctx context.Context) (int, error)
}

// Scheduler runs store maintenance in the background.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	kv     driving.StoreService
	log    logger.Scope

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler for the maintenance tasks of kv.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	kv driving.StoreService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		kv:       kv,
		log:      logger.For("scheduler"),
		inFlight: make(map[string]bool),
	}
}

func (s *Scheduler) tasks() []maintenanceTask {
	return []maintenanceTask{
		{id: domain.TaskIDCompaction, name: "SSTable compaction", run: s.kv.Compact},
		{id: domain.TaskIDMemtableFlush, name: "Memtable flush", run: s.kv.Flush},
	}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called.
// It returns immediately when the scheduler is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Debug("disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		s.log.Warn("failed to initialise tasks: %v", err)
	}
	return s.run(ctx, stopCh)
}

// Stop ends the loop and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks brings stored task state in line with the configuration.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	var errs []error
	for _, t := range s.tasks() {
		if err := s.ensureTask(ctx, t, s.config.GetTaskConfig(t.id)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ensureTask creates or updates a task. Disabled tasks are only stored
// when they already exist.
func (s *Scheduler) ensureTask(ctx context.Context, t maintenanceTask, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, t.id)
	if err != nil {
		return err
	}

	enabled := cfg.Enabled && cfg.Interval > 0
	switch {
	case task == nil && !enabled:
		return nil
	case task == nil:
		task = &domain.ScheduledTask{
			ID:       t.id,
			Name:     t.name,
			Interval: cfg.Interval,
			Enabled:  true,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	default:
		if enabled && task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Name = t.name
		task.Enabled = enabled
	}
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	interval := s.config.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks starts every enabled task whose next run has come.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.log.Warn("failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled || task.NextRun.After(now) {
			continue
		}
		s.runTask(ctx, &task)
	}
}

// runTask runs task in the background unless it is already running.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	var job *maintenanceTask
	for _, t := range s.tasks() {
		if t.id == task.ID {
			job = &t
			break
		}
	}
	if job == nil {
		s.log.Warn("unknown task %q", task.ID)
		return
	}

	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()
		s.execute(ctx, job, task)
	}()
}

// execute runs job and records the outcome.
func (s *Scheduler) execute(ctx context.Context, job *maintenanceTask, task *domain.ScheduledTask) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	n, err := job.run(ctx)
	if errors.Is(err, domain.ErrNotSupported) {
		s.log.Debug("%s: not supported by this backend", task.ID)
		err = nil
	}
	result.EndedAt = time.Now()
	result.ItemsProcessed = n

	if err != nil {
		s.log.Warn("%s failed: %v", task.ID, err)
		result.Error = err.Error()
		task.LastError = err.Error()
	} else {
		s.log.Debug("%s done: %d items in %s", task.ID, n, result.Duration())
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}
	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if err := s.store.SaveTask(ctx, task); err != nil {
		s.log.Warn("failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		s.log.Warn("failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyRetention); err != nil {
		s.log.Warn("failed to prune history: %v", err)
	}
}

// Tasks returns stored task state ordered by ID.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// History returns up to limit recent results for taskID.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	results, err := s.store.GetTaskHistory(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", taskID, err)
	}
	return results, nil
}
