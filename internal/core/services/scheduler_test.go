package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	prunes   int
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunes++
	return m.pruneErr
}

func (m *mockSchedulerStore) task(id string) *domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tasks[id]; ok {
		taskCopy := *t
		return &taskCopy
	}
	return nil
}

func (m *mockSchedulerStore) history(id string) []domain.TaskResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.TaskResult(nil), m.results[id]...)
}

// mockStoreService implements driving.StoreService for testing.
type mockStoreService struct {
	mu         sync.Mutex
	flushes    int
	compacts   int
	flushErr   error
	compactErr error
	block      chan struct{}
}

var _ driving.StoreService = (*mockStoreService)(nil)

func (m *mockStoreService) Put(_ context.Context, _, _ string) error { return nil }

func (m *mockStoreService) Get(_ context.Context, _ string) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockStoreService) Delete(_ context.Context, _ string) error { return nil }

func (m *mockStoreService) Flush(_ context.Context) (int, error) {
	m.mu.Lock()
	m.flushes++
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return 7, m.flushErr
}

func (m *mockStoreService) Compact(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compacts++
	return 2, m.compactErr
}

func (m *mockStoreService) Stats(_ context.Context) (*domain.StoreStats, error) {
	return &domain.StoreStats{}, nil
}

func (m *mockStoreService) Dump(_ context.Context, _ io.Writer) error {
	return domain.ErrNotSupported
}

func (m *mockStoreService) counts() (flushes, compacts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes, m.compacts
}

func testSchedulerConfig() domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled:      true,
		TickInterval: 10 * time.Millisecond,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDCompaction:    {Enabled: true, Interval: time.Hour},
			domain.TaskIDMemtableFlush: {Enabled: true, Interval: time.Hour},
		},
	}
}

// --- Tests ---

func TestScheduler_StartDisabled(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.Enabled = false
	store := newMockSchedulerStore()
	s := NewScheduler(cfg, store, &mockStoreService{})

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, store.tasks)
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	require.NoError(t, s.initialiseTasks(context.Background()))

	compaction := store.task(domain.TaskIDCompaction)
	require.NotNil(t, compaction)
	assert.True(t, compaction.Enabled)
	assert.Equal(t, time.Hour, compaction.Interval)
	assert.True(t, compaction.NextRun.After(time.Now()))

	flush := store.task(domain.TaskIDMemtableFlush)
	require.NotNil(t, flush)
	assert.Equal(t, "Memtable flush", flush.Name)
}

func TestScheduler_InitialiseTasks_DisablesExisting(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Minute,
	}

	cfg := testSchedulerConfig()
	cfg.TaskConfigs[domain.TaskIDCompaction] = domain.TaskConfig{Enabled: false}
	cfg.TaskConfigs[domain.TaskIDMemtableFlush] = domain.TaskConfig{Enabled: false}
	s := NewScheduler(cfg, store, &mockStoreService{})

	require.NoError(t, s.initialiseTasks(context.Background()))

	compaction := store.task(domain.TaskIDCompaction)
	require.NotNil(t, compaction)
	assert.False(t, compaction.Enabled)
	assert.Nil(t, store.task(domain.TaskIDMemtableFlush))
}

func TestScheduler_InitialiseTasks_UpdatesInterval(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Minute,
	}
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	require.NoError(t, s.initialiseTasks(context.Background()))
	assert.Equal(t, time.Hour, store.task(domain.TaskIDCompaction).Interval)
}

func TestScheduler_InitialiseTasks_StoreError(t *testing.T) {
	store := newMockSchedulerStore()
	store.getErr = errors.New("db locked")
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	err := s.initialiseTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
}

func TestScheduler_RunsDueTasks(t *testing.T) {
	store := newMockSchedulerStore()
	past := time.Now().Add(-time.Minute)
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Hour, NextRun: past,
	}
	store.tasks[domain.TaskIDMemtableFlush] = &domain.ScheduledTask{
		ID: domain.TaskIDMemtableFlush, Enabled: true, Interval: time.Hour, NextRun: past,
	}
	kv := &mockStoreService{}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	flushes, compacts := kv.counts()
	assert.Equal(t, 1, flushes)
	assert.Equal(t, 1, compacts)

	history := store.history(domain.TaskIDCompaction)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 2, history[0].ItemsProcessed)

	task := store.task(domain.TaskIDMemtableFlush)
	assert.False(t, task.LastSuccess.IsZero())
	assert.True(t, task.NextRun.After(time.Now().Add(59*time.Minute)))
	assert.Equal(t, 2, store.prunes)
}

func TestScheduler_SkipsTasksNotDue(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Hour, NextRun: time.Now().Add(time.Hour),
	}
	store.tasks[domain.TaskIDMemtableFlush] = &domain.ScheduledTask{
		ID: domain.TaskIDMemtableFlush, Enabled: false, Interval: time.Hour,
	}
	kv := &mockStoreService{}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	flushes, compacts := kv.counts()
	assert.Zero(t, flushes)
	assert.Zero(t, compacts)
}

func TestScheduler_RecordsFailure(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Hour,
	}
	kv := &mockStoreService{compactErr: errors.New("disk full")}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	history := store.history(domain.TaskIDCompaction)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Equal(t, "disk full", history[0].Error)
	assert.Equal(t, "disk full", store.task(domain.TaskIDCompaction).LastError)
}

func TestScheduler_NotSupportedCountsAsSuccess(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDCompaction] = &domain.ScheduledTask{
		ID: domain.TaskIDCompaction, Enabled: true, Interval: time.Hour,
	}
	kv := &mockStoreService{compactErr: domain.ErrNotSupported}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	history := store.history(domain.TaskIDCompaction)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Empty(t, history[0].Error)
}

func TestScheduler_DoesNotOverlapRuns(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks[domain.TaskIDMemtableFlush] = &domain.ScheduledTask{
		ID: domain.TaskIDMemtableFlush, Enabled: true, Interval: time.Hour,
	}
	kv := &mockStoreService{block: make(chan struct{})}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	ctx := context.Background()
	s.checkAndRunDueTasks(ctx)
	require.Eventually(t, func() bool {
		flushes, _ := kv.counts()
		return flushes == 1
	}, time.Second, time.Millisecond)

	s.checkAndRunDueTasks(ctx)
	close(kv.block)
	s.wg.Wait()

	flushes, _ := kv.counts()
	assert.Equal(t, 1, flushes)
}

func TestScheduler_UnknownTaskIgnored(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks["reindex"] = &domain.ScheduledTask{ID: "reindex", Enabled: true, Interval: time.Hour}
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Empty(t, store.history("reindex"))
}

func TestScheduler_ListError(t *testing.T) {
	store := newMockSchedulerStore()
	store.listErr = errors.New("db locked")
	kv := &mockStoreService{}
	s := NewScheduler(testSchedulerConfig(), store, kv)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	flushes, compacts := kv.counts()
	assert.Zero(t, flushes+compacts)
}

func TestScheduler_StartStop(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return store.task(domain.TaskIDCompaction) != nil
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	// Stopping twice is harmless.
	assert.NoError(t, s.Stop())
}

func TestScheduler_StartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(testSchedulerConfig(), newMockSchedulerStore(), &mockStoreService{})

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not return after cancel")
	}
}

func TestScheduler_TasksSorted(t *testing.T) {
	store := newMockSchedulerStore()
	store.tasks["b"] = &domain.ScheduledTask{ID: "b"}
	store.tasks["a"] = &domain.ScheduledTask{ID: "a"}
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	tasks, err := s.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)

	store.listErr = errors.New("db locked")
	_, err = s.Tasks(context.Background())
	assert.Error(t, err)
}

func TestScheduler_History(t *testing.T) {
	store := newMockSchedulerStore()
	store.results[domain.TaskIDCompaction] = []domain.TaskResult{
		{TaskID: domain.TaskIDCompaction, ItemsProcessed: 1},
		{TaskID: domain.TaskIDCompaction, ItemsProcessed: 2},
	}
	s := NewScheduler(testSchedulerConfig(), store, &mockStoreService{})

	results, err := s.History(context.Background(), domain.TaskIDCompaction, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
