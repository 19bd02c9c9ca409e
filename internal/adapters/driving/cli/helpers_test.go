package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/adapters/driven/codec"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/lsm"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/services"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	tasks   []domain.ScheduledTask
	history map[string][]domain.TaskResult
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) Tasks(_ context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, nil
}

func (m *mockScheduler) History(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	results := m.history[taskID]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// setupServices wires real services over an LSM store in a temp dir.
func setupServices(t *testing.T) *lsm.Store[string, string] {
	t.Helper()

	opts := lsm.DefaultOptions()
	opts.FlushThreshold = 100
	store, err := lsm.Open[string, string](t.TempDir(), codec.String{}, codec.String{}, opts)
	require.NoError(t, err)

	oldStore, oldSettings, oldScheduler := storeService, settingsService, scheduler
	storeService = services.NewStoreService(store)
	settingsService = services.NewSettingsService(memory.NewConfigStore())
	scheduler = nil

	t.Cleanup(func() {
		_ = store.Close()
		storeService, settingsService, scheduler = oldStore, oldSettings, oldScheduler
	})
	return store
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	getJSON, statsJSON = false, false
	tasksLimit = 5
	benchCount, benchRate = 1000, 0

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
