package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled`

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	db *sql.DB
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetTask returns the task with taskID, or nil when there is none.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns all tasks ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask inserts or replaces a task.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, task.ID, task.Name, int64(task.Interval/time.Second),
		nullableTime(task.LastRun), nullableTime(task.NextRun),
		nullableString(task.LastError), nullableTime(task.LastSuccess),
		task.Enabled)
	if err != nil {
		return fmt.Errorf("saving scheduled task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task. Its history is kept until pruned.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("deleting scheduled task %s: %w", taskID, err)
	}
	return nil
}

// RecordResult appends a run to the task history.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_results (task_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.TaskID, formatTime(result.StartedAt), formatTime(result.EndedAt),
		result.Success, nullableString(result.Error), result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("recording result of %s: %w", result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit results of a task, newest first.
// A limit of zero or less returns the whole history.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, started_at, ended_at, success, error, items_processed
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s: %w", taskID, err)
	}
	defer rows.Close()

	var results []domain.TaskResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			r                  domain.TaskResult
			startedAt, endedAt string
			errMsg             sql.NullString
		)
		if err := rows.Scan(&r.TaskID, &startedAt, &endedAt, &r.Success, &errMsg, &r.ItemsProcessed); err != nil {
			return nil, fmt.Errorf("scanning task result: %w", err)
		}
		r.StartedAt = parseTime(startedAt)
		r.EndedAt = parseTime(endedAt)
		r.Error = errMsg.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history of %s: %w", taskID, err)
	}
	return results, nil
}

// PruneHistory keeps the newest keep results of every task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
				FROM task_results
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

func scanTask(row rowScanner) (*domain.ScheduledTask, error) {
	var (
		task                                  domain.ScheduledTask
		intervalSeconds                       int64
		lastRun, nextRun, lastErr, lastSuccess sql.NullString
	)
	err := row.Scan(&task.ID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &lastErr, &lastSuccess, &task.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	task.LastRun = parseTime(lastRun.String)
	task.NextRun = parseTime(nextRun.String)
	task.LastError = lastErr.String
	task.LastSuccess = parseTime(lastSuccess.String)
	return &task, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseTime returns the zero time for empty or unparsable values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
