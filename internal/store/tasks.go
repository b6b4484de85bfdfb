// File: internal/store/tasks.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Publish task statuses. Transitions move forward only: pending may become
// in_progress, in_progress may terminate in succeeded or failed. The two
// terminal states never change again.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskSucceeded  = "succeeded"
	TaskFailed     = "failed"
)

// nextStatuses encodes the legal forward transitions.
var nextStatuses = map[string][]string{
	TaskPending:    {TaskInProgress},
	TaskInProgress: {TaskSucceeded, TaskFailed},
}

// ErrBadTransition is returned when a status change would move backwards or
// out of a terminal state.
var ErrBadTransition = errors.New("illegal task status transition")

// PublishTask is one pending or completed publish of one file through one
// account.
type PublishTask struct {
	ID           int64          `db:"id" json:"id"`
	TaskID       string         `db:"task_id" json:"taskId"`
	Filename     string         `db:"filename" json:"filename"`
	FileID       sql.NullInt64  `db:"file_id" json:"fileId"`
	AccountID    int64          `db:"account_id" json:"accountId"`
	AccountName  string         `db:"account_name" json:"accountName"`
	PlatformName string         `db:"platform_name" json:"platformName"`
	PlatformType int            `db:"platform_type" json:"platformType"`
	Status       string         `db:"status" json:"status"`
	CreateTime   time.Time      `db:"create_time" json:"createTime"`
	UpdateTime   time.Time      `db:"update_time" json:"updateTime"`
	ErrorMsg     sql.NullString `db:"error_msg" json:"errorMsg"`
}

// TaskRepository persists publish tasks in the publish_task_records table.
type TaskRepository struct {
	db *sqlx.DB
}

// Insert creates one pending task row.
func (r *TaskRepository) Insert(ctx context.Context, t *PublishTask) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO publish_task_records
			(task_id, filename, file_id, account_id, account_name, platform_name, platform_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.TaskID, t.Filename, t.FileID, t.AccountID, t.AccountName, t.PlatformName, t.PlatformType, TaskPending)
	if err != nil {
		return 0, fmt.Errorf("insert publish task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get publish task id: %w", err)
	}
	return id, nil
}

// InsertBatch creates all rows of one publish batch in a single transaction:
// either every target gets its pending row or none do.
func (r *TaskRepository) InsertBatch(ctx context.Context, tasks []*PublishTask) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO publish_task_records
				(task_id, filename, file_id, account_id, account_name, platform_name, platform_type, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, t.TaskID, t.Filename, t.FileID, t.AccountID, t.AccountName, t.PlatformName, t.PlatformType, TaskPending)
		if err != nil {
			return fmt.Errorf("insert publish task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish batch: %w", err)
	}
	return nil
}

// Get fetches one task row by its row id. Returns ErrNotFound when absent.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*PublishTask, error) {
	var t PublishTask
	err := r.db.GetContext(ctx, &t, `SELECT * FROM publish_task_records WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get publish task %d: %w", id, err)
	}
	return &t, nil
}

// ListBatch returns every row of one batch, ordered by row id.
func (r *TaskRepository) ListBatch(ctx context.Context, taskID string) ([]PublishTask, error) {
	var tasks []PublishTask
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT * FROM publish_task_records WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list publish batch %s: %w", taskID, err)
	}
	return tasks, nil
}

// List returns all task rows, newest batch first.
func (r *TaskRepository) List(ctx context.Context) ([]PublishTask, error) {
	var tasks []PublishTask
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT * FROM publish_task_records ORDER BY create_time DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list publish tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus moves one task to a new status, enforcing the forward-only
// lifecycle. errMsg is stored only for failed tasks.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status, errMsg string) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, status)
	}

	var msg any
	if status == TaskFailed && errMsg != "" {
		msg = errMsg
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE publish_task_records
		SET status = ?, error_msg = ?, update_time = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, msg, id)
	if err != nil {
		return fmt.Errorf("update publish task %d: %w", id, err)
	}
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range nextStatuses[from] {
		if next == to {
			return true
		}
	}
	return false
}
