// File: internal/store/store_test.go
package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenCreatesSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "db", "test.db")

	st, err := Open(path, zap.NewNop())
	require.NoError(t, err, "Open must create missing parent directories")
	defer st.Close()

	// The schema is usable straight away.
	_, err = st.Accounts.List(context.Background())
	assert.NoError(t, err)
	_, err = st.Tasks.List(context.Background())
	assert.NoError(t, err)
	_, err = st.Files.List(context.Background())
	assert.NoError(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st1, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	// Reopening an already-migrated database must not fail.
	st2, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer st2.Close()
}

// -- Account Repository Tests --

func TestAccountLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.Accounts.Insert(ctx, 3, "alice", "douyin_cookie_alice.json", AccountValidated)
	require.NoError(t, err)
	assert.Positive(t, id)

	acc, err := st.Accounts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, acc.Type)
	assert.Equal(t, "alice", acc.UserName)
	assert.Equal(t, "douyin_cookie_alice.json", acc.FilePath)
	assert.Equal(t, AccountValidated, acc.Status)

	all, err := st.Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)

	require.NoError(t, st.Accounts.Delete(ctx, id))

	_, err = st.Accounts.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountDeleteIsDistinguishable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.Accounts.Insert(ctx, 1, "bob", "xiaohongshu_cookie_bob.json", AccountUnvalidated)
	require.NoError(t, err)

	// First delete succeeds, the second reports the row as gone.
	require.NoError(t, st.Accounts.Delete(ctx, id))
	assert.ErrorIs(t, st.Accounts.Delete(ctx, id), ErrNotFound)
}

func TestAccountGetMissing(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Accounts.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

// -- File Repository Tests --

func TestFileRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.Files.Insert(ctx, "clip.mp4", "/data/videos/clip.mp4", 12.5)
	require.NoError(t, err)

	rec, err := st.Files.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", rec.Filename)
	assert.False(t, rec.UploadTime.IsZero(), "upload time defaults to now")

	require.NoError(t, st.Files.Delete(ctx, id))
	_, err = st.Files.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

// -- Task Repository Tests --

func insertTask(t *testing.T, st *Store) int64 {
	t.Helper()
	id, err := st.Tasks.Insert(context.Background(), &PublishTask{
		TaskID:       "batch-1",
		Filename:     "clip.mp4",
		AccountID:    1,
		AccountName:  "alice",
		PlatformName: "douyin",
		PlatformType: 3,
	})
	require.NoError(t, err)
	return id
}

func TestTaskInsertStartsPending(t *testing.T) {
	st := openTestStore(t)
	id := insertTask(t, st)

	task, err := st.Tasks.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, TaskPending, task.Status)
	assert.False(t, task.CreateTime.IsZero())
	assert.False(t, task.ErrorMsg.Valid)
}

func TestTaskForwardTransitions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	t.Run("pending through to succeeded", func(t *testing.T) {
		id := insertTask(t, st)
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskInProgress, ""))
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskSucceeded, ""))

		task, err := st.Tasks.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, TaskSucceeded, task.Status)
	})

	t.Run("failure records the error message", func(t *testing.T) {
		id := insertTask(t, st)
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskInProgress, ""))
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskFailed, "upload rejected"))

		task, err := st.Tasks.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, TaskFailed, task.Status)
		require.True(t, task.ErrorMsg.Valid)
		assert.Equal(t, "upload rejected", task.ErrorMsg.String)
	})
}

func TestTaskIllegalTransitions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	t.Run("pending cannot jump to a terminal state", func(t *testing.T) {
		id := insertTask(t, st)
		assert.ErrorIs(t, st.Tasks.UpdateStatus(ctx, id, TaskSucceeded, ""), ErrBadTransition)
		assert.ErrorIs(t, st.Tasks.UpdateStatus(ctx, id, TaskFailed, "x"), ErrBadTransition)
	})

	t.Run("terminal states never change again", func(t *testing.T) {
		id := insertTask(t, st)
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskInProgress, ""))
		require.NoError(t, st.Tasks.UpdateStatus(ctx, id, TaskSucceeded, ""))

		assert.ErrorIs(t, st.Tasks.UpdateStatus(ctx, id, TaskInProgress, ""), ErrBadTransition)
		assert.ErrorIs(t, st.Tasks.UpdateStatus(ctx, id, TaskFailed, "x"), ErrBadTransition)
	})

	t.Run("updating a missing task reports not found", func(t *testing.T) {
		assert.ErrorIs(t, st.Tasks.UpdateStatus(ctx, 99999, TaskInProgress, ""), ErrNotFound)
	})
}

func TestTaskInsertBatch(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	t.Run("creates one pending row per target", func(t *testing.T) {
		batch := []*PublishTask{
			{TaskID: "batch-tx", Filename: "clip.mp4", AccountID: 1, AccountName: "a", PlatformName: "douyin", PlatformType: 3},
			{TaskID: "batch-tx", Filename: "clip.mp4", AccountID: 2, AccountName: "b", PlatformName: "tiktok", PlatformType: 5},
		}
		require.NoError(t, st.Tasks.InsertBatch(ctx, batch))

		rows, err := st.Tasks.ListBatch(ctx, "batch-tx")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, TaskPending, row.Status)
		}
	})

	t.Run("a mid-batch failure writes nothing", func(t *testing.T) {
		// Force the second insert to fail so the rollback is observable.
		_, err := st.db.ExecContext(ctx, `
			CREATE UNIQUE INDEX one_row_per_account_per_batch
			ON publish_task_records (task_id, account_id)
		`)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = st.db.ExecContext(ctx, `DROP INDEX one_row_per_account_per_batch`)
		})

		batch := []*PublishTask{
			{TaskID: "batch-dup", Filename: "clip.mp4", AccountID: 7, AccountName: "a", PlatformName: "douyin", PlatformType: 3},
			{TaskID: "batch-dup", Filename: "clip.mp4", AccountID: 7, AccountName: "a", PlatformName: "douyin", PlatformType: 3},
		}
		require.Error(t, st.Tasks.InsertBatch(ctx, batch))

		rows, err := st.Tasks.ListBatch(ctx, "batch-dup")
		require.NoError(t, err)
		assert.Empty(t, rows, "a failed batch must not leave partial rows")
	})
}

func TestTaskListBatch(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := st.Tasks.Insert(ctx, &PublishTask{
			TaskID:       "batch-a",
			Filename:     "clip.mp4",
			AccountID:    int64(i + 1),
			AccountName:  "acct",
			PlatformName: "tiktok",
			PlatformType: 5,
		})
		require.NoError(t, err)
	}
	_, err := st.Tasks.Insert(ctx, &PublishTask{
		TaskID:       "batch-b",
		Filename:     "other.mp4",
		AccountID:    9,
		AccountName:  "acct",
		PlatformName: "tiktok",
		PlatformType: 5,
	})
	require.NoError(t, err)

	batch, err := st.Tasks.ListBatch(ctx, "batch-a")
	require.NoError(t, err)
	require.Len(t, batch, 3)
	for _, task := range batch {
		assert.Equal(t, "batch-a", task.TaskID)
	}

	all, err := st.Tasks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
