// File: internal/task/service.go
package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
)

// Service manages publish-task bookkeeping: one batch fans one file out to
// many accounts, each as an independent row walking the pending →
// in_progress → succeeded|failed lifecycle.
type Service struct {
	tasks    *store.TaskRepository
	registry *platform.Registry
	logger   *zap.Logger
}

// NewService wires the publish-task service.
func NewService(tasks *store.TaskRepository, registry *platform.Registry, logger *zap.Logger) *Service {
	return &Service{
		tasks:    tasks,
		registry: registry,
		logger:   logger.Named("tasks"),
	}
}

// CreateBatch creates one pending task row per target account, all sharing a
// generated batch id. Accounts referencing unconfigured platforms are
// rejected up front so no partial batch is written for bad input.
func (s *Service) CreateBatch(ctx context.Context, fileID int64, filename string, accounts []store.Account) (string, error) {
	if len(accounts) == 0 {
		return "", fmt.Errorf("publish batch needs at least one account")
	}

	rows := make([]*store.PublishTask, 0, len(accounts))
	for _, acc := range accounts {
		cfg, ok := s.registry.ByType(acc.Type)
		if !ok {
			return "", fmt.Errorf("account %d references unknown platform type %d", acc.ID, acc.Type)
		}
		rows = append(rows, &store.PublishTask{
			Filename:     filename,
			FileID:       sql.NullInt64{Int64: fileID, Valid: fileID > 0},
			AccountID:    acc.ID,
			AccountName:  acc.UserName,
			PlatformName: cfg.Key,
			PlatformType: cfg.Type,
		})
	}

	batchID := uuid.New().String()
	for _, row := range rows {
		row.TaskID = batchID
	}
	if err := s.tasks.InsertBatch(ctx, rows); err != nil {
		return "", err
	}

	s.logger.Info("Publish batch created",
		zap.String("task_id", batchID),
		zap.String("file", filename),
		zap.Int("targets", len(rows)),
	)
	return batchID, nil
}

// Start moves a task to in_progress.
func (s *Service) Start(ctx context.Context, id int64) error {
	return s.tasks.UpdateStatus(ctx, id, store.TaskInProgress, "")
}

// Succeed terminates a task successfully.
func (s *Service) Succeed(ctx context.Context, id int64) error {
	return s.tasks.UpdateStatus(ctx, id, store.TaskSucceeded, "")
}

// Fail terminates a task with an error message.
func (s *Service) Fail(ctx context.Context, id int64, msg string) error {
	return s.tasks.UpdateStatus(ctx, id, store.TaskFailed, msg)
}

// ListBatch returns the rows of one batch.
func (s *Service) ListBatch(ctx context.Context, batchID string) ([]store.PublishTask, error) {
	return s.tasks.ListBatch(ctx, batchID)
}

// List returns all task rows.
func (s *Service) List(ctx context.Context) ([]store.PublishTask, error) {
	return s.tasks.List(ctx)
}
