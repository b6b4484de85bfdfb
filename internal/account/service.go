// File: internal/account/service.go
package account

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/store"
)

// Service owns account lifecycle operations that span the store and the
// session-blob directory.
type Service struct {
	accounts   *store.AccountRepository
	sessionDir string
	logger     *zap.Logger
}

// NewService wires the lifecycle service.
func NewService(accounts *store.AccountRepository, sessionDir string, logger *zap.Logger) *Service {
	return &Service{
		accounts:   accounts,
		sessionDir: sessionDir,
		logger:     logger.Named("accounts"),
	}
}

// List returns all stored accounts.
func (s *Service) List(ctx context.Context) ([]store.Account, error) {
	return s.accounts.List(ctx)
}

// Get returns one account by id. Returns store.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, id int64) (*store.Account, error) {
	return s.accounts.Get(ctx, id)
}

// Delete removes the account row, then best-effort deletes its session blob.
// The row goes first: an orphaned blob is recoverable noise, a dangling row
// pointing at nothing is not. A missing or undeletable file never fails the
// operation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	acc, err := s.accounts.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account row: %w", err)
	}

	blobPath := filepath.Join(s.sessionDir, acc.FilePath)
	if err := os.Remove(blobPath); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Could not remove session blob for deleted account",
				zap.Int64("account_id", id),
				zap.String("path", blobPath),
				zap.Error(err),
			)
		}
	} else {
		s.logger.Info("Removed session blob", zap.String("path", blobPath))
	}

	s.logger.Info("Account deleted",
		zap.Int64("account_id", id),
		zap.Int("type", acc.Type),
		zap.String("account", acc.UserName),
	)
	return nil
}
