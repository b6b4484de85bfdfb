// File: internal/store/accounts.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Account statuses as stored in user_info.status. The flag reflects the
// state at creation time only; later validation runs do not rewrite it.
const (
	AccountUnvalidated = 0
	AccountValidated   = 1
)

// Account is one stored login session for one platform account.
type Account struct {
	ID       int64  `db:"id" json:"id"`
	Type     int    `db:"type" json:"type"`
	FilePath string `db:"filePath" json:"filePath"`
	UserName string `db:"userName" json:"userName"`
	Status   int    `db:"status" json:"status"`
}

// AccountRepository persists account records in the user_info table.
type AccountRepository struct {
	db *sqlx.DB
}

// Insert creates a new account row and returns its generated id.
func (r *AccountRepository) Insert(ctx context.Context, platformType int, userName, filePath string, status int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_info (type, filePath, userName, status)
		VALUES (?, ?, ?, ?)
	`, platformType, filePath, userName, status)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get account id: %w", err)
	}
	return id, nil
}

// Get fetches one account by id. Returns ErrNotFound when absent.
func (r *AccountRepository) Get(ctx context.Context, id int64) (*Account, error) {
	var acc Account
	err := r.db.GetContext(ctx, &acc, `SELECT * FROM user_info WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &acc, nil
}

// List returns all stored accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, `SELECT * FROM user_info ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes the account row. Returns ErrNotFound if no row matched, so
// a second delete of the same id is distinguishable from the first.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_info WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
