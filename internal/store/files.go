// File: internal/store/files.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// FileRecord is metadata for one uploaded media file.
type FileRecord struct {
	ID         int64     `db:"id" json:"id"`
	Filename   string    `db:"filename" json:"filename"`
	Filesize   float64   `db:"filesize" json:"filesize"`
	UploadTime time.Time `db:"upload_time" json:"uploadTime"`
	FilePath   string    `db:"file_path" json:"filePath"`
}

// FileRepository persists uploaded-file metadata in the file_records table.
type FileRepository struct {
	db *sqlx.DB
}

// Insert records an uploaded file and returns its generated id. Filesize is
// in megabytes, matching the historical schema.
func (r *FileRepository) Insert(ctx context.Context, filename, filePath string, sizeMB float64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO file_records (filename, filesize, file_path)
		VALUES (?, ?, ?)
	`, filename, sizeMB, filePath)
	if err != nil {
		return 0, fmt.Errorf("insert file record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get file record id: %w", err)
	}
	return id, nil
}

// Get fetches one file record by id. Returns ErrNotFound when absent.
func (r *FileRepository) Get(ctx context.Context, id int64) (*FileRecord, error) {
	var rec FileRecord
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM file_records WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file record %d: %w", id, err)
	}
	return &rec, nil
}

// List returns all file records, newest first.
func (r *FileRepository) List(ctx context.Context) ([]FileRecord, error) {
	var recs []FileRecord
	if err := r.db.SelectContext(ctx, &recs, `SELECT * FROM file_records ORDER BY upload_time DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	return recs, nil
}

// Delete removes a file record. Returns ErrNotFound if no row matched.
func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM file_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file record %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete file record %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
