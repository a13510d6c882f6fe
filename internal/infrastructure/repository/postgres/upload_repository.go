package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vasii/catalog/internal/core/domain"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO inventory_uploads (
	id, filename, mime_type, storage_path, content_hash, status, parsed_count, skipped_count, committed_count, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		upload.ID, upload.Filename, upload.MimeType, upload.StoragePath, upload.ContentHash, string(upload.Status),
		upload.ParsedCount, upload.SkippedCount, upload.CommittedCount, upload.Error, upload.CreatedAt, upload.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, content_hash, status, parsed_count, skipped_count, committed_count, error_message, created_at, updated_at
FROM inventory_uploads
WHERE id = $1
`, id)

	var upload domain.Upload
	var status string
	err := row.Scan(
		&upload.ID, &upload.Filename, &upload.MimeType, &upload.StoragePath, &upload.ContentHash, &status,
		&upload.ParsedCount, &upload.SkippedCount, &upload.CommittedCount, &upload.Error, &upload.CreatedAt, &upload.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	upload.Status = domain.UploadStatus(status)
	return &upload, nil
}

func (r *UploadRepository) UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE inventory_uploads
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	return requireRow(res, "update upload status", id)
}

func (r *UploadRepository) SaveParseSummary(ctx context.Context, id string, parsed, skipped int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE inventory_uploads
SET parsed_count = $2, skipped_count = $3, updated_at = $4
WHERE id = $1
`, id, parsed, skipped, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save parse summary: %w", err)
	}
	return requireRow(res, "save parse summary", id)
}

func (r *UploadRepository) SaveCommitted(ctx context.Context, id string, committed int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE inventory_uploads
SET committed_count = $2, updated_at = $3
WHERE id = $1
`, id, committed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save committed count: %w", err)
	}
	return requireRow(res, "save committed count", id)
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrUploadNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
