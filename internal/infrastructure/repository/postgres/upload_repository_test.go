package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vasii/catalog/internal/core/domain"
)

func newUploadRepoWithMock(t *testing.T) (*UploadRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewUploadRepository(db), mock, func() { _ = db.Close() }
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(schemaLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS inventory_uploads").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadCreate(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	upload := &domain.Upload{
		ID:          "up-1",
		Filename:    "inventory.txt",
		MimeType:    "text/plain",
		StoragePath: "up-1_inventory.txt",
		ContentHash: "abc",
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mock.ExpectExec("INSERT INTO inventory_uploads").
		WithArgs("up-1", "inventory.txt", "text/plain", "up-1_inventory.txt", "abc", "uploaded", 0, 0, 0, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), upload); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadGetByID(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "storage_path", "content_hash", "status",
		"parsed_count", "skipped_count", "committed_count", "error_message", "created_at", "updated_at",
	}).AddRow("up-1", "inventory.txt", "text/plain", "up-1_inventory.txt", "abc", "staged", 10, 2, 0, "", now, now)
	mock.ExpectQuery("SELECT id, filename, mime_type, storage_path, content_hash").
		WithArgs("up-1").
		WillReturnRows(rows)

	upload, err := repo.GetByID(context.Background(), "up-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if upload.Status != domain.UploadStatusStaged || upload.ParsedCount != 10 || upload.SkippedCount != 2 {
		t.Fatalf("unexpected upload: %+v", upload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, mime_type, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadUpdatesReturnNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE inventory_uploads").
		WithArgs("missing", string(domain.UploadStatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE inventory_uploads").
		WithArgs("missing", 3, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE inventory_uploads").
		WithArgs("missing", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := repo.UpdateStatus(ctx, "missing", domain.UploadStatusProcessing, ""); !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("UpdateStatus: expected ErrUploadNotFound, got %v", err)
	}
	if err := repo.SaveParseSummary(ctx, "missing", 3, 1); !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("SaveParseSummary: expected ErrUploadNotFound, got %v", err)
	}
	if err := repo.SaveCommitted(ctx, "missing", 3); !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("SaveCommitted: expected ErrUploadNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
