package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/infrastructure/resilience"
)

var productColumns = []string{
	"id", "code", "category", "subcategory", "size", "fabric", "price", "image_url", "stock", "is_plus", "collection",
}

func mustFinalize(t *testing.T, p domain.Product) domain.FinalizedProduct {
	t.Helper()
	fp, err := domain.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return fp
}

func sampleProduct(id int64, c domain.Collection) domain.Product {
	return domain.Product{
		ID:          id,
		Code:        "c1",
		Category:    "WOMEN",
		Subcategory: "Blusas",
		Size:        "S",
		Fabric:      domain.DefaultFabric,
		Price:       55000,
		ImageURL:    domain.PlaceholderImage,
		Stock:       1,
		Collection:  c,
	}
}

func fastRetryExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})
}

func expectUpsert(mock sqlmock.Sqlmock, p domain.Product) *sqlmock.ExpectedExec {
	return mock.ExpectPrepare("INSERT INTO products").ExpectExec().
		WithArgs(p.ID, p.Code, p.Category, p.Subcategory, p.Size, p.Fabric, p.Price, p.ImageURL, p.Stock, p.IsPlus, string(p.Collection), sqlmock.AnyArg())
}

func TestUpsertBatchRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProductRepository(db, nil)

	first := sampleProduct(1, domain.CollectionWorkCasual)
	second := sampleProduct(2, domain.CollectionWinter)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO products")
	prep.ExpectExec().
		WithArgs(first.ID, first.Code, first.Category, first.Subcategory, first.Size, first.Fabric, first.Price, first.ImageURL, first.Stock, first.IsPlus, string(first.Collection), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(second.ID, second.Code, second.Category, second.Subcategory, second.Size, second.Fabric, second.Price, second.ImageURL, second.Stock, second.IsPlus, string(second.Collection), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.UpsertBatch(context.Background(), []domain.FinalizedProduct{
		mustFinalize(t, first),
		mustFinalize(t, second),
	})
	if err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertBatchRetriesSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProductRepository(db, fastRetryExecutor())
	p := sampleProduct(1, domain.CollectionWorkCasual)

	mock.ExpectBegin()
	expectUpsert(mock, p).WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	expectUpsert(mock, p).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.UpsertBatch(context.Background(), []domain.FinalizedProduct{mustFinalize(t, p)}); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertBatchDoesNotRetryConstraintViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProductRepository(db, fastRetryExecutor())
	p := sampleProduct(1, domain.CollectionWorkCasual)

	violation := &pgconn.PgError{Code: "23514"}
	mock.ExpectBegin()
	expectUpsert(mock, p).WillReturnError(violation)
	mock.ExpectRollback()

	err = repo.UpsertBatch(context.Background(), []domain.FinalizedProduct{mustFinalize(t, p)})
	if !errors.Is(err, violation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("constraint violation must not be temporary")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertBatchEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	if err := NewProductRepository(db, nil).UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListFiltersByCollectionAndSkipsInvalidRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProductRepository(db, nil)

	rows := sqlmock.NewRows(productColumns).
		AddRow(int64(1), "c1", "WOMEN", "Abrigos", "M", "Lana", int64(150000), "https://cdn.example.com/1.jpg", 2, false, "winter").
		AddRow(int64(2), "c2", "WOMEN", "Abrigos", "", "Lana", int64(150000), "https://cdn.example.com/2.jpg", 1, false, "winter")
	mock.ExpectQuery(`FROM products\s+WHERE collection = \$1\s+ORDER BY id`).
		WithArgs("winter").
		WillReturnRows(rows)

	products, err := repo.List(context.Background(), domain.CollectionWinter)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(products) != 1 || products[0].Product().ID != 1 || products[0].Product().Stock != 2 {
		t.Fatalf("unexpected products: %+v", products)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListAllAndTemporaryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProductRepository(db, nil)

	mock.ExpectQuery(`FROM products\s+ORDER BY id`).
		WillReturnError(&pgconn.PgError{Code: "57P01"})

	_, err = repo.List(context.Background(), "")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
