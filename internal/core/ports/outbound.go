package ports

import (
	"context"
	"io"

	"github.com/vasii/catalog/internal/core/domain"
)

// UploadRepository persists and reads upload state.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) error
	GetByID(ctx context.Context, id string) (*domain.Upload, error)
	UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errMessage string) error
	SaveParseSummary(ctx context.Context, id string, parsed, skipped int) error
	SaveCommitted(ctx context.Context, id string, committed int) error
}

// ProductRepository stores finalized catalog products keyed by id.
type ProductRepository interface {
	UpsertBatch(ctx context.Context, products []domain.FinalizedProduct) error
	// List returns every product, or only those of collection when it is set.
	List(ctx context.Context, collection domain.Collection) ([]domain.FinalizedProduct, error)
}

// ObjectStorage stores raw inventory files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishInventoryUploaded(ctx context.Context, uploadID string) error
	SubscribeInventoryUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns a stored upload into line-oriented text.
type TextExtractor interface {
	Extract(ctx context.Context, upload *domain.Upload) (string, error)
}

// StagingStore keeps the partial records of an upload session until they
// are committed or discarded.
type StagingStore interface {
	Save(ctx context.Context, uploadID string, products []domain.Product) error
	Load(ctx context.Context, uploadID string) ([]domain.Product, error)
	Delete(ctx context.Context, uploadID string) error
}

// CollectionClassifier assigns one of the five collections.
type CollectionClassifier interface {
	Classify(category, subcategory, signal string) domain.Collection
}

// CommitObserver receives per-collection record counts after a commit.
type CommitObserver func(counts map[domain.Collection]int)
