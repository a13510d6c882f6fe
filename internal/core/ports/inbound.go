package ports

import (
	"context"
	"io"

	"github.com/vasii/catalog/internal/core/domain"
)

// InventoryIngestor is the inbound contract for inventory uploads and
// synchronous previews.
type InventoryIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Upload, error)
	Paste(ctx context.Context, text string) (*domain.Upload, error)
	Preview(ctx context.Context, text string, autoClassify bool) (domain.ParseReport, error)
}

// UploadReader is the inbound read model for upload state.
type UploadReader interface {
	GetByID(ctx context.Context, id string) (*domain.Upload, error)
}

// InventoryProcessor is the inbound contract for asynchronous upload parsing.
type InventoryProcessor interface {
	ProcessByID(ctx context.Context, uploadID string) error
}

// InventoryReviewer drives the human classification step of an upload
// session.
type InventoryReviewer interface {
	ListStaged(ctx context.Context, uploadID string, inboxOnly bool) ([]domain.Product, error)
	// Override edits one staged record. line picks among records sharing
	// productID; zero means the id must be unique in the upload.
	Override(ctx context.Context, uploadID string, productID int64, line int, override domain.Override) (domain.Product, error)
	AutoClassify(ctx context.Context, uploadID string) (int, error)
	Commit(ctx context.Context, uploadID string, autoClassify bool) (*domain.Upload, error)
	Discard(ctx context.Context, uploadID string) error
}

// CatalogQueryService is the inbound read model for shoppers.
type CatalogQueryService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.FinalizedProduct, error)
	Facets(ctx context.Context) (domain.CatalogFacets, error)
}
