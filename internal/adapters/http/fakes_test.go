package httpadapter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/core/collection"
	"github.com/vasii/catalog/internal/core/domain"
)

type ingestFake struct {
	err         error
	report      domain.ParseReport
	gotFilename string
	gotBody     string
	gotAuto     bool
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.gotFilename = filename
	f.gotBody = string(raw)

	now := time.Now().UTC()
	return &domain.Upload{
		ID:          "up-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "up-1_" + filename,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (f *ingestFake) Paste(ctx context.Context, text string) (*domain.Upload, error) {
	return f.Upload(ctx, "paste.txt", "text/plain", strings.NewReader(text))
}

func (f *ingestFake) Preview(_ context.Context, text string, autoClassify bool) (domain.ParseReport, error) {
	if f.err != nil {
		return domain.ParseReport{}, f.err
	}
	f.gotBody = text
	f.gotAuto = autoClassify
	return f.report, nil
}

type uploadsFake struct {
	err error
}

func (f uploadsFake) GetByID(_ context.Context, id string) (*domain.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Upload{ID: id, Filename: "inv.csv", Status: domain.UploadStatusStaged, ParsedCount: 3}, nil
}

type reviewFake struct {
	err          error
	records      []domain.Product
	gotInbox     bool
	gotProductID int64
	gotLine      int
	gotOverride  domain.Override
	gotAuto      *bool
	discarded    string
}

func (f *reviewFake) ListStaged(_ context.Context, _ string, inboxOnly bool) ([]domain.Product, error) {
	f.gotInbox = inboxOnly
	return f.records, f.err
}

func (f *reviewFake) Override(_ context.Context, _ string, productID int64, line int, override domain.Override) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	f.gotProductID = productID
	f.gotLine = line
	f.gotOverride = override
	p := domain.Product{ID: productID, Line: line, Collection: domain.CollectionInbox}
	if override.Collection != nil {
		p.Collection = *override.Collection
	}
	return p, nil
}

func (f *reviewFake) AutoClassify(context.Context, string) (int, error) {
	return 2, f.err
}

func (f *reviewFake) Commit(_ context.Context, id string, autoClassify bool) (*domain.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotAuto = &autoClassify
	return &domain.Upload{ID: id, Status: domain.UploadStatusCommitted, CommittedCount: 2}, nil
}

func (f *reviewFake) Discard(_ context.Context, id string) error {
	f.discarded = id
	return f.err
}

type catalogFake struct {
	err       error
	products  []domain.FinalizedProduct
	gotFilter domain.ProductFilter
}

func (f *catalogFake) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.FinalizedProduct, error) {
	f.gotFilter = filter
	return f.products, f.err
}

func (f *catalogFake) Facets(context.Context) (domain.CatalogFacets, error) {
	return domain.CatalogFacets{Categories: []string{"WOMEN"}, Sizes: []string{"S", "M"}, MinPrice: 1000, MaxPrice: 5000}, f.err
}

type routerFixture struct {
	ingest  *ingestFake
	review  *reviewFake
	catalog *catalogFake
	handler http.Handler
}

func newRouterFixture(t *testing.T, cfg config.Config) *routerFixture {
	t.Helper()
	collections, err := collection.DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	f := &routerFixture{
		ingest:  &ingestFake{},
		review:  &reviewFake{},
		catalog: &catalogFake{},
	}
	f.handler = NewRouter(cfg, f.ingest, uploadsFake{}, f.review, f.catalog, collections).Handler()
	return f
}

func newTestHandler(t *testing.T, cfg config.Config) http.Handler {
	return newRouterFixture(t, cfg).handler
}
