package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/ports"
)

// ReviewInventoryUseCase drives an upload session from staged records to
// committed catalog products.
type ReviewInventoryUseCase struct {
	uploads    ports.UploadRepository
	staging    ports.StagingStore
	products   ports.ProductRepository
	classifier ports.CollectionClassifier
	onCommit   ports.CommitObserver
}

func NewReviewInventoryUseCase(
	uploads ports.UploadRepository,
	staging ports.StagingStore,
	products ports.ProductRepository,
	classifier ports.CollectionClassifier,
) *ReviewInventoryUseCase {
	return &ReviewInventoryUseCase{
		uploads:    uploads,
		staging:    staging,
		products:   products,
		classifier: classifier,
	}
}

func (uc *ReviewInventoryUseCase) SetCommitObserver(observer ports.CommitObserver) {
	uc.onCommit = observer
}

func (uc *ReviewInventoryUseCase) ListStaged(ctx context.Context, uploadID string, inboxOnly bool) ([]domain.Product, error) {
	records, err := uc.loadSession(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if !inboxOnly {
		return records, nil
	}
	inbox := make([]domain.Product, 0, len(records))
	for _, p := range records {
		if p.Collection == domain.CollectionInbox {
			inbox = append(inbox, p)
		}
	}
	return inbox, nil
}

// Override applies reviewer changes to one staged record. A changed
// subcategory or size without an explicit collection re-runs the classifier.
func (uc *ReviewInventoryUseCase) Override(
	ctx context.Context,
	uploadID string,
	productID int64,
	line int,
	override domain.Override,
) (domain.Product, error) {
	if err := validateOverride(override); err != nil {
		return domain.Product{}, err
	}

	records, err := uc.loadSession(ctx, uploadID)
	if err != nil {
		return domain.Product{}, err
	}

	idx, err := findStaged(records, uploadID, productID, line)
	if err != nil {
		return domain.Product{}, err
	}

	p := &records[idx]
	reclassify := false
	if override.Subcategory != nil {
		p.Subcategory = strings.TrimSpace(*override.Subcategory)
		reclassify = true
	}
	if override.Size != nil {
		p.Size = strings.TrimSpace(*override.Size)
		reclassify = true
	}
	if override.Stock != nil {
		p.Stock = *override.Stock
	}
	p.IsPlus = domain.IsPlusSize(p.Size, p.Subcategory, p.Category)

	switch {
	case override.Collection != nil:
		p.Collection = *override.Collection
	case reclassify:
		p.Collection = classifyRecord(uc.classifier, *p)
	}

	if err := uc.staging.Save(ctx, uploadID, records); err != nil {
		return domain.Product{}, fmt.Errorf("save staged records: %w", err)
	}
	return *p, nil
}

// AutoClassify classifies every record still in the inbox and returns how
// many changed.
func (uc *ReviewInventoryUseCase) AutoClassify(ctx context.Context, uploadID string) (int, error) {
	records, err := uc.loadSession(ctx, uploadID)
	if err != nil {
		return 0, err
	}
	n := classifyInbox(uc.classifier, records)
	if n == 0 {
		return 0, nil
	}
	if err := uc.staging.Save(ctx, uploadID, records); err != nil {
		return 0, fmt.Errorf("save staged records: %w", err)
	}
	return n, nil
}

// Commit finalizes the staged records and upserts them into the catalog.
// Records left in the inbox block the commit unless autoClassify is set.
// When an id appears on several lines only the last one is stored.
func (uc *ReviewInventoryUseCase) Commit(ctx context.Context, uploadID string, autoClassify bool) (*domain.Upload, error) {
	records, err := uc.loadSession(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if autoClassify {
		classifyInbox(uc.classifier, records)
	}
	records = lastPerID(records)

	if pending := countInbox(records); pending > 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"commit upload",
			fmt.Errorf("%d records are still unclassified", pending),
		)
	}

	finalized := make([]domain.FinalizedProduct, 0, len(records))
	for _, p := range records {
		fp, err := domain.Finalize(p)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.Line, err)
		}
		finalized = append(finalized, fp)
	}

	if len(finalized) > 0 {
		if err := uc.products.UpsertBatch(ctx, finalized); err != nil {
			return nil, fmt.Errorf("upsert products: %w", err)
		}
	}
	if err := uc.uploads.SaveCommitted(ctx, uploadID, len(finalized)); err != nil {
		return nil, fmt.Errorf("save committed count: %w", err)
	}
	if err := uc.uploads.UpdateStatus(ctx, uploadID, domain.UploadStatusCommitted, ""); err != nil {
		return nil, fmt.Errorf("set status=committed: %w", err)
	}
	if err := uc.staging.Delete(ctx, uploadID); err != nil {
		return nil, fmt.Errorf("drop staged records: %w", err)
	}
	if uc.onCommit != nil {
		counts := make(map[domain.Collection]int)
		for _, fp := range finalized {
			counts[fp.Product().Collection]++
		}
		uc.onCommit(counts)
	}

	upload, err := uc.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("fetch upload by id: %w", err)
	}
	return upload, nil
}

// Discard ends an upload session without persisting anything.
func (uc *ReviewInventoryUseCase) Discard(ctx context.Context, uploadID string) error {
	upload, err := uc.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("fetch upload by id: %w", err)
	}
	switch upload.Status {
	case domain.UploadStatusCommitted, domain.UploadStatusDiscarded:
		return domain.WrapError(
			domain.ErrConflict,
			"discard upload",
			fmt.Errorf("upload %s is already %s", uploadID, upload.Status),
		)
	}
	if err := uc.staging.Delete(ctx, uploadID); err != nil {
		return fmt.Errorf("drop staged records: %w", err)
	}
	if err := uc.uploads.UpdateStatus(ctx, uploadID, domain.UploadStatusDiscarded, ""); err != nil {
		return fmt.Errorf("set status=discarded: %w", err)
	}
	return nil
}

func (uc *ReviewInventoryUseCase) loadSession(ctx context.Context, uploadID string) ([]domain.Product, error) {
	upload, err := uc.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("fetch upload by id: %w", err)
	}
	if upload.Status != domain.UploadStatusStaged {
		return nil, domain.WrapError(
			domain.ErrConflict,
			"load upload session",
			fmt.Errorf("upload %s is %s, not %s", uploadID, upload.Status, domain.UploadStatusStaged),
		)
	}
	records, err := uc.staging.Load(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("load staged records: %w", err)
	}
	return records, nil
}

func validateOverride(o domain.Override) error {
	var problems []string
	if o.Subcategory != nil && strings.TrimSpace(*o.Subcategory) == "" {
		problems = append(problems, "subcategory must not be empty")
	}
	if o.Size != nil && strings.TrimSpace(*o.Size) == "" {
		problems = append(problems, "size must not be empty")
	}
	if o.Stock != nil && *o.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if o.Collection != nil && !o.Collection.Valid() {
		problems = append(problems, fmt.Sprintf("collection %q is not one of the five collections", *o.Collection))
	}
	if len(problems) > 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate override", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

// findStaged locates the record for productID, narrowed by line when it is
// set. An id shared by several lines must be disambiguated.
func findStaged(records []domain.Product, uploadID string, productID int64, line int) (int, error) {
	idx := -1
	var lines []string
	for i := range records {
		if records[i].ID != productID {
			continue
		}
		if line > 0 && records[i].Line != line {
			continue
		}
		idx = i
		lines = append(lines, strconv.Itoa(records[i].Line))
	}
	switch {
	case idx < 0 && line > 0:
		return -1, domain.WrapError(
			domain.ErrProductNotFound,
			"override staged record",
			fmt.Errorf("product %d on line %d is not part of upload %s", productID, line, uploadID),
		)
	case idx < 0:
		return -1, domain.WrapError(
			domain.ErrProductNotFound,
			"override staged record",
			fmt.Errorf("product %d is not part of upload %s", productID, uploadID),
		)
	case len(lines) > 1:
		return -1, domain.WrapError(
			domain.ErrConflict,
			"override staged record",
			fmt.Errorf("product %d appears on lines %s; choose one with line", productID, strings.Join(lines, ", ")),
		)
	}
	return idx, nil
}

// lastPerID keeps the last record of every id, in order of that record.
func lastPerID(records []domain.Product) []domain.Product {
	last := make(map[int64]int, len(records))
	for i, p := range records {
		last[p.ID] = i
	}
	if len(last) == len(records) {
		return records
	}
	out := make([]domain.Product, 0, len(last))
	for i, p := range records {
		if last[p.ID] == i {
			out = append(out, p)
		}
	}
	return out
}

func countInbox(records []domain.Product) int {
	n := 0
	for _, p := range records {
		if p.Collection == domain.CollectionInbox {
			n++
		}
	}
	return n
}
