package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
)

type statusCall struct {
	status domain.UploadStatus
	errMsg string
}

type uploadRepoFake struct {
	uploads     map[string]*domain.Upload
	createErr   error
	getErr      error
	statusErr   error
	summaryErr  error
	statusCalls []statusCall
	parsed      int
	skipped     int
	committed   int
}

func newUploadRepoFake(uploads ...*domain.Upload) *uploadRepoFake {
	f := &uploadRepoFake{uploads: map[string]*domain.Upload{}}
	for _, u := range uploads {
		f.uploads[u.ID] = u
	}
	return f
}

func (f *uploadRepoFake) Create(_ context.Context, upload *domain.Upload) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyUpload := *upload
	f.uploads[upload.ID] = &copyUpload
	return nil
}

func (f *uploadRepoFake) GetByID(_ context.Context, id string) (*domain.Upload, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.uploads[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", fmt.Errorf("upload %s", id))
	}
	copyUpload := *u
	return &copyUpload, nil
}

func (f *uploadRepoFake) UpdateStatus(_ context.Context, id string, status domain.UploadStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if f.statusErr != nil && status != domain.UploadStatusFailed {
		return f.statusErr
	}
	if u, ok := f.uploads[id]; ok {
		u.Status = status
		u.Error = errMessage
	}
	return nil
}

func (f *uploadRepoFake) SaveParseSummary(_ context.Context, _ string, parsed, skipped int) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.parsed = parsed
	f.skipped = skipped
	return nil
}

func (f *uploadRepoFake) SaveCommitted(_ context.Context, id string, committed int) error {
	f.committed = committed
	if u, ok := f.uploads[id]; ok {
		u.CommittedCount = committed
	}
	return nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type queueFake struct {
	uploadID string
	err      error
}

func (f *queueFake) PublishInventoryUploaded(_ context.Context, uploadID string) error {
	if f.err != nil {
		return f.err
	}
	f.uploadID = uploadID
	return nil
}

func (f *queueFake) SubscribeInventoryUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Upload) (string, error) {
	return f.text, f.err
}

type stagingFake struct {
	records map[string][]domain.Product
	saveErr error
	deleted []string
}

func newStagingFake() *stagingFake {
	return &stagingFake{records: map[string][]domain.Product{}}
}

func (f *stagingFake) Save(_ context.Context, uploadID string, products []domain.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[uploadID] = append([]domain.Product(nil), products...)
	return nil
}

func (f *stagingFake) Load(_ context.Context, uploadID string) ([]domain.Product, error) {
	records, ok := f.records[uploadID]
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "load staged records", errors.New("expired"))
	}
	return append([]domain.Product(nil), records...), nil
}

func (f *stagingFake) Delete(_ context.Context, uploadID string) error {
	delete(f.records, uploadID)
	f.deleted = append(f.deleted, uploadID)
	return nil
}

type productRepoFake struct {
	upserted []domain.FinalizedProduct
	stored   []domain.FinalizedProduct
	listedBy []domain.Collection
	err      error
}

func (f *productRepoFake) UpsertBatch(_ context.Context, products []domain.FinalizedProduct) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, products...)
	return nil
}

func (f *productRepoFake) List(_ context.Context, collection domain.Collection) ([]domain.FinalizedProduct, error) {
	f.listedBy = append(f.listedBy, collection)
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.FinalizedProduct
	for _, fp := range f.stored {
		if collection == "" || fp.Product().Collection == collection {
			out = append(out, fp)
		}
	}
	return out, nil
}

type classifierFake struct {
	result domain.Collection
	calls  int
}

func (f *classifierFake) Classify(string, string, string) domain.Collection {
	f.calls++
	return f.result
}
