package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/inventory"
	"github.com/vasii/catalog/internal/core/ports"
)

const pasteFilename = "paste.txt"

var allowedExtensions = map[string]string{
	".csv":  "text/csv",
	".txt":  "text/plain",
	".tsv":  "text/tab-separated-values",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type IngestInventoryUseCase struct {
	repo       ports.UploadRepository
	storage    ports.ObjectStorage
	queue      ports.MessageQueue
	cache      *inventory.Cache
	classifier ports.CollectionClassifier
}

func NewIngestInventoryUseCase(
	repo ports.UploadRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	cache *inventory.Cache,
	classifier ports.CollectionClassifier,
) *IngestInventoryUseCase {
	if cache == nil {
		cache = inventory.NewCache(0)
	}
	return &IngestInventoryUseCase{
		repo:       repo,
		storage:    storage,
		queue:      queue,
		cache:      cache,
		classifier: classifier,
	}
}

func (uc *IngestInventoryUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	defaultMime, ok := allowedExtensions[ext]
	if !ok {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"check upload extension",
			fmt.Errorf("unsupported file type %q (want .csv, .txt, .tsv or .xlsx)", ext),
		)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = defaultMime
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	hasher := sha256.New()
	if err := uc.storage.Save(ctx, storageKey, io.TeeReader(body, hasher)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	upload := &domain.Upload{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("create upload metadata: %w", err)
	}

	if err := uc.queue.PublishInventoryUploaded(ctx, upload.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return upload, nil
}

// Paste stores pasted inventory text as a regular upload.
func (uc *IngestInventoryUseCase) Paste(ctx context.Context, text string) (*domain.Upload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "paste inventory", errors.New("text is required"))
	}
	return uc.Upload(ctx, pasteFilename, allowedExtensions[".txt"], strings.NewReader(text))
}

// Preview parses text synchronously without staging anything.
func (uc *IngestInventoryUseCase) Preview(_ context.Context, text string, autoClassify bool) (domain.ParseReport, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ParseReport{}, domain.WrapError(domain.ErrInvalidInput, "preview inventory", errors.New("text is required"))
	}
	report, _ := uc.cache.Parse(text)
	if autoClassify {
		classifyInbox(uc.classifier, report.Products)
	}
	return report, nil
}

// classifyInbox assigns a collection to every inbox record in place and
// returns how many were classified.
func classifyInbox(classifier ports.CollectionClassifier, products []domain.Product) int {
	n := 0
	for i := range products {
		if products[i].Collection != domain.CollectionInbox {
			continue
		}
		products[i].Collection = classifyRecord(classifier, products[i])
		n++
	}
	return n
}

// classifyRecord passes the size as the secondary signal.
func classifyRecord(classifier ports.CollectionClassifier, p domain.Product) domain.Collection {
	return classifier.Classify(p.Category, p.Subcategory, p.Size)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "inventory.txt"
	}
	return base
}
