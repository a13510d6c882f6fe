package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/inventory"
	"github.com/vasii/catalog/internal/core/ports"
)

type ProcessInventoryUseCase struct {
	repo         ports.UploadRepository
	extractor    ports.TextExtractor
	staging      ports.StagingStore
	cache        *inventory.Cache
	classifier   ports.CollectionClassifier
	autoClassify bool
}

func NewProcessInventoryUseCase(
	repo ports.UploadRepository,
	extractor ports.TextExtractor,
	staging ports.StagingStore,
	cache *inventory.Cache,
	classifier ports.CollectionClassifier,
	autoClassify bool,
) *ProcessInventoryUseCase {
	if cache == nil {
		cache = inventory.NewCache(0)
	}
	return &ProcessInventoryUseCase{
		repo:         repo,
		extractor:    extractor,
		staging:      staging,
		cache:        cache,
		classifier:   classifier,
		autoClassify: autoClassify,
	}
}

func (uc *ProcessInventoryUseCase) ProcessByID(ctx context.Context, uploadID string) error {
	if err := uc.markStatus(ctx, uploadID, domain.UploadStatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	report, err := uc.processPipeline(ctx, uploadID)
	if err != nil {
		if failErr := uc.markFailed(ctx, uploadID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveParseSummary(ctx, uploadID, report.Parsed, report.Skipped); err != nil {
		err = fmt.Errorf("save parse summary: %w", err)
		if failErr := uc.markFailed(ctx, uploadID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, uploadID, domain.UploadStatusStaged, ""); err != nil {
		return fmt.Errorf("set status=staged: %w", err)
	}

	return nil
}

func (uc *ProcessInventoryUseCase) processPipeline(ctx context.Context, uploadID string) (domain.ParseReport, error) {
	upload, err := uc.repo.GetByID(ctx, uploadID)
	if err != nil {
		return domain.ParseReport{}, fmt.Errorf("fetch upload by id: %w", err)
	}

	text, err := uc.extractText(ctx, upload)
	if err != nil {
		return domain.ParseReport{}, err
	}

	report, _ := uc.cache.Parse(text)
	if uc.autoClassify {
		classifyInbox(uc.classifier, report.Products)
	}

	if err := uc.staging.Save(ctx, uploadID, report.Products); err != nil {
		return domain.ParseReport{}, fmt.Errorf("stage parsed records: %w", err)
	}
	return report, nil
}

func (uc *ProcessInventoryUseCase) extractText(ctx context.Context, upload *domain.Upload) (string, error) {
	text, err := uc.extractor.Extract(ctx, upload)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessInventoryUseCase) markStatus(ctx context.Context, uploadID string, status domain.UploadStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, uploadID, status, errMessage)
}

func (uc *ProcessInventoryUseCase) markFailed(ctx context.Context, uploadID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, uploadID, domain.UploadStatusFailed, processErr.Error())
}
