package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// placeholderBrandNames are upstream data-quality artifacts, not brands.
// Records carrying one are skipped silently.
var placeholderBrandNames = map[string]struct{}{
	"":        {},
	"N/A":     {},
	"NA":      {},
	"NONE":    {},
	"UNKNOWN": {},
	"-":       {},
}

// BatchStats summarizes one ingestion batch.
type BatchStats struct {
	BatchID     uuid.UUID `json:"batch_id"`
	Rows        int       `json:"rows"`
	Skipped     int       `json:"skipped"`
	NewBrands   int       `json:"new_brands"`
	NewSKUs     int       `json:"new_skus"`
	UpdatedSKUs int       `json:"updated_skus"`
}

// IngestService feeds classified filing records into the brand registry.
type IngestService interface {
	// ProcessBatch ingests a batch of filing rows sequentially so set-union
	// fields accumulate correctly within one logical session.
	ProcessBatch(ctx context.Context, records []*models.IngestRecord) (*BatchStats, error)

	// ProcessRecord ingests a single filing row. A placeholder brand name is
	// a silent no-op and returns (nil, nil).
	ProcessRecord(ctx context.Context, rec *models.IngestRecord) (*models.UpsertResult, error)
}

type ingestService struct {
	brandRepo  repositories.BrandRepository
	classifier ClassifierService
	logger     *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(brandRepo repositories.BrandRepository, classifier ClassifierService, logger *zap.Logger) IngestService {
	return &ingestService{
		brandRepo:  brandRepo,
		classifier: classifier,
		logger:     logger.Named("ingest"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) ProcessBatch(ctx context.Context, records []*models.IngestRecord) (*BatchStats, error) {
	stats := &BatchStats{BatchID: uuid.New(), Rows: len(records)}

	for _, rec := range records {
		result, err := s.ProcessRecord(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("batch %s: record %q: %w", stats.BatchID, rec.TTBID, err)
		}
		if result == nil {
			stats.Skipped++
			continue
		}
		if result.BrandCreated {
			stats.NewBrands++
		}
		if result.SKUCreated {
			stats.NewSKUs++
		}
		if result.SKUUpdated {
			stats.UpdatedSKUs++
		}
	}

	s.logger.Info("Processed ingestion batch",
		zap.String("batch_id", stats.BatchID.String()),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("new_brands", stats.NewBrands),
		zap.Int("new_skus", stats.NewSKUs),
		zap.Int("updated_skus", stats.UpdatedSKUs))
	return stats, nil
}

func (s *ingestService) ProcessRecord(ctx context.Context, rec *models.IngestRecord) (*models.UpsertResult, error) {
	if isPlaceholderBrand(rec.BrandName) {
		s.logger.Debug("Skipping record with placeholder brand name",
			zap.String("ttb_id", rec.TTBID))
		return nil, nil
	}

	cls, err := s.classifier.Classify(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("classify permit %q: %w", rec.PermitNumber, err)
	}

	result, err := s.brandRepo.UpsertPermitRecord(ctx, rec, cls)
	if err != nil {
		return nil, fmt.Errorf("upsert permit record: %w", err)
	}
	return result, nil
}

func isPlaceholderBrand(name string) bool {
	_, ok := placeholderBrandNames[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}
