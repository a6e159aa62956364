package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// ClassifierService decides which ownership tier a filed permit belongs to.
// Evaluation is strict first-match-wins:
//
//  1. confirmed importer match on the record (resolved importer permit
//     carrying the importer marker; the permit may equal the raw permit on
//     the filing, and the importer registry row, when present, supplies the
//     stored detail),
//  2. raw permit found in the producer registries (spirit, then wine),
//  3. reformatted permit found in the producer registries
//     (DSP-<st>-<n> probes spirit under <st>-S-<n>,
//     BWN-<st>-<n> probes wine under <st>-W-<n>),
//  4. otherwise the permit is brand-owned.
type ClassifierService interface {
	Classify(ctx context.Context, rec *models.IngestRecord) (*models.Classification, error)
}

type classifierService struct {
	registryRepo repositories.RegistryRepository
	logger       *zap.Logger
}

// NewClassifierService creates a new ClassifierService.
func NewClassifierService(registryRepo repositories.RegistryRepository, logger *zap.Logger) ClassifierService {
	return &classifierService{
		registryRepo: registryRepo,
		logger:       logger.Named("classifier"),
	}
}

var _ ClassifierService = (*classifierService)(nil)

func (s *classifierService) Classify(ctx context.Context, rec *models.IngestRecord) (*models.Classification, error) {
	// Step 1: confirmed importer match resolved upstream. The resolved permit
	// must carry the importer marker; a markerless "match" is a known bad
	// write pattern and falls through to the producer probes instead of being
	// stored as an importer and patched on every read. The importer registry
	// is authoritative for detail fields when it holds the permit; the
	// record's inline snapshot is the fallback.
	if imp := rec.Importer; imp != nil && imp.PermitNumber != "" {
		if models.IsImporterPermit(imp.PermitNumber) {
			detail := &models.ImporterDetail{
				PermitNumber:  imp.PermitNumber,
				OwnerName:     imp.OwnerName,
				OperatingName: imp.OperatingName,
				Street:        imp.Street,
				City:          imp.City,
				State:         imp.State,
				Zip:           imp.Zip,
			}
			registered, err := s.registryRepo.LookupImporter(ctx, imp.PermitNumber)
			if err != nil {
				return nil, fmt.Errorf("importer lookup for %q: %w", imp.PermitNumber, err)
			}
			if registered != nil {
				detail = &models.ImporterDetail{
					PermitNumber:  registered.PermitNumber,
					OwnerName:     registered.OwnerName,
					OperatingName: registered.OperatingName,
					Street:        registered.Street,
					City:          registered.City,
					State:         registered.State,
					Zip:           registered.Zip,
				}
			}
			return &models.Classification{
				Tier:     models.TierImporter,
				Permit:   imp.PermitNumber,
				Importer: detail,
			}, nil
		}
		s.logger.Debug("Resolved importer permit lacks importer marker, probing producers instead",
			zap.String("brand", rec.BrandName),
			zap.String("resolved_permit", imp.PermitNumber))
	}

	// Step 2: raw permit in the producer registries, spirit before wine.
	for _, registry := range []models.ProducerRegistry{models.RegistrySpirit, models.RegistryWine} {
		producer, err := s.registryRepo.LookupProducer(ctx, registry, rec.PermitNumber)
		if err != nil {
			return nil, fmt.Errorf("producer lookup for %q: %w", rec.PermitNumber, err)
		}
		if producer != nil {
			return &models.Classification{
				Tier:     models.TierProducer,
				Permit:   rec.PermitNumber,
				Producer: producer.Detail(""),
			}, nil
		}
	}

	// Step 3: reformatted keys for historically inconsistent permit formats.
	if key, ok := models.SpiritProducerKey(rec.PermitNumber); ok {
		producer, err := s.registryRepo.LookupProducer(ctx, models.RegistrySpirit, key)
		if err != nil {
			return nil, fmt.Errorf("spirit producer probe for %q: %w", key, err)
		}
		if producer != nil {
			return &models.Classification{
				Tier:     models.TierProducer,
				Permit:   rec.PermitNumber,
				Producer: producer.Detail(rec.PermitNumber),
			}, nil
		}
	}
	if key, ok := models.WineProducerKey(rec.PermitNumber); ok {
		producer, err := s.registryRepo.LookupProducer(ctx, models.RegistryWine, key)
		if err != nil {
			return nil, fmt.Errorf("wine producer probe for %q: %w", key, err)
		}
		if producer != nil {
			return &models.Classification{
				Tier:     models.TierProducer,
				Permit:   rec.PermitNumber,
				Producer: producer.Detail(rec.PermitNumber),
			}, nil
		}
	}

	// Step 4: brand-owned permit, no detail payload.
	return &models.Classification{
		Tier:   models.TierBrandPermit,
		Permit: rec.PermitNumber,
	}, nil
}
