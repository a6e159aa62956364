package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// ConsolidationResult is the structured outcome of a merge request. Failures
// carry the error description; no partial merge is ever persisted.
type ConsolidationResult struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error,omitempty"`
	Summary *models.MergeSummary `json:"merged_summary,omitempty"`
}

// ConsolidationService merges duplicate brand identities into one canonical
// identity.
type ConsolidationService interface {
	Consolidate(ctx context.Context, canonical string, members []string) *ConsolidationResult
}

type consolidationService struct {
	brandRepo repositories.BrandRepository
	logger    *zap.Logger
}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService(brandRepo repositories.BrandRepository, logger *zap.Logger) ConsolidationService {
	return &consolidationService{
		brandRepo: brandRepo,
		logger:    logger.Named("consolidation"),
	}
}

var _ ConsolidationService = (*consolidationService)(nil)

func (s *consolidationService) Consolidate(ctx context.Context, canonical string, members []string) *ConsolidationResult {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return &ConsolidationResult{Error: "canonical name is required"}
	}
	if len(members) == 0 {
		return &ConsolidationResult{Error: "at least one member brand is required"}
	}

	// The canonical brand folds in as an ordinary member; its prior state
	// survives only through the merge, never additively.
	if !containsName(members, canonical) {
		members = append([]string{canonical}, members...)
	}

	summary, err := s.brandRepo.Consolidate(ctx, canonical, members)
	if err != nil {
		s.logger.Error("Consolidation failed, transaction rolled back",
			zap.String("canonical", canonical),
			zap.Strings("members", members),
			zap.Error(err))
		return &ConsolidationResult{Error: err.Error()}
	}

	return &ConsolidationResult{Success: true, Summary: summary}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
