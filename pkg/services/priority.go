package services

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

//go:embed rubric.yaml
var rubricYAML []byte

// rubric holds the fixed product-category point tables and the premium
// keyword list, loaded from the embedded rubric.yaml.
type rubric struct {
	Spirits         map[string]int `yaml:"spirits"`
	Wine            map[string]int `yaml:"wine"`
	Beer            map[string]int `yaml:"beer"`
	PremiumKeywords []string       `yaml:"premium_keywords"`
}

func loadRubric() (*rubric, error) {
	var r rubric
	if err := yaml.Unmarshal(rubricYAML, &r); err != nil {
		return nil, fmt.Errorf("failed to parse embedded rubric: %w", err)
	}
	return &r, nil
}

// Score component maximums.
const (
	scoreCompetitorMatch = 40
	scoreAnyImporter     = 20
	scoreWebPresence     = 15
	scoreVolumeHigh      = 10
	scoreVolumeMid       = 7
	scoreVolumeLow       = 3
	scoreRecency         = 5
	scoreMultiCountry    = 5
	scoreMultiPermitKind = 3
	scorePremiumKeyword  = 2
	scoreCap             = 100
)

// tierLabels are the fixed queue-presentation labels per outreach tier.
var tierLabels = map[int]string{
	1: "Immediate outreach",
	2: "High priority",
	3: "Medium priority",
	4: "Low priority",
	5: "Monitor only",
}

// TierLabel returns the human-readable label for an outreach tier.
func TierLabel(tier int) string {
	return tierLabels[tier]
}

// ScoreBreakdown is the per-component result of scoring one brand.
type ScoreBreakdown struct {
	Ownership       int    `json:"ownership"`
	WebPresence     int    `json:"web_presence"`
	ProductType     int    `json:"product_type"`
	Volume          int    `json:"volume"`
	Recency         int    `json:"recency"`
	MarketBreadth   int    `json:"market_breadth"`
	CompetitorMatch bool   `json:"competitor_match"`
	Total           int    `json:"total"`
	Tier            int    `json:"tier"`
	TierLabel       string `json:"tier_label"`
}

// QueueEntry is one brand in the enrichment outreach queue.
type QueueEntry struct {
	Brand *models.Brand   `json:"brand"`
	Score *ScoreBreakdown `json:"score"`
}

// PriorityService scores brands against the outreach rubric and assigns each
// a 1 (highest) to 5 (lowest) tier. Scoring is deterministic: the same brand
// state always yields the same breakdown.
type PriorityService interface {
	Score(brand *models.Brand) *ScoreBreakdown

	// EnrichmentQueue re-scores every brand, keeps those in the requested
	// tier, optionally drops brands already carrying an enrichment payload,
	// and orders by descending score (stable).
	EnrichmentQueue(ctx context.Context, tier int, excludeEnriched bool) ([]*QueueEntry, error)
}

type priorityService struct {
	brandRepo     repositories.BrandRepository
	rubric        *rubric
	competitors   []string
	recencyWindow time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

// NewPriorityService creates a new PriorityService. competitors is the
// watch list of competitor-name variants; recencyWindow is how far back a
// brand still earns recency points.
func NewPriorityService(
	brandRepo repositories.BrandRepository,
	competitors []string,
	recencyWindow time.Duration,
	logger *zap.Logger,
) (PriorityService, error) {
	r, err := loadRubric()
	if err != nil {
		return nil, err
	}
	return &priorityService{
		brandRepo:     brandRepo,
		rubric:        r,
		competitors:   competitors,
		recencyWindow: recencyWindow,
		now:           time.Now,
		logger:        logger.Named("priority"),
	}, nil
}

var _ PriorityService = (*priorityService)(nil)

func (s *priorityService) Score(brand *models.Brand) *ScoreBreakdown {
	bd := &ScoreBreakdown{}

	// 1. Ownership signal.
	if s.matchesCompetitor(brand) {
		bd.Ownership = scoreCompetitorMatch
		bd.CompetitorMatch = true
	} else if hasImporter(brand) {
		bd.Ownership = scoreAnyImporter
	}

	// 2. Web presence.
	if brand.Enrichment.HasWebsite() {
		bd.WebPresence = scoreWebPresence
	}

	// 3. Product category: max matched value across all class types.
	bd.ProductType = s.productTypeScore(brand.ClassTypes)

	// 4. Volume.
	switch n := brand.SKUCount(); {
	case n >= 5:
		bd.Volume = scoreVolumeHigh
	case n >= 2:
		bd.Volume = scoreVolumeMid
	case n == 1:
		bd.Volume = scoreVolumeLow
	}

	// 5. Recency.
	latest := brand.CreatedAt
	if brand.UpdatedAt.After(latest) {
		latest = brand.UpdatedAt
	}
	if s.now().Sub(latest) <= s.recencyWindow {
		bd.Recency = scoreRecency
	}

	// 6. Market breadth.
	if len(brand.Countries) >= 2 {
		bd.MarketBreadth += scoreMultiCountry
	}
	if models.DistinctPermitKinds(brand.AllPermits()) >= 2 {
		bd.MarketBreadth += scoreMultiPermitKind
	}
	if s.hasPremiumClassType(brand.ClassTypes) {
		bd.MarketBreadth += scorePremiumKeyword
	}

	bd.Total = bd.Ownership + bd.WebPresence + bd.ProductType + bd.Volume + bd.Recency + bd.MarketBreadth
	if bd.Total > scoreCap {
		bd.Total = scoreCap
	}

	bd.Tier = assignTier(bd.Total, bd.CompetitorMatch)
	bd.TierLabel = tierLabels[bd.Tier]
	return bd
}

// assignTier derives the outreach tier. A competitor watch-list hit is tier 1
// unconditionally, overriding the score thresholds.
func assignTier(total int, competitorMatch bool) int {
	if competitorMatch {
		return 1
	}
	switch {
	case total >= 90:
		return 1
	case total >= 70:
		return 2
	case total >= 50:
		return 3
	case total >= 30:
		return 4
	default:
		return 5
	}
}

func (s *priorityService) matchesCompetitor(brand *models.Brand) bool {
	match := func(name string) bool {
		if name == "" {
			return false
		}
		upper := strings.ToUpper(name)
		for _, c := range s.competitors {
			if strings.Contains(upper, strings.ToUpper(c)) {
				return true
			}
		}
		return false
	}
	for _, d := range brand.Importers {
		if match(d.OwnerName) || match(d.OperatingName) {
			return true
		}
	}
	for _, d := range brand.Producers {
		if match(d.OwnerName) || match(d.OperatingName) {
			return true
		}
	}
	return false
}

// hasImporter counts only importer entries keyed by marker-bearing permits.
func hasImporter(brand *models.Brand) bool {
	for permit := range brand.Importers {
		if models.IsImporterPermit(permit) {
			return true
		}
	}
	return false
}

func (s *priorityService) productTypeScore(classTypes []string) int {
	best := 0
	for _, ct := range classTypes {
		upper := strings.ToUpper(ct)
		for _, table := range []map[string]int{s.rubric.Spirits, s.rubric.Wine, s.rubric.Beer} {
			for key, value := range table {
				if value <= best {
					continue
				}
				if strings.Contains(upper, key) || strings.Contains(key, upper) {
					best = value
				}
			}
		}
	}
	return best
}

func (s *priorityService) hasPremiumClassType(classTypes []string) bool {
	for _, ct := range classTypes {
		upper := strings.ToUpper(ct)
		for _, kw := range s.rubric.PremiumKeywords {
			if strings.Contains(upper, kw) {
				return true
			}
		}
	}
	return false
}

func (s *priorityService) EnrichmentQueue(ctx context.Context, tier int, excludeEnriched bool) ([]*QueueEntry, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	var queue []*QueueEntry
	for _, b := range brands {
		if excludeEnriched && b.Enrichment != nil {
			continue
		}
		score := s.Score(b)
		if score.Tier != tier {
			continue
		}
		queue = append(queue, &QueueEntry{Brand: b, Score: score})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Score.Total > queue[j].Score.Total
	})

	s.logger.Debug("Built enrichment queue",
		zap.Int("tier", tier),
		zap.Bool("exclude_enriched", excludeEnriched),
		zap.Int("entries", len(queue)))
	return queue, nil
}
