package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// Sort keys for filtered brand queries.
const (
	SortName     = "name"
	SortSKUCount = "sku_count"
	SortCreated  = "created"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Website-status filter values.
const (
	WebsiteStatusHas      = "has_website"
	WebsiteStatusVerified = "verified"
	WebsiteStatusNone     = "no_website"
)

// BrandFilters is the category filter block of a query. Values within one
// category OR-combine; categories AND-combine with each other.
type BrandFilters struct {
	Countries     []string `json:"countries,omitempty"`
	AlcoholTypes  []string `json:"alcoholTypes,omitempty"`
	Importers     []string `json:"importers,omitempty"`
	Producers     []string `json:"producers,omitempty"`
	WebsiteStatus string   `json:"websiteStatus,omitempty"`
}

// QueryRequest is one filtered/paginated brand query.
type QueryRequest struct {
	Search    string       `json:"search,omitempty"`
	Filters   BrandFilters `json:"filters"`
	Page      int          `json:"page"`
	PerPage   int          `json:"per_page"`
	Sort      string       `json:"sort,omitempty"`
	Direction string       `json:"direction,omitempty"`
}

// Pagination is the response pagination block.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// BrandPage is one page of filtered brands.
type BrandPage struct {
	Brands     []*models.Brand `json:"brands"`
	Pagination Pagination      `json:"pagination"`
}

// WebsiteStatusCounts is the three-way website facet tally. Verified brands
// also count toward HasWebsite; HasWebsite plus NoWebsite equals the total
// brand count.
type WebsiteStatusCounts struct {
	HasWebsite int `json:"has_website"`
	Verified   int `json:"verified"`
	NoWebsite  int `json:"no_website"`
}

// FacetCounts tallies every facet value across the whole registry.
type FacetCounts struct {
	Countries     map[string]int      `json:"countries"`
	AlcoholTypes  map[string]int      `json:"alcoholTypes"`
	Importers     map[string]int      `json:"importers"`
	Producers     map[string]int      `json:"producers"`
	WebsiteStatus WebsiteStatusCounts `json:"websiteStatus"`
}

// QueryService answers faceted, filtered, paginated queries against the
// brand registry. Each request reads the store directly; results are
// distinct by brand even though brands join one-to-many against SKUs.
type QueryService interface {
	Query(ctx context.Context, req *QueryRequest) (*BrandPage, error)
	FacetCounts(ctx context.Context) (*FacetCounts, error)

	// GetBrand returns one brand's full projection, or (nil, nil) when the
	// brand does not exist.
	GetBrand(ctx context.Context, name string) (*models.Brand, error)
}

type queryService struct {
	brandRepo repositories.BrandRepository
	pageSize  int
	logger    *zap.Logger
}

// NewQueryService creates a new QueryService. pageSize is the default page
// size for requests that do not specify one.
func NewQueryService(brandRepo repositories.BrandRepository, pageSize int, logger *zap.Logger) QueryService {
	return &queryService{
		brandRepo: brandRepo,
		pageSize:  pageSize,
		logger:    logger.Named("query"),
	}
}

var _ QueryService = (*queryService)(nil)

func (s *queryService) GetBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand, err := s.brandRepo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get brand %q: %w", name, err)
	}
	return brand, nil
}

func (s *queryService) Query(ctx context.Context, req *QueryRequest) (*BrandPage, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	var matched []*models.Brand
	for _, b := range brands {
		if matchesQuery(b, req) {
			matched = append(matched, b)
		}
	}

	sortBrands(matched, req.Sort, req.Direction)
	return paginate(matched, req.Page, s.perPage(req)), nil
}

func (s *queryService) perPage(req *QueryRequest) int {
	if req.PerPage > 0 {
		return req.PerPage
	}
	if s.pageSize > 0 {
		return s.pageSize
	}
	return 50
}

func matchesQuery(b *models.Brand, req *QueryRequest) bool {
	if req.Search != "" &&
		!strings.Contains(strings.ToLower(b.Name), strings.ToLower(req.Search)) {
		return false
	}

	f := req.Filters
	if len(f.Countries) > 0 && !anyMember(b.Countries, f.Countries) {
		return false
	}
	if len(f.AlcoholTypes) > 0 && !anyMember(b.ClassTypes, f.AlcoholTypes) {
		return false
	}
	if len(f.Importers) > 0 && !matchesImporters(b, f.Importers) {
		return false
	}
	if len(f.Producers) > 0 && !matchesProducers(b, f.Producers) {
		return false
	}
	return matchesWebsiteStatus(b, f.WebsiteStatus)
}

// anyMember reports whether the brand's set contains any of the wanted values.
func anyMember(set []string, wanted []string) bool {
	for _, w := range wanted {
		for _, v := range set {
			if v == w {
				return true
			}
		}
	}
	return false
}

// matchesImporters tests the brand's importer owner names, counting only
// entries keyed by a marker-bearing importer permit.
func matchesImporters(b *models.Brand, wanted []string) bool {
	for permit, detail := range b.Importers {
		if !models.IsImporterPermit(permit) {
			continue
		}
		for _, w := range wanted {
			if detail.OwnerName == w {
				return true
			}
		}
	}
	return false
}

// matchesProducers decodes each facet label into a permit-kind+state pair and
// tests the brand's raw SKU permit numbers against it.
func matchesProducers(b *models.Brand, labels []string) bool {
	for _, label := range labels {
		kind, state, ok := models.ParseProducerLabel(label)
		if !ok {
			continue
		}
		for _, sku := range b.SKUs {
			if models.MatchesProducerLabel(sku.PermitNumber, kind, state) {
				return true
			}
		}
	}
	return false
}

func matchesWebsiteStatus(b *models.Brand, status string) bool {
	switch status {
	case WebsiteStatusHas:
		return b.Enrichment.HasWebsite()
	case WebsiteStatusVerified:
		return b.Enrichment.Verified()
	case WebsiteStatusNone:
		return !b.Enrichment.HasWebsite()
	default:
		return true
	}
}

func sortBrands(brands []*models.Brand, key, direction string) {
	desc := direction == DirectionDesc
	less := func(a, b *models.Brand) bool {
		switch key {
		case SortSKUCount:
			if a.SKUCount() != b.SKUCount() {
				return a.SKUCount() < b.SKUCount()
			}
		case SortCreated:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	sort.SliceStable(brands, func(i, j int) bool {
		if desc {
			return less(brands[j], brands[i])
		}
		return less(brands[i], brands[j])
	})
}

func paginate(brands []*models.Brand, page, perPage int) *BrandPage {
	if page < 1 {
		page = 1
	}
	total := len(brands)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &BrandPage{
		Brands: brands[start:end],
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
			HasPrev:    page > 1,
			HasNext:    page < totalPages,
		},
	}
}

func (s *queryService) FacetCounts(ctx context.Context) (*FacetCounts, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	counts := &FacetCounts{
		Countries:    make(map[string]int),
		AlcoholTypes: make(map[string]int),
		Importers:    make(map[string]int),
		Producers:    make(map[string]int),
	}

	// Producer facets come from SKU permit prefixes, not the producers field:
	// distinct brands per permit number, then summed per decoded label. A
	// brand touching several distinct permits of one label is counted once
	// per permit; documented approximation.
	permitLabel := make(map[string]string)
	permitBrands := make(map[string]map[string]struct{})

	for _, b := range brands {
		for _, c := range b.Countries {
			counts.Countries[c]++
		}
		for _, ct := range b.ClassTypes {
			counts.AlcoholTypes[ct]++
		}
		for permit, detail := range b.Importers {
			if models.IsImporterPermit(permit) && detail.OwnerName != "" {
				counts.Importers[detail.OwnerName]++
			}
		}
		if b.Enrichment.HasWebsite() {
			counts.WebsiteStatus.HasWebsite++
		} else {
			counts.WebsiteStatus.NoWebsite++
		}
		if b.Enrichment.Verified() {
			counts.WebsiteStatus.Verified++
		}

		for _, sku := range b.SKUs {
			ref := models.ParsePermit(sku.PermitNumber)
			if !ref.Recognized() || ref.Kind == models.PermitKindImporter {
				continue
			}
			permitLabel[sku.PermitNumber] = ref.Label()
			if permitBrands[sku.PermitNumber] == nil {
				permitBrands[sku.PermitNumber] = make(map[string]struct{})
			}
			permitBrands[sku.PermitNumber][b.Name] = struct{}{}
		}
	}

	for permit, names := range permitBrands {
		counts.Producers[permitLabel[permit]] += len(names)
	}

	return counts, nil
}
