package models

import "time"

// Brand is the registry aggregate. Brands are keyed by name; all set-valued
// and mapping fields accumulate by union across ingested filings and are
// never overwritten piecemeal.
//
// Invariant: a permit number appears in exactly one of Importers, Producers,
// or BrandPermits for a given brand.
type Brand struct {
	Name          string                    `json:"name"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	PermitNumbers []string                  `json:"permit_numbers"`
	Countries     []string                  `json:"countries"`
	ClassTypes    []string                  `json:"class_types"`
	Importers     map[string]ImporterDetail `json:"importers"`
	Producers     map[string]ProducerDetail `json:"producers"`
	BrandPermits  []string                  `json:"brand_permits"`
	Enrichment    Enrichment                `json:"enrichment,omitempty"`
	SKUs          []*SKU                    `json:"skus,omitempty"`
}

// NewBrand creates an empty brand aggregate first seen at the given time.
func NewBrand(name string, now time.Time) *Brand {
	return &Brand{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Importers: make(map[string]ImporterDetail),
		Producers: make(map[string]ProducerDetail),
	}
}

// HasClassifiedPermit reports whether the permit is already recorded in any
// classification tier for this brand.
func (b *Brand) HasClassifiedPermit(permit string) bool {
	if _, ok := b.Importers[permit]; ok {
		return true
	}
	if _, ok := b.Producers[permit]; ok {
		return true
	}
	return containsString(b.BrandPermits, permit)
}

// ApplyClassification records a classification outcome on the brand.
// Membership is idempotent: a permit already present in any tier is left
// untouched and its detail payload is not refreshed (first classification
// wins per permit per brand). Returns true when the permit was newly added.
func (b *Brand) ApplyClassification(cls *Classification) bool {
	if cls == nil || cls.Permit == "" || b.HasClassifiedPermit(cls.Permit) {
		return false
	}
	switch cls.Tier {
	case TierImporter:
		if b.Importers == nil {
			b.Importers = make(map[string]ImporterDetail)
		}
		b.Importers[cls.Permit] = *cls.Importer
	case TierProducer:
		if b.Producers == nil {
			b.Producers = make(map[string]ProducerDetail)
		}
		b.Producers[cls.Permit] = *cls.Producer
	case TierBrandPermit:
		b.BrandPermits = append(b.BrandPermits, cls.Permit)
	default:
		return false
	}
	return true
}

// AddPermitNumber unions a permit number into the seen-permit set.
func (b *Brand) AddPermitNumber(permit string) {
	if permit != "" && !containsString(b.PermitNumbers, permit) {
		b.PermitNumbers = append(b.PermitNumbers, permit)
	}
}

// AddCountry unions an origin description into the country set.
func (b *Brand) AddCountry(country string) {
	if country != "" && !containsString(b.Countries, country) {
		b.Countries = append(b.Countries, country)
	}
}

// AddClassType unions a product-category description into the class-type set.
func (b *Brand) AddClassType(classType string) {
	if classType != "" && !containsString(b.ClassTypes, classType) {
		b.ClassTypes = append(b.ClassTypes, classType)
	}
}

// SKUCount returns the number of filings currently attributed to the brand.
func (b *Brand) SKUCount() int {
	return len(b.SKUs)
}

// AllPermits returns every permit number associated with the brand across
// the seen set and all three classification tiers, deduplicated.
func (b *Brand) AllPermits() []string {
	var out []string
	add := func(p string) {
		if p != "" && !containsString(out, p) {
			out = append(out, p)
		}
	}
	for _, p := range b.PermitNumbers {
		add(p)
	}
	for p := range b.Importers {
		add(p)
	}
	for p := range b.Producers {
		add(p)
	}
	for _, p := range b.BrandPermits {
		add(p)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
