package models

import "time"

// MergeSummary reports what a consolidation folded together, for audit
// display.
type MergeSummary struct {
	MergedBrands     int `json:"merged_brands"`
	MergedCountries  int `json:"merged_countries"`
	MergedClassTypes int `json:"merged_class_types"`
	MergedPermits    int `json:"merged_permits"`
}

// MergeBrands folds the member brands into one canonical aggregate.
// Merge order is the input order and is deterministic:
//
//   - set-valued fields (permit numbers, countries, class types, brand
//     permits) union, duplicates collapsing,
//   - importer/producer maps merge by permit key with the later member
//     winning on collision,
//   - enrichment keeps the first non-nil payload, except that a later
//     verified payload overrides an earlier unverified one.
//
// CreatedAt is the earliest member's first-sight time. SKU reassignment is
// the store's job; the returned brand carries no SKUs.
func MergeBrands(canonical string, members []*Brand, now time.Time) (*Brand, *MergeSummary) {
	merged := NewBrand(canonical, now)

	var earliest time.Time
	for _, m := range members {
		if m == nil {
			continue
		}
		if earliest.IsZero() || (!m.CreatedAt.IsZero() && m.CreatedAt.Before(earliest)) {
			earliest = m.CreatedAt
		}
		for _, p := range m.PermitNumbers {
			merged.AddPermitNumber(p)
		}
		for _, c := range m.Countries {
			merged.AddCountry(c)
		}
		for _, ct := range m.ClassTypes {
			merged.AddClassType(ct)
		}
		for _, p := range m.BrandPermits {
			if !containsString(merged.BrandPermits, p) {
				merged.BrandPermits = append(merged.BrandPermits, p)
			}
		}
		for permit, detail := range m.Importers {
			merged.Importers[permit] = detail
		}
		for permit, detail := range m.Producers {
			merged.Producers[permit] = detail
		}
		merged.Enrichment = mergeEnrichment(merged.Enrichment, m.Enrichment)
	}
	if !earliest.IsZero() {
		merged.CreatedAt = earliest
	}

	return merged, &MergeSummary{
		MergedBrands:     len(members),
		MergedCountries:  len(merged.Countries),
		MergedClassTypes: len(merged.ClassTypes),
		MergedPermits:    len(merged.PermitNumbers),
	}
}

// mergeEnrichment keeps the first non-nil payload, letting a later verified
// payload replace an unverified earlier one.
func mergeEnrichment(current, candidate Enrichment) Enrichment {
	if candidate == nil {
		return current
	}
	if current == nil {
		return candidate
	}
	if candidate.Verified() && !current.Verified() {
		return candidate
	}
	return current
}
