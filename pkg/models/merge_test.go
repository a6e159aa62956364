package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeFixture(name string, created time.Time) *Brand {
	b := NewBrand(name, created)
	return b
}

func TestMergeBrandsUnionsSets(t *testing.T) {
	now := time.Now()

	a := mergeFixture("ACME SPIRITS", now.Add(-48*time.Hour))
	a.AddPermitNumber("DSP-TX-100")
	a.AddCountry("USA")
	a.AddClassType("VODKA")
	a.BrandPermits = []string{"DSP-TX-100"}

	b := mergeFixture("ACME SPIRIT CO", now.Add(-24*time.Hour))
	b.AddPermitNumber("DSP-TX-100")
	b.AddPermitNumber("TX-I-200")
	b.AddCountry("Mexico")
	b.AddClassType("TEQUILA")
	b.Importers["TX-I-200"] = ImporterDetail{PermitNumber: "TX-I-200", OwnerName: "MHW LTD"}

	merged, summary := MergeBrands("ACME SPIRITS", []*Brand{a, b}, now)

	assert.ElementsMatch(t, []string{"DSP-TX-100", "TX-I-200"}, merged.PermitNumbers)
	assert.ElementsMatch(t, []string{"USA", "Mexico"}, merged.Countries)
	assert.ElementsMatch(t, []string{"VODKA", "TEQUILA"}, merged.ClassTypes)
	assert.Equal(t, []string{"DSP-TX-100"}, merged.BrandPermits)
	assert.Contains(t, merged.Importers, "TX-I-200")

	// First-sight time survives the merge.
	assert.True(t, merged.CreatedAt.Equal(a.CreatedAt))

	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.MergedBrands)
	assert.Equal(t, 2, summary.MergedCountries)
	assert.Equal(t, 2, summary.MergedClassTypes)
	assert.Equal(t, 2, summary.MergedPermits)
}

func TestMergeBrandsLaterMemberWinsOnKeyCollision(t *testing.T) {
	now := time.Now()

	a := mergeFixture("A", now)
	a.Importers["TX-I-200"] = ImporterDetail{PermitNumber: "TX-I-200", OwnerName: "FIRST"}

	b := mergeFixture("B", now)
	b.Importers["TX-I-200"] = ImporterDetail{PermitNumber: "TX-I-200", OwnerName: "SECOND"}

	merged, _ := MergeBrands("A", []*Brand{a, b}, now)
	assert.Equal(t, "SECOND", merged.Importers["TX-I-200"].OwnerName)
}

func TestMergeBrandsEnrichmentVerifiedPreferred(t *testing.T) {
	now := time.Now()

	unverified := Enrichment{"url": "https://first.example", "verification_status": "pending"}
	verified := Enrichment{"url": "https://second.example", "verification_status": "verified"}

	a := mergeFixture("A", now)
	a.Enrichment = unverified
	b := mergeFixture("B", now)
	b.Enrichment = verified

	merged, _ := MergeBrands("A", []*Brand{a, b}, now)
	assert.Equal(t, "https://second.example", merged.Enrichment.URL())

	// First non-nil wins when neither is verified.
	c := mergeFixture("C", now)
	c.Enrichment = Enrichment{"url": "https://third.example"}
	merged, _ = MergeBrands("A", []*Brand{a, c}, now)
	assert.Equal(t, "https://first.example", merged.Enrichment.URL())

	// A verified payload is not displaced by a later verified one.
	d := mergeFixture("D", now)
	d.Enrichment = Enrichment{"url": "https://fourth.example", "verification_status": "verified"}
	merged, _ = MergeBrands("A", []*Brand{b, d}, now)
	assert.Equal(t, "https://second.example", merged.Enrichment.URL())
}

func TestMergeBrandsSkipsNilMembers(t *testing.T) {
	now := time.Now()
	a := mergeFixture("A", now)
	a.AddCountry("USA")

	merged, summary := MergeBrands("A", []*Brand{a, nil}, now)
	assert.Equal(t, []string{"USA"}, merged.Countries)
	assert.Equal(t, 2, summary.MergedBrands)
}
