package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePermit(t *testing.T) {
	tests := []struct {
		name   string
		permit string
		kind   PermitKind
		state  string
		serial string
	}{
		{"distillery prefix", "DSP-TX-100", PermitKindDistillery, "TX", "100"},
		{"winery prefix BWN", "BWN-CA-55", PermitKindWinery, "CA", "55"},
		{"winery prefix BW", "BW-OR-12", PermitKindWinery, "OR", "12"},
		{"brewery prefix", "BR-NY-7", PermitKindBrewery, "NY", "7"},
		{"importer marker", "TX-I-200", PermitKindImporter, "TX", "200"},
		{"spirit producer marker", "CA-S-55", PermitKindDistillery, "CA", "55"},
		{"wine producer marker", "OR-W-12", PermitKindWinery, "OR", "12"},
		{"lowercase prefix", "dsp-tx-100", PermitKindDistillery, "TX", "100"},
		{"multi-part serial", "DSP-KY-15001-A", PermitKindDistillery, "KY", "15001-A"},
		{"too few segments", "DSP-TX", PermitKindUnrecognized, "", ""},
		{"unknown prefix", "XYZ-TX-100", PermitKindUnrecognized, "", ""},
		{"empty", "", PermitKindUnrecognized, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := ParsePermit(tt.permit)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.state, ref.State)
			assert.Equal(t, tt.serial, ref.Serial)
		})
	}
}

func TestPermitRefLabel(t *testing.T) {
	assert.Equal(t, "Distillery (TX)", ParsePermit("DSP-TX-100").Label())
	assert.Equal(t, "Winery (CA)", ParsePermit("BWN-CA-55").Label())
	assert.Equal(t, "Importer (TX)", ParsePermit("TX-I-200").Label())
	assert.Equal(t, "", ParsePermit("garbage").Label())
}

func TestParseProducerLabel(t *testing.T) {
	kind, state, ok := ParseProducerLabel("Distillery (KY)")
	assert.True(t, ok)
	assert.Equal(t, PermitKindDistillery, kind)
	assert.Equal(t, "KY", state)

	_, _, ok = ParseProducerLabel("Distillery")
	assert.False(t, ok)
	_, _, ok = ParseProducerLabel("Bottler (KY)")
	assert.False(t, ok)
	_, _, ok = ParseProducerLabel("Winery ()")
	assert.False(t, ok)
}

func TestMatchesProducerLabel(t *testing.T) {
	assert.True(t, MatchesProducerLabel("DSP-KY-100", PermitKindDistillery, "KY"))
	assert.True(t, MatchesProducerLabel("KY-S-100", PermitKindDistillery, "KY"))
	assert.False(t, MatchesProducerLabel("DSP-TX-100", PermitKindDistillery, "KY"))
	assert.False(t, MatchesProducerLabel("BWN-KY-100", PermitKindDistillery, "KY"))
}

func TestProducerKeyConversion(t *testing.T) {
	key, ok := SpiritProducerKey("DSP-TX-100")
	assert.True(t, ok)
	assert.Equal(t, "TX-S-100", key)

	_, ok = SpiritProducerKey("BWN-CA-55")
	assert.False(t, ok)

	key, ok = WineProducerKey("BWN-CA-55")
	assert.True(t, ok)
	assert.Equal(t, "CA-W-55", key)

	_, ok = WineProducerKey("DSP-TX-100")
	assert.False(t, ok)
}

func TestIsImporterPermit(t *testing.T) {
	assert.True(t, IsImporterPermit("TX-I-200"))
	assert.False(t, IsImporterPermit("DSP-TX-100"))
	assert.False(t, IsImporterPermit(""))
}

func TestDistinctPermitKinds(t *testing.T) {
	assert.Equal(t, 0, DistinctPermitKinds(nil))
	assert.Equal(t, 1, DistinctPermitKinds([]string{"DSP-TX-100", "DSP-KY-1"}))
	assert.Equal(t, 2, DistinctPermitKinds([]string{"DSP-TX-100", "TX-I-200", "garbage"}))
	assert.Equal(t, 3, DistinctPermitKinds([]string{"DSP-TX-100", "TX-I-200", "BWN-CA-55"}))
}
