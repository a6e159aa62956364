package models

import (
	"fmt"
	"strings"
)

// PermitKind identifies the holder role encoded in a TTB permit number.
type PermitKind string

const (
	PermitKindImporter     PermitKind = "importer"
	PermitKindDistillery   PermitKind = "distillery"
	PermitKindWinery       PermitKind = "winery"
	PermitKindBrewery      PermitKind = "brewery"
	PermitKindUnrecognized PermitKind = "unrecognized"
)

// ImporterMarker is the segment that marks a permit as importer-held.
// Only importer entries keyed by a marker-bearing permit are treated as real
// importer relationships.
const ImporterMarker = "-I-"

// permitPrefixes maps legacy prefix-style permit formats to their kind.
// Example: DSP-TX-100 is a distilled spirits plant in Texas.
var permitPrefixes = map[string]PermitKind{
	"DSP": PermitKindDistillery,
	"BWN": PermitKindWinery,
	"BW":  PermitKindWinery,
	"BR":  PermitKindBrewery,
}

// permitMarkers maps state-first marker segments to their kind.
// Example: TX-I-200 is an importer permit, CA-S-55 a spirits producer permit.
var permitMarkers = map[string]PermitKind{
	"I": PermitKindImporter,
	"S": PermitKindDistillery,
	"W": PermitKindWinery,
	"B": PermitKindBrewery,
}

// kindLabels are the human-readable producer facet labels.
var kindLabels = map[PermitKind]string{
	PermitKindDistillery: "Distillery",
	PermitKindWinery:     "Winery",
	PermitKindBrewery:    "Brewery",
	PermitKindImporter:   "Importer",
}

// labelKinds is the reverse of kindLabels.
var labelKinds = func() map[string]PermitKind {
	m := make(map[string]PermitKind, len(kindLabels))
	for k, l := range kindLabels {
		m[l] = k
	}
	return m
}()

// PermitRef is the typed result of parsing a raw permit number.
type PermitRef struct {
	Kind   PermitKind
	State  string
	Serial string
}

// Recognized reports whether the permit format decoded to a known kind.
func (r PermitRef) Recognized() bool {
	return r.Kind != PermitKindUnrecognized
}

// Label renders the producer-facet label for a parsed permit,
// e.g. "Distillery (TX)". Returns empty string for unrecognized permits.
func (r PermitRef) Label() string {
	if !r.Recognized() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", kindLabels[r.Kind], r.State)
}

// ParsePermit decodes a raw permit number into a typed reference.
// Two historical formats are understood:
//
//	prefix style:  DSP-TX-100, BWN-CA-55, BR-NY-7
//	marker style:  TX-I-200, CA-S-55, OR-W-12
//
// Anything else parses as PermitKindUnrecognized.
func ParsePermit(permit string) PermitRef {
	parts := strings.Split(strings.TrimSpace(permit), "-")
	if len(parts) < 3 {
		return PermitRef{Kind: PermitKindUnrecognized}
	}

	if kind, ok := permitPrefixes[strings.ToUpper(parts[0])]; ok {
		return PermitRef{
			Kind:   kind,
			State:  strings.ToUpper(parts[1]),
			Serial: strings.Join(parts[2:], "-"),
		}
	}

	if kind, ok := permitMarkers[strings.ToUpper(parts[1])]; ok && len(parts[0]) == 2 {
		return PermitRef{
			Kind:   kind,
			State:  strings.ToUpper(parts[0]),
			Serial: strings.Join(parts[2:], "-"),
		}
	}

	return PermitRef{Kind: PermitKindUnrecognized}
}

// ParseProducerLabel decodes a facet label like "Winery (CA)" back into its
// permit kind and state. Returns false for anything it does not recognize.
func ParseProducerLabel(label string) (PermitKind, string, bool) {
	open := strings.Index(label, " (")
	if open < 0 || !strings.HasSuffix(label, ")") {
		return PermitKindUnrecognized, "", false
	}
	kind, ok := labelKinds[label[:open]]
	if !ok {
		return PermitKindUnrecognized, "", false
	}
	state := label[open+2 : len(label)-1]
	if state == "" {
		return PermitKindUnrecognized, "", false
	}
	return kind, strings.ToUpper(state), true
}

// MatchesProducerLabel reports whether a raw SKU permit number belongs to the
// producer kind+state pair a facet label encodes.
func MatchesProducerLabel(permit string, kind PermitKind, state string) bool {
	ref := ParsePermit(permit)
	return ref.Kind == kind && ref.State == state
}

// IsImporterPermit reports whether a permit number carries the importer marker.
func IsImporterPermit(permit string) bool {
	return strings.Contains(permit, ImporterMarker)
}

// SpiritProducerKey converts a DSP-prefix permit to the state-first key used
// by the spirit producer registry (DSP-TX-100 -> TX-S-100). Returns false when
// the permit is not DSP-prefixed.
func SpiritProducerKey(permit string) (string, bool) {
	return convertedProducerKey(permit, "DSP", "S")
}

// WineProducerKey converts a BWN-prefix permit to the state-first key used by
// the wine producer registry (BWN-CA-55 -> CA-W-55). Returns false when the
// permit is not BWN-prefixed.
func WineProducerKey(permit string) (string, bool) {
	return convertedProducerKey(permit, "BWN", "W")
}

func convertedProducerKey(permit, prefix, marker string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(permit), "-")
	if len(parts) < 3 || !strings.EqualFold(parts[0], prefix) {
		return "", false
	}
	state := strings.ToUpper(parts[1])
	serial := strings.Join(parts[2:], "-")
	return fmt.Sprintf("%s-%s-%s", state, marker, serial), true
}

// DistinctPermitKinds counts how many distinct recognized kinds appear across
// the given permit numbers. Used for the market-breadth score.
func DistinctPermitKinds(permits []string) int {
	seen := make(map[PermitKind]struct{})
	for _, p := range permits {
		ref := ParsePermit(p)
		if ref.Recognized() {
			seen[ref.Kind] = struct{}{}
		}
	}
	return len(seen)
}
