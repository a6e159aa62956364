package models

import (
	"encoding/json"
	"strings"
)

// Enrichment is the opaque website/verification payload written by the
// external enrichment workflow. The engine stores it verbatim and only
// inspects the URL and verification status. Two payload shapes exist in the
// wild: the current flat shape with top-level "url"/"verification_status"
// fields, and a legacy shape where the same fields sit under a "website" key.
type Enrichment map[string]any

// StatusVerified is the verification-status value that marks a payload as
// human-verified.
const StatusVerified = "verified"

// DecodeEnrichment parses a stored enrichment payload. A null or empty
// payload decodes to nil without error.
func DecodeEnrichment(data []byte) (Enrichment, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var e Enrichment
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if len(e) == 0 {
		return nil, nil
	}
	return e, nil
}

// website returns the map holding the URL/status fields, unwrapping the
// legacy "website" nesting when present.
func (e Enrichment) website() map[string]any {
	if e == nil {
		return nil
	}
	if nested, ok := e["website"].(map[string]any); ok {
		return nested
	}
	return e
}

// URL returns the payload's website URL across both payload shapes, or empty
// string when none is present.
func (e Enrichment) URL() string {
	w := e.website()
	for _, key := range []string{"url", "website_url"} {
		if s, ok := w[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Status returns the payload's verification status across both payload
// shapes. A legacy boolean "verified" field reports as "verified"/"unverified".
func (e Enrichment) Status() string {
	w := e.website()
	for _, key := range []string{"verification_status", "status"} {
		if s, ok := w[key].(string); ok && s != "" {
			return s
		}
	}
	if b, ok := w["verified"].(bool); ok {
		if b {
			return StatusVerified
		}
		return "unverified"
	}
	return ""
}

// HasWebsite reports whether the payload carries a non-empty URL.
func (e Enrichment) HasWebsite() bool {
	return e.URL() != ""
}

// Verified reports whether the payload has been human-verified.
func (e Enrichment) Verified() bool {
	return e.Status() == StatusVerified
}
