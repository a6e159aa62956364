package jsonutil

import "encoding/json"

// StringSlice decodes a stored JSONB array of strings, degrading to nil on
// null, empty, or unparseable content so one corrupt row never blocks a read.
// The second return reports whether the content was malformed.
func StringSlice(raw []byte) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, true
	}
	return out, false
}

// StringMap decodes a stored JSONB object into the given map type, degrading
// to the zero value on null, empty, or unparseable content. The second return
// reports whether the content was malformed.
func StringMap[V any](raw []byte) (map[string]V, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var out map[string]V
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, true
	}
	return out, false
}
