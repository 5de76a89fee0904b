// Package filters turns individual OpenBGE platform records into the flat
// client entities in internal/domain. Every function is total: missing or
// malformed optional structure degrades to a default value.
package filters

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Sample is a platform biosample record
type Sample struct {
	BiosampleID FlexString    `json:"biosample_id"`
	SampleTime  FlexString    `json:"sample_time"`
	Project     List[Project] `json:"project"`
}

// Project is a project entry attached to a biosample
type Project struct {
	ProjectOmic FlexString        `json:"project_omic"`
	DataElement List[DataElement] `json:"data_element"`
}

// DataElement is a typed artefact of a project (survey, report...)
type DataElement struct {
	Type          FlexString `json:"type"`
	DataElementID FlexInt    `json:"data_element_id"`
}

// Variant is a platform genotype record
type Variant struct {
	AlternateID stringList  `json:"alternate_id"`
	Call        VariantCall `json:"variant"`
}

// VariantCall is the genotype call on a Variant
type VariantCall struct {
	Chromosome FlexString `json:"chromosome"`
	Position   FlexInt    `json:"position"`
	Genotype   FlexString `json:"genotype"`
	NoCall     FlexBool   `json:"no_call"`
}

// SurveyResponse is a platform survey answer sheet reference
type SurveyResponse struct {
	BiosampleID FlexString `json:"biosample_id"`
	SurveyID    FlexInt    `json:"survey_id"`
	ResponseID  FlexInt    `json:"response_id"`
	SubmitTime  FlexString `json:"submit_time"`
}

// SearchHit is one raw search record. Data is decoded according to Scope.
type SearchHit struct {
	ID        FlexString      `json:"id"`
	Scope     FlexString      `json:"scope"`
	Type      FlexString      `json:"type"`
	Highlight Highlight       `json:"highlight"`
	Data      json.RawMessage `json:"data"`
}

// SearchData is the data block of a search call
type SearchData struct {
	Total FlexInt         `json:"total"`
	Pages FlexInt         `json:"pages"`
	List  List[SearchHit] `json:"list"`
}

// List decodes a JSON array record by record. A record with a malformed
// field keeps the fields that did decode; elements that are not objects are
// dropped and a non-array value decodes as an empty list.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler
func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = nil
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil
	}

	*l = Records[T](raws)
	return nil
}

// Records decodes each raw element into T with the same rules as List
func Records[T any](raws []json.RawMessage) List[T] {
	out := make(List[T], 0, len(raws))
	for _, raw := range raws {
		if !isObject(raw) {
			continue
		}
		var v T
		_ = json.Unmarshal(raw, &v)
		out = append(out, v)
	}
	return out
}

// Highlight holds highlighted field values keyed by field path. A value is
// either a string or a list of fragments.
type Highlight map[string]json.RawMessage

// UnmarshalJSON implements json.Unmarshaler. Anything but an object decodes
// as an empty highlight.
func (h *Highlight) UnmarshalJSON(b []byte) error {
	*h = nil
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err == nil {
		*h = m
	}
	return nil
}

// Get returns the highlighted value of field, or "" when absent
func (h Highlight) Get(field string) string {
	raw, ok := h[field]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var fragments []string
	if err := json.Unmarshal(raw, &fragments); err == nil {
		return strings.Join(fragments, "")
	}
	return ""
}

// Prefer returns the highlighted value of field when present, else raw
func (h Highlight) Prefer(field, raw string) string {
	if v := h.Get(field); v != "" {
		return v
	}
	return raw
}

// FlexInt decodes an integer sent as a JSON number or numeric string
type FlexInt struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Unparseable input leaves the value invalid.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}

	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		*f = FlexInt{Value: n, Valid: true}
		return nil
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*f = FlexInt{Value: int64(n), Valid: true}
	}
	return nil
}

// Ptr returns a pointer to the value, or nil when invalid
func (f FlexInt) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexString decodes a string sent as a JSON string or number
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
	case b[0] == '{' || b[0] == '[':
		*f = ""
	default:
		*f = FlexString(b)
	}
	return nil
}

// FlexBool decodes a flag sent as a bool, 0/1 or "true"/"false"
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseBool(s)
	*f = FlexBool(err == nil && v)
	return nil
}

// stringList decodes a JSON string or list of strings
type stringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *stringList) UnmarshalJSON(b []byte) error {
	*l = nil
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one != "" {
			*l = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
