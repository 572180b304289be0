package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Well-known analysis fields. The remote service may return arbitrary
// additional fields; they are kept and rendered generically.
const (
	FieldSummary        = "summary"
	FieldDiagnosis      = "diagnosis"
	FieldKeyFindings    = "key_findings"
	FieldUrgentConcerns = "urgent_concerns"
)

// FieldKind discriminates the value shapes an analysis field can take
type FieldKind int

const (
	FieldKindText FieldKind = iota
	FieldKindList
	FieldKindObject
)

// FieldValue is a tagged variant for one analysis field: a string, an
// ordered sequence of strings, or a nested mapping.
type FieldValue struct {
	Kind   FieldKind
	Text   string
	Items  []string
	Object map[string]FieldValue
}

// TextValue creates a text field value
func TextValue(s string) FieldValue {
	return FieldValue{Kind: FieldKindText, Text: s}
}

// ListValue creates a list field value
func ListValue(items ...string) FieldValue {
	return FieldValue{Kind: FieldKindList, Items: items}
}

// IsEmpty reports whether the value counts as absent for rendering and
// downstream payloads: empty string, empty sequence, or empty mapping.
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case FieldKindText:
		return strings.TrimSpace(v.Text) == ""
	case FieldKindList:
		return len(v.Items) == 0
	case FieldKindObject:
		return len(v.Object) == 0
	}
	return true
}

// Flatten renders the value as a single delimited string for flat
// notification payloads
func (v FieldValue) Flatten(sep string) string {
	switch v.Kind {
	case FieldKindText:
		return v.Text
	case FieldKindList:
		return strings.Join(v.Items, sep)
	case FieldKindObject:
		parts := make([]string, 0, len(v.Object))
		for _, key := range sortedKeys(v.Object) {
			parts = append(parts, fmt.Sprintf("%s: %s", key, v.Object[key].Flatten(sep)))
		}
		return strings.Join(parts, sep)
	}
	return ""
}

// UnmarshalJSON decodes a string, an array, or an object into the
// matching variant. Non-string scalars are kept as their text form so
// unknown fields still render.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty field value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FieldValue{Kind: FieldKindText, Text: s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, elem := range raw {
			var inner FieldValue
			if err := inner.UnmarshalJSON(elem); err != nil {
				return err
			}
			items = append(items, inner.Flatten(", "))
		}
		*v = FieldValue{Kind: FieldKindList, Items: items}
		return nil
	case '{':
		var raw map[string]FieldValue
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*v = FieldValue{Kind: FieldKindObject, Object: raw}
		return nil
	case 'n':
		*v = FieldValue{Kind: FieldKindText, Text: ""}
		return nil
	default:
		// numbers and booleans render as their literal text
		*v = FieldValue{Kind: FieldKindText, Text: string(data)}
		return nil
	}
}

// MarshalJSON encodes the variant back to its natural JSON shape
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FieldKindList:
		if v.Items == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.Items)
	case FieldKindObject:
		return json.Marshal(v.Object)
	default:
		return json.Marshal(v.Text)
	}
}

// AnalysisResult is the structured output of the remote analysis service
// for one artifact. The stored result retains every returned field;
// presence filtering is applied only when rendering or building payloads.
type AnalysisResult struct {
	fields map[string]FieldValue
	order  []string
}

// NewAnalysisResult builds a result from a field map, ordering fields
// deterministically (known fields first, the rest alphabetically)
func NewAnalysisResult(fields map[string]FieldValue) *AnalysisResult {
	r := &AnalysisResult{fields: make(map[string]FieldValue, len(fields))}
	for _, key := range orderedFieldNames(fields) {
		r.fields[key] = fields[key]
		r.order = append(r.order, key)
	}
	return r
}

// UnmarshalJSON decodes the service response preserving the order in
// which fields appeared on the wire
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("analysis result must be a JSON object")
	}

	r.fields = make(map[string]FieldValue)
	r.order = nil

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in analysis result", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value FieldValue
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}

		if _, seen := r.fields[key]; !seen {
			r.order = append(r.order, key)
		}
		r.fields[key] = value
	}

	return nil
}

// MarshalJSON encodes fields in their stored order
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(r.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field returns the stored value for name and whether it exists at all
func (r *AnalysisResult) Field(name string) (FieldValue, bool) {
	if r == nil {
		return FieldValue{}, false
	}
	v, ok := r.fields[name]
	return v, ok
}

// Has reports whether the field exists and is non-empty
func (r *AnalysisResult) Has(name string) bool {
	v, ok := r.Field(name)
	return ok && !v.IsEmpty()
}

// Text returns the flattened text of a field, or "" when absent/empty
func (r *AnalysisResult) Text(name string) string {
	v, ok := r.Field(name)
	if !ok || v.IsEmpty() {
		return ""
	}
	return v.Flatten(", ")
}

// Summary returns the summary field text
func (r *AnalysisResult) Summary() string { return r.Text(FieldSummary) }

// Diagnosis returns the diagnosis field text
func (r *AnalysisResult) Diagnosis() string { return r.Text(FieldDiagnosis) }

// KeyFindings returns the key findings, nil when absent or empty
func (r *AnalysisResult) KeyFindings() []string {
	v, ok := r.Field(FieldKeyFindings)
	if !ok || v.IsEmpty() {
		return nil
	}
	if v.Kind == FieldKindList {
		return v.Items
	}
	return []string{v.Flatten(", ")}
}

// UrgentConcerns returns the urgent concerns field text
func (r *AnalysisResult) UrgentConcerns() string { return r.Text(FieldUrgentConcerns) }

// RenderedField is one presentable analysis field
type RenderedField struct {
	Name  string     `json:"name"`
	Value FieldValue `json:"value"`
}

// Rendered returns the fields in display order with empty and absent
// values filtered out. The stored result itself is not modified.
func (r *AnalysisResult) Rendered() []RenderedField {
	if r == nil {
		return nil
	}
	out := make([]RenderedField, 0, len(r.order))
	for _, key := range r.order {
		value := r.fields[key]
		if value.IsEmpty() {
			continue
		}
		out = append(out, RenderedField{Name: key, Value: value})
	}
	return out
}

var knownFieldOrder = []string{FieldSummary, FieldDiagnosis, FieldKeyFindings, FieldUrgentConcerns}

func orderedFieldNames(fields map[string]FieldValue) []string {
	names := make([]string, 0, len(fields))
	for _, known := range knownFieldOrder {
		if _, ok := fields[known]; ok {
			names = append(names, known)
		}
	}
	extras := make([]string, 0, len(fields))
	for key := range fields {
		if !isKnownField(key) {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

func isKnownField(name string) bool {
	for _, known := range knownFieldOrder {
		if name == known {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]FieldValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
