package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValueUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want FieldValue
	}{
		{"string", `"hello"`, TextValue("hello")},
		{"list", `["a","b"]`, ListValue("a", "b")},
		{"null becomes empty text", `null`, TextValue("")},
		{"number kept as literal", `42`, TextValue("42")},
		{"bool kept as literal", `true`, TextValue("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FieldValue
			require.NoError(t, json.Unmarshal([]byte(tt.data), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldValueUnmarshalObject(t *testing.T) {
	var got FieldValue
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"high","note":"check"}`), &got))
	assert.Equal(t, FieldKindObject, got.Kind)
	assert.Equal(t, "check", got.Object["note"].Text)
	assert.Equal(t, "note: check, severity: high", got.Flatten(", "))
}

func TestFieldValueIsEmpty(t *testing.T) {
	assert.True(t, TextValue("").IsEmpty())
	assert.True(t, TextValue("   ").IsEmpty())
	assert.True(t, ListValue().IsEmpty())
	assert.True(t, FieldValue{Kind: FieldKindObject}.IsEmpty())
	assert.False(t, TextValue("x").IsEmpty())
	assert.False(t, ListValue("x").IsEmpty())
}

func TestAnalysisResultPreservesWireOrder(t *testing.T) {
	data := `{"zebra":"z","summary":"ok","alpha":"a"}`
	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(data), &result))

	rendered := result.Rendered()
	require.Len(t, rendered, 3)
	assert.Equal(t, "zebra", rendered[0].Name)
	assert.Equal(t, "summary", rendered[1].Name)
	assert.Equal(t, "alpha", rendered[2].Name)

	out, err := json.Marshal(&result)
	require.NoError(t, err)
	assert.Equal(t, data, string(out))
}

func TestAnalysisResultRenderedFiltersEmpty(t *testing.T) {
	data := `{"summary":"ok","diagnosis":"","key_findings":[],"urgent_concerns":"","extra":{"a":"b"}}`
	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(data), &result))

	// Stored result keeps every field.
	for _, name := range []string{"summary", "diagnosis", "key_findings", "urgent_concerns", "extra"} {
		_, ok := result.Field(name)
		assert.True(t, ok, name)
	}

	rendered := result.Rendered()
	require.Len(t, rendered, 2)
	assert.Equal(t, "summary", rendered[0].Name)
	assert.Equal(t, "extra", rendered[1].Name)
}

func TestAnalysisResultAccessors(t *testing.T) {
	data := `{"summary":"all good","diagnosis":"flu","key_findings":["fever","cough"],"urgent_concerns":""}`
	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(data), &result))

	assert.Equal(t, "all good", result.Summary())
	assert.Equal(t, "flu", result.Diagnosis())
	assert.Equal(t, []string{"fever", "cough"}, result.KeyFindings())
	assert.Equal(t, "", result.UrgentConcerns())
	assert.True(t, result.Has(FieldDiagnosis))
	assert.False(t, result.Has(FieldUrgentConcerns))
}

func TestAnalysisResultNestedLists(t *testing.T) {
	data := `{"key_findings":[["a","b"],"c"]}`
	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(data), &result))
	assert.Equal(t, []string{"a, b", "c"}, result.KeyFindings())
}

func TestNewAnalysisResultOrdersKnownFieldsFirst(t *testing.T) {
	result := NewAnalysisResult(map[string]FieldValue{
		"beta":         TextValue("b"),
		FieldDiagnosis: TextValue("d"),
		"alpha":        TextValue("a"),
		FieldSummary:   TextValue("s"),
	})

	rendered := result.Rendered()
	names := make([]string, 0, len(rendered))
	for _, field := range rendered {
		names = append(names, field.Name)
	}
	assert.Equal(t, []string{FieldSummary, FieldDiagnosis, "alpha", "beta"}, names)
}

func TestNilResultIsSafe(t *testing.T) {
	var result *AnalysisResult
	assert.Nil(t, result.Rendered())
	assert.False(t, result.Has(FieldSummary))
	assert.Equal(t, "", result.Text(FieldSummary))
}
