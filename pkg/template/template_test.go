package template_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/template"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		segments []template.Segment
		fields   []string
		simple   bool
	}{
		{
			name:     "literal only",
			pattern:  "PROFILE",
			segments: []template.Segment{{Kind: template.Literal, Value: "PROFILE"}},
			simple:   true,
		},
		{
			name:    "prefix and field",
			pattern: "USER#{{userId}}",
			segments: []template.Segment{
				{Kind: template.Literal, Value: "USER#"},
				{Kind: template.Field, Value: "userId"},
			},
			fields: []string{"userId"},
		},
		{
			name:    "fields with delimiters and suffix",
			pattern: "{{org}}#{{team}}#META",
			segments: []template.Segment{
				{Kind: template.Field, Value: "org"},
				{Kind: template.Literal, Value: "#"},
				{Kind: template.Field, Value: "team"},
				{Kind: template.Literal, Value: "#META"},
			},
			fields: []string{"org", "team"},
		},
		{
			name:    "duplicate fields deduplicated in field list",
			pattern: "{{a}}#{{b}}#{{a}}",
			segments: []template.Segment{
				{Kind: template.Field, Value: "a"},
				{Kind: template.Literal, Value: "#"},
				{Kind: template.Field, Value: "b"},
				{Kind: template.Literal, Value: "#"},
				{Kind: template.Field, Value: "a"},
			},
			fields: []string{"a", "b"},
		},
		{
			name:    "names captured verbatim",
			pattern: "X{{first name}}",
			segments: []template.Segment{
				{Kind: template.Literal, Value: "X"},
				{Kind: template.Field, Value: "first name"},
			},
			fields: []string{"first name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := template.Parse(tt.pattern)
			assert.Equal(t, tt.segments, tmpl.Segments())
			assert.Equal(t, tt.fields, tmpl.Fields())
			assert.Equal(t, tt.simple, tmpl.IsSimple())
			assert.Equal(t, tt.pattern, tmpl.String())
		})
	}
}

func TestParseSimpleInvariant(t *testing.T) {
	tmpl := template.Parse("STATIC#KEY")
	require.True(t, tmpl.IsSimple())
	assert.Len(t, tmpl.Segments(), 1)
	assert.Empty(t, tmpl.Fields())
}

func TestSegmentsAreCopies(t *testing.T) {
	tmpl := template.Parse("USER#{{id}}")
	segs := tmpl.Segments()
	segs[0].Value = "HACKED#"

	key, err := tmpl.Build(map[string]any{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "USER#1", key)
}

func TestBuild(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	name := "bob"
	var nilName *string

	tests := []struct {
		name     string
		pattern  string
		values   map[string]any
		expected string
	}{
		{"string", "USER#{{userId}}", map[string]any{"userId": "abc123"}, "USER#abc123"},
		{"int", "ORDER#{{n}}", map[string]any{"n": 42}, "ORDER#42"},
		{"negative int64", "N#{{n}}", map[string]any{"n": int64(-7)}, "N#-7"},
		{"float", "P#{{p}}", map[string]any{"p": 1.5}, "P#1.5"},
		{"whole float", "P#{{p}}", map[string]any{"p": float64(3)}, "P#3"},
		{"bool", "F#{{f}}", map[string]any{"f": true}, "F#true"},
		{"time", "T#{{t}}", map[string]any{"t": ts}, "T#2024-05-01T12:00:00Z"},
		{"pointer", "U#{{u}}", map[string]any{"u": &name}, "U#bob"},
		{"simple ignores values", "PROFILE", nil, "PROFILE"},
		{"repeated field", "{{a}}#{{a}}", map[string]any{"a": "x"}, "x#x"},
		{"empty string is a value", "U#{{u}}", map[string]any{"u": ""}, "U#"},
		{"pointer missing elsewhere", "U#{{u}}#{{v}}", map[string]any{"u": "1", "v": 2, "w": nilName}, "U#1#2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := template.Parse(tt.pattern).Build(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestBuildMissingField(t *testing.T) {
	var nilName *string

	tests := []struct {
		name    string
		pattern string
		values  map[string]any
		field   string
	}{
		{"absent", "USER#{{userId}}", map[string]any{}, "userId"},
		{"nil", "USER#{{userId}}", map[string]any{"userId": nil}, "userId"},
		{"typed nil pointer", "USER#{{userId}}", map[string]any{"userId": nilName}, "userId"},
		{"first missing in segment order", "{{a}}#{{b}}#{{c}}", map[string]any{"a": 1}, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := template.Parse(tt.pattern).Build(tt.values)
			require.ErrorIs(t, err, tkerrors.ErrMissingField)

			var te *tkerrors.TemplateError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.field, te.Field)
			assert.Equal(t, tt.pattern, te.Template)
		})
	}
}

func TestBuildWithNilLookup(t *testing.T) {
	_, err := template.Parse("A#{{x}}").BuildWith(nil)
	assert.ErrorIs(t, err, tkerrors.ErrMissingField)
}

func TestPrefix(t *testing.T) {
	tmpl := template.Parse("ORG#{{org}}#USER#{{user}}")
	assert.Equal(t, "ORG#", tmpl.Prefix(nil))
	assert.Equal(t, "ORG#acme#USER#", tmpl.Prefix(map[string]any{"org": "acme"}))
	assert.Equal(t, "ORG#acme#USER#7", tmpl.Prefix(map[string]any{"org": "acme", "user": 7}))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		key      string
		expected map[string]string
	}{
		{"single field", "USER#{{userId}}", "USER#abc123", map[string]string{"userId": "abc123"}},
		{"leading field", "{{org}}#{{team}}#META", "acme#core#META", map[string]string{"org": "acme", "team": "core"}},
		{"field captures remainder", "A#{{x}}", "A#b#c", map[string]string{"x": "b#c"}},
		{"empty capture", "A#{{x}}#B", "A##B", map[string]string{"x": ""}},
		{"simple template", "PROFILE", "anything", map[string]string{}},
		{"duplicate fields agreeing", "{{a}}#{{a}}", "x#x", map[string]string{"a": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := template.Parse(tt.pattern).Extract(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		key     string
		kind    error
	}{
		{"prefix mismatch", "USER#{{id}}", "ORDER#1", tkerrors.ErrMismatchedPrefix},
		{"delimiter missing", "{{a}}#{{b}}", "nodelimiter", tkerrors.ErrDelimiterNotFound},
		{"trailing input", "A#{{x}}#B", "A#1#BC", tkerrors.ErrMismatchedPrefix},
		{"adjacent fields", "{{a}}{{b}}", "ab", tkerrors.ErrAmbiguousTemplate},
		{"adjacent duplicate fields", "{{a}}{{a}}", "aa", tkerrors.ErrAmbiguousTemplate},
		{"adjacent after literal", "P#{{a}}{{b}}#S", "P#xy#S", tkerrors.ErrAmbiguousTemplate},
		{"ambiguity wins over mismatch", "P#{{a}}{{b}}", "Q#xy", tkerrors.ErrAmbiguousTemplate},
		{"duplicate fields disagree", "{{a}}#{{a}}", "x#y", tkerrors.ErrDuplicateFieldMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := template.Parse(tt.pattern).Extract(tt.key)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAmbiguous(t *testing.T) {
	assert.True(t, template.Parse("{{a}}{{b}}").Ambiguous())
	assert.False(t, template.Parse("{{a}}-{{b}}").Ambiguous())
	assert.False(t, template.Parse("STATIC").Ambiguous())
}

func TestRoundTrip(t *testing.T) {
	patterns := []string{
		"USER#{{userId}}",
		"{{tenant}}|{{region}}|{{id}}",
		"ORG#{{org}}#PROJ#{{project}}#V",
	}
	values := map[string]any{
		"userId": "abc123", "tenant": "t-1", "region": "eu", "id": "42",
		"org": "acme", "project": "apollo",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			tmpl := template.Parse(p)
			key, err := tmpl.Build(values)
			require.NoError(t, err)

			got, err := tmpl.Extract(key)
			require.NoError(t, err)
			for _, f := range tmpl.Fields() {
				assert.Equal(t, values[f], got[f])
			}
		})
	}
}
