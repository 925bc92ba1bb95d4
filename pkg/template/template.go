// Package template parses key patterns such as "USER#{{userId}}" and converts
// between field values and concrete key strings in both directions.
package template

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// SegmentKind distinguishes literal text from field placeholders.
type SegmentKind int

const (
	// Literal segments are copied verbatim.
	Literal SegmentKind = iota
	// Field segments are substituted from the value lookup.
	Field
)

func (k SegmentKind) String() string {
	if k == Field {
		return "field"
	}
	return "literal"
}

// Segment is one piece of a parsed template. Value holds the literal text or the field name.
type Segment struct {
	Value string
	Kind  SegmentKind
}

// Template is an immutable parsed key pattern.
type Template struct {
	source   string
	segments []Segment
	fields   []string
	simple   bool
}

// Lookup resolves a field value by name. ok=false or a nil value means the field is missing.
type Lookup func(name string) (value any, ok bool)

// Parse splits pattern into literal and field segments. It never fails; authoring
// mistakes such as adjacent fields surface when the template is extracted.
func Parse(pattern string) *Template {
	matches := placeholderPattern.FindAllStringSubmatchIndex(pattern, -1)
	if len(matches) == 0 {
		return &Template{
			source:   pattern,
			segments: []Segment{{Kind: Literal, Value: pattern}},
			simple:   true,
		}
	}

	t := &Template{source: pattern}
	seen := make(map[string]bool, len(matches))
	cursor := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		name := pattern[m[2]:m[3]]
		if start > cursor {
			t.segments = append(t.segments, Segment{Kind: Literal, Value: pattern[cursor:start]})
		}
		t.segments = append(t.segments, Segment{Kind: Field, Value: name})
		if !seen[name] {
			seen[name] = true
			t.fields = append(t.fields, name)
		}
		cursor = end
	}
	if cursor < len(pattern) {
		t.segments = append(t.segments, Segment{Kind: Literal, Value: pattern[cursor:]})
	}
	return t
}

// String returns the source pattern
func (t *Template) String() string {
	return t.source
}

// IsSimple reports whether the pattern contains no field placeholders.
func (t *Template) IsSimple() bool {
	return t.simple
}

// Segments returns a copy of the parsed segments in order.
func (t *Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Fields returns the distinct field names in first-occurrence order.
func (t *Template) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Ambiguous reports whether two field segments are adjacent with no literal between them.
func (t *Template) Ambiguous() bool {
	_, ok := t.ambiguousAt()
	return ok
}

func (t *Template) ambiguousAt() (int, bool) {
	for i := 1; i < len(t.segments); i++ {
		if t.segments[i-1].Kind == Field && t.segments[i].Kind == Field {
			return i, true
		}
	}
	return 0, false
}

// Build substitutes values into the template.
func (t *Template) Build(values map[string]any) (string, error) {
	return t.BuildWith(func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	})
}

// BuildWith substitutes values resolved by lookup. The first missing field in
// segment order fails the build with ErrMissingField.
func (t *Template) BuildWith(lookup Lookup) (string, error) {
	if t.simple {
		return t.source, nil
	}

	var b strings.Builder
	offset := 0
	for _, seg := range t.segments {
		if seg.Kind == Literal {
			b.WriteString(seg.Value)
			offset += len(seg.Value)
			continue
		}
		var (
			v  any
			ok bool
		)
		if lookup != nil {
			v, ok = lookup(seg.Value)
		}
		s, present := stringify(v)
		if !ok || !present {
			return "", &tkerrors.TemplateError{
				Kind:     tkerrors.ErrMissingField,
				Template: t.source,
				Field:    seg.Value,
				Position: offset,
			}
		}
		b.WriteString(s)
		offset += len(s)
	}
	return b.String(), nil
}

// Prefix builds the template up to the first field that has no value. It is
// the longest key prefix known from a partial set of values.
func (t *Template) Prefix(values map[string]any) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.Kind == Literal {
			b.WriteString(seg.Value)
			continue
		}
		v, ok := values[seg.Value]
		if !ok {
			break
		}
		s, present := stringify(v)
		if !present {
			break
		}
		b.WriteString(s)
	}
	return b.String()
}

// Extract reverses Build: it walks key against the segments and returns the
// captured value of every field. Simple templates extract to an empty map.
func (t *Template) Extract(key string) (map[string]string, error) {
	out := make(map[string]string, len(t.fields))
	if t.simple {
		return out, nil
	}
	if idx, ok := t.ambiguousAt(); ok {
		return nil, &tkerrors.TemplateError{
			Kind:     tkerrors.ErrAmbiguousTemplate,
			Template: t.source,
			Field:    t.segments[idx].Value,
		}
	}

	cursor := 0
	for i, seg := range t.segments {
		if seg.Kind == Literal {
			if !strings.HasPrefix(key[cursor:], seg.Value) {
				return nil, t.extractError(tkerrors.ErrMismatchedPrefix, "", cursor)
			}
			cursor += len(seg.Value)
			continue
		}

		var value string
		if i+1 < len(t.segments) {
			delim := t.segments[i+1].Value
			idx := strings.Index(key[cursor:], delim)
			if idx < 0 {
				return nil, t.extractError(tkerrors.ErrDelimiterNotFound, seg.Value, cursor)
			}
			value = key[cursor : cursor+idx]
		} else {
			value = key[cursor:]
		}

		if prev, dup := out[seg.Value]; dup && prev != value {
			return nil, t.extractError(tkerrors.ErrDuplicateFieldMismatch, seg.Value, cursor)
		}
		out[seg.Value] = value
		cursor += len(value)
	}

	if cursor != len(key) {
		return nil, t.extractError(tkerrors.ErrMismatchedPrefix, "", cursor)
	}
	return out, nil
}

func (t *Template) extractError(kind error, field string, pos int) error {
	return &tkerrors.TemplateError{
		Kind:     kind,
		Template: t.source,
		Field:    field,
		Position: pos,
	}
}

// stringify renders a field value as key text. present=false marks nil values,
// including typed nil pointers.
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "", false
		}
		return x.String(), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false
		}
		return stringify(rv.Elem().Interface())
	}
	return fmt.Sprint(v), true
}
