package expr_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/expr"
)

func TestNeedsAlias(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"status", true},
		{"Status", true},
		{"NAME", true},
		{"ttl", true},
		{"userId", false},
		{"created_at", false},
		{"age2", false},
		{"first-name", true},
		{"profile.email", true},
		{"has space", true},
		{"emoji✓", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expr.NeedsAlias(tt.name))
		})
	}
}

func TestReservedWordTable(t *testing.T) {
	for _, w := range []string{"ABORT", "select", "Year", "ZONE", "data", "user"} {
		assert.True(t, expr.IsReservedWord(w), w)
	}
	assert.False(t, expr.IsReservedWord("userId"))
}

func TestAliasAttributeName(t *testing.T) {
	assert.Equal(t, "#status", expr.AliasAttributeName("status"))
	assert.Equal(t, "#first-name", expr.AliasAttributeName("first-name"))
}

func TestValuePlaceholder(t *testing.T) {
	assert.Equal(t, ":status", expr.ValuePlaceholder("status"))
	assert.Equal(t, ":status", expr.ValuePlaceholder(":status"))
}

func TestBuildExpressionAttributeNames(t *testing.T) {
	names := expr.BuildExpressionAttributeNames([]string{"status", "userId", "first-name", "count"})
	assert.Equal(t, map[string]string{
		"#status":     "status",
		"#first-name": "first-name",
		"#count":      "count",
	}, names)

	assert.Empty(t, expr.BuildExpressionAttributeNames([]string{"plain"}))
	assert.Empty(t, expr.BuildExpressionAttributeNames([]string{""}), "empty names get no placeholder")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "profile_email", expr.Sanitize("profile.email"))
	assert.Equal(t, "a_b_c", expr.Sanitize("a-b c"))
	assert.Equal(t, "plain_1", expr.Sanitize("plain_1"))
}

func TestCompiledWithOverrides(t *testing.T) {
	c := expr.Compiled{
		Expression: "#f0 = :f0",
		Names:      map[string]string{"#f0": "status"},
		Values:     map[string]any{":f0": "active"},
	}

	merged := c.WithOverrides(map[string]string{"#extra": "x"}, map[string]any{":f0": "override"})
	assert.Equal(t, "#f0 = :f0", merged.Expression)
	assert.Equal(t, map[string]string{"#f0": "status", "#extra": "x"}, merged.Names)
	assert.Equal(t, "override", merged.Values[":f0"])

	// original untouched
	assert.Equal(t, "active", c.Values[":f0"])
	assert.Len(t, c.Names, 1)

	empty := expr.Compiled{}.WithOverrides(nil, nil)
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Names)
	assert.Nil(t, empty.Values)
}

func TestCompiledAttributeValues(t *testing.T) {
	c := expr.Compiled{
		Values: map[string]any{
			":s":  "active",
			":n":  18,
			":b":  true,
			":av": &types.AttributeValueMemberSS{Value: []string{"a"}},
		},
	}

	avs, err := c.AttributeValues()
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "active"}, avs[":s"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "18"}, avs[":n"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, avs[":b"])
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a"}}, avs[":av"])

	none, err := expr.Compiled{}.AttributeValues()
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMergeNames(t *testing.T) {
	merged, err := expr.MergeNames(
		map[string]string{"#pk": "pk"},
		map[string]string{"#f0": "status", "#pk": "pk"},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"#pk": "pk", "#f0": "status"}, merged)

	_, err = expr.MergeNames(map[string]string{"#f0": "a"}, map[string]string{"#f0": "b"})
	assert.ErrorIs(t, err, tkerrors.ErrAliasConflict)

	none, err := expr.MergeNames(nil, map[string]string{})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMergeValues(t *testing.T) {
	merged, err := expr.MergeValues(map[string]any{":a": 1}, map[string]any{":a": 1, ":b": "x"})
	require.NoError(t, err)
	assert.Len(t, merged, 2)

	_, err = expr.MergeValues(map[string]any{":a": 1}, map[string]any{":a": 2})
	assert.ErrorIs(t, err, tkerrors.ErrAliasConflict)
}

func TestAsSet(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected any
	}{
		{"string slice", []string{"a", "b"}, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}},
		{"int slice", []int{1, 2}, &types.AttributeValueMemberNS{Value: []string{"1", "2"}}},
		{"float slice", []float64{1.5}, &types.AttributeValueMemberNS{Value: []string{"1.5"}}},
		{"binary slice", [][]byte{{1}}, &types.AttributeValueMemberBS{Value: [][]byte{{1}}}},
		{"scalar unchanged", 5, 5},
		{"bytes unchanged", []byte("x"), []byte("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expr.AsSet(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := expr.AsSet([]string{})
	assert.Error(t, err)
}
