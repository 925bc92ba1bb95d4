package update_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/update"
)

func TestSetAndRemove(t *testing.T) {
	compiled, err := update.New().Set("name", "Bob").Remove("oldAttr").Compile()
	require.NoError(t, err)

	assert.Equal(t, "SET #s0_name = :s0_name REMOVE #r0_oldAttr", compiled.Expression)
	assert.Equal(t, map[string]string{"#s0_name": "name", "#r0_oldAttr": "oldAttr"}, compiled.Names)
	assert.Equal(t, map[string]any{":s0_name": "Bob"}, compiled.Values)
}

func TestClauseOrder(t *testing.T) {
	b := update.New().
		Delete("tags", []string{"old"}).
		Add("count", 5).
		Remove("legacy").
		SetIfNotExists("createdAt", "2024-01-01").
		Set("status", "active").
		Set("updatedAt", "2024-02-01")

	compiled, err := b.Compile()
	require.NoError(t, err)

	assert.Equal(t,
		"SET #s0_status = :s0_status, #s1_updatedAt = :s1_updatedAt, "+
			"#sne0_createdAt = if_not_exists(#sne0_createdAt, :sne0_createdAt) "+
			"REMOVE #r0_legacy ADD #a0_count :a0_count DELETE #d0_tags :d0_tags",
		compiled.Expression)
	assert.Len(t, compiled.Names, 6)
	assert.Len(t, compiled.Values, 5)
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"old"}}, compiled.Values[":d0_tags"])
}

func TestRepeatedPathsGetDistinctAliases(t *testing.T) {
	compiled, err := update.New().Set("a", 1).Set("a", 2).Compile()
	require.NoError(t, err)

	assert.Equal(t, "SET #s0_a = :s0_a, #s1_a = :s1_a", compiled.Expression)
	assert.Equal(t, 1, compiled.Values[":s0_a"])
	assert.Equal(t, 2, compiled.Values[":s1_a"])
}

func TestPathsAreSanitized(t *testing.T) {
	compiled, err := update.New().Set("profile.display-name", "x").Compile()
	require.NoError(t, err)

	assert.Equal(t, "SET #s0_profile_display_name = :s0_profile_display_name", compiled.Expression)
	assert.Equal(t, "profile.display-name", compiled.Names["#s0_profile_display_name"])
}

func TestIncrementDecrementAppend(t *testing.T) {
	compiled, err := update.New().
		Increment("views").
		Decrement("stock").
		AppendToList("history", []string{"login"}).
		Compile()
	require.NoError(t, err)

	assert.Equal(t,
		"SET #s0_history = list_append(#s0_history, :s0_history) ADD #a0_views :a0_views, #a1_stock :a1_stock",
		compiled.Expression)
	assert.Equal(t, 1, compiled.Values[":a0_views"])
	assert.Equal(t, -1, compiled.Values[":a1_stock"])
	assert.Equal(t, []string{"login"}, compiled.Values[":s0_history"])
}

func TestNumericSetConversion(t *testing.T) {
	compiled, err := update.New().Add("scores", []int{1, 2}).Compile()
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"1", "2"}}, compiled.Values[":a0_scores"])
}

func TestEmptyUpdate(t *testing.T) {
	_, err := update.New().Compile()
	assert.ErrorIs(t, err, tkerrors.ErrEmptyUpdate)

	_, err = update.Compile(update.Actions{})
	assert.ErrorIs(t, err, tkerrors.ErrEmptyUpdate)

	_, err = update.Resolve(nil)
	assert.ErrorIs(t, err, tkerrors.ErrEmptyUpdate)
}

func TestCompileErrors(t *testing.T) {
	_, err := update.New().Set("", 1).Compile()
	assert.ErrorIs(t, err, tkerrors.ErrInvalidPath)

	_, err = update.New().Remove("").Compile()
	assert.ErrorIs(t, err, tkerrors.ErrInvalidPath)

	_, err = update.New().Delete("tags", []string{}).Compile()
	assert.Error(t, err)
}

func TestBuilderIsImmutable(t *testing.T) {
	base := update.New().Set("a", 1)
	left := base.Set("b", 2)
	right := base.Set("c", 3)

	assert.Len(t, base.Build().Sets, 1)
	require.Len(t, left.Build().Sets, 2)
	require.Len(t, right.Build().Sets, 2)
	assert.Equal(t, "b", left.Build().Sets[1].Path)
	assert.Equal(t, "c", right.Build().Sets[1].Path)

	snapshot := left.Build()
	snapshot.Sets[0].Path = "mutated"
	assert.Equal(t, "a", left.Build().Sets[0].Path)
}

func TestCompileIsIdempotent(t *testing.T) {
	b := update.New().Set("a", 1).Remove("b").Add("c", 1)
	first, err := b.Compile()
	require.NoError(t, err)
	second, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve(t *testing.T) {
	compiled, err := update.Resolve(func(b update.Builder) update.Builder {
		return b.Set("status", "done")
	})
	require.NoError(t, err)
	assert.Equal(t, "SET #s0_status = :s0_status", compiled.Expression)
}
