package expr

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
)

// Compiled is an expression string plus the alias maps it references.
// An empty Expression means "no expression" and is a valid state.
type Compiled struct {
	Names      map[string]string
	Values     map[string]any
	Expression string
}

// IsEmpty reports whether no expression was produced
func (c Compiled) IsEmpty() bool {
	return c.Expression == ""
}

// WithOverrides returns a copy of c whose alias maps include the caller's
// entries. Override entries replace compiled entries with the same alias.
func (c Compiled) WithOverrides(names map[string]string, values map[string]any) Compiled {
	out := Compiled{Expression: c.Expression}
	if len(c.Names)+len(names) > 0 {
		out.Names = make(map[string]string, len(c.Names)+len(names))
		for k, v := range c.Names {
			out.Names[k] = v
		}
		for k, v := range names {
			out.Names[k] = v
		}
	}
	if len(c.Values)+len(values) > 0 {
		out.Values = make(map[string]any, len(c.Values)+len(values))
		for k, v := range c.Values {
			out.Values[k] = v
		}
		for k, v := range values {
			out.Values[k] = v
		}
	}
	return out
}

// AttributeValues converts Values to DynamoDB attribute values. Values that
// are already types.AttributeValue pass through untouched.
func (c Compiled) AttributeValues() (map[string]types.AttributeValue, error) {
	if len(c.Values) == 0 {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(c.Values))
	for _, alias := range sortedKeys(c.Values) {
		av, err := ToAttributeValue(c.Values[alias])
		if err != nil {
			return nil, fmt.Errorf("failed to convert value %s: %w", alias, err)
		}
		out[alias] = av
	}
	return out, nil
}

// ToAttributeValue marshals a native value, passing attribute values through.
func ToAttributeValue(v any) (types.AttributeValue, error) {
	if av, ok := v.(types.AttributeValue); ok {
		return av, nil
	}
	return attributevalue.Marshal(v)
}

// MergeNames combines name maps. Defining the same alias twice is allowed only
// when both definitions agree; otherwise ErrAliasConflict is returned.
// The result is nil when every input is empty.
func MergeNames(maps ...map[string]string) (map[string]string, error) {
	var out map[string]string
	for _, m := range maps {
		for k, v := range m {
			if out == nil {
				out = make(map[string]string)
			}
			if prev, ok := out[k]; ok && prev != v {
				return nil, fmt.Errorf("%w: %s maps to both %q and %q", tkerrors.ErrAliasConflict, k, prev, v)
			}
			out[k] = v
		}
	}
	return out, nil
}

// MergeValues combines value maps with the same conflict rule as MergeNames.
func MergeValues(maps ...map[string]any) (map[string]any, error) {
	var out map[string]any
	for _, m := range maps {
		for k, v := range m {
			if out == nil {
				out = make(map[string]any)
			}
			if prev, ok := out[k]; ok && !reflect.DeepEqual(prev, v) {
				return nil, fmt.Errorf("%w: %s has two different values", tkerrors.ErrAliasConflict, k)
			}
			out[k] = v
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
