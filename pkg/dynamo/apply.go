package dynamo

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/theory-cloud/tablekit/pkg/expr"
)

// Overrides are caller-supplied alias entries, typically the names and values
// referenced by a raw expression string. They win over compiled entries.
type Overrides struct {
	Names  map[string]string
	Values map[string]any
}

// assemble merges the alias maps of every part, applies overrides and
// converts values to attribute values. Empty maps come back nil because the
// SDK rejects empty ExpressionAttribute maps.
func assemble(overrides Overrides, parts ...expr.Compiled) (map[string]string, map[string]types.AttributeValue, error) {
	nameMaps := make([]map[string]string, 0, len(parts))
	valueMaps := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		nameMaps = append(nameMaps, p.Names)
		valueMaps = append(valueMaps, p.Values)
	}
	names, err := expr.MergeNames(nameMaps...)
	if err != nil {
		return nil, nil, err
	}
	values, err := expr.MergeValues(valueMaps...)
	if err != nil {
		return nil, nil, err
	}

	merged := expr.Compiled{Names: names, Values: values}.WithOverrides(overrides.Names, overrides.Values)
	avs, err := merged.AttributeValues()
	if err != nil {
		return nil, nil, err
	}
	return merged.Names, avs, nil
}

func optional(c expr.Compiled) *string {
	if c.IsEmpty() {
		return nil
	}
	return aws.String(c.Expression)
}

// ApplyQuery sets the key condition and optional filter on in.
func ApplyQuery(in *dynamodb.QueryInput, keyCondition, filter expr.Compiled, overrides Overrides) error {
	names, values, err := assemble(overrides, keyCondition, filter)
	if err != nil {
		return err
	}
	in.KeyConditionExpression = optional(keyCondition)
	in.FilterExpression = optional(filter)
	in.ExpressionAttributeNames = names
	in.ExpressionAttributeValues = values
	return nil
}

// ApplyScan sets the optional filter on in.
func ApplyScan(in *dynamodb.ScanInput, filter expr.Compiled, overrides Overrides) error {
	names, values, err := assemble(overrides, filter)
	if err != nil {
		return err
	}
	in.FilterExpression = optional(filter)
	in.ExpressionAttributeNames = names
	in.ExpressionAttributeValues = values
	return nil
}

// ApplyPut sets the optional condition on in.
func ApplyPut(in *dynamodb.PutItemInput, condition expr.Compiled, overrides Overrides) error {
	names, values, err := assemble(overrides, condition)
	if err != nil {
		return err
	}
	in.ConditionExpression = optional(condition)
	in.ExpressionAttributeNames = names
	in.ExpressionAttributeValues = values
	return nil
}

// ApplyDelete sets the optional condition on in.
func ApplyDelete(in *dynamodb.DeleteItemInput, condition expr.Compiled, overrides Overrides) error {
	names, values, err := assemble(overrides, condition)
	if err != nil {
		return err
	}
	in.ConditionExpression = optional(condition)
	in.ExpressionAttributeNames = names
	in.ExpressionAttributeValues = values
	return nil
}

// ApplyUpdate sets the update expression and optional condition on in. Update
// aliases (#s0_x) and condition aliases (#f0) live in disjoint namespaces.
func ApplyUpdate(in *dynamodb.UpdateItemInput, update, condition expr.Compiled, overrides Overrides) error {
	names, values, err := assemble(overrides, update, condition)
	if err != nil {
		return err
	}
	in.UpdateExpression = optional(update)
	in.ConditionExpression = optional(condition)
	in.ExpressionAttributeNames = names
	in.ExpressionAttributeValues = values
	return nil
}

// Projection returns a projection expression over attrs with every attribute
// aliased as #p<i>, plus the name map to merge into the request.
func Projection(attrs ...string) expr.Compiled {
	if len(attrs) == 0 {
		return expr.Compiled{}
	}
	names := make(map[string]string, len(attrs))
	refs := make([]string, len(attrs))
	for i, attr := range attrs {
		alias := expr.AliasAttributeName("p" + strconv.Itoa(i))
		names[alias] = attr
		refs[i] = alias
	}
	return expr.Compiled{Expression: strings.Join(refs, ", "), Names: names}
}
