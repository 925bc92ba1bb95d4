// Package dynamo attaches compiled expressions and template-built keys to
// DynamoDB SDK inputs, and implements the batch transports over the SDK client.
package dynamo

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/expr"
	"github.com/theory-cloud/tablekit/pkg/template"
	"github.com/theory-cloud/tablekit/pkg/validation"
)

// Key is a DynamoDB primary key
type Key = map[string]types.AttributeValue

// Item is a DynamoDB item
type Item = map[string]types.AttributeValue

// KeySchema derives a table's primary key attributes from key templates, e.g.
// pk = "USER#{{userId}}", sk = "ORDER#{{orderId}}".
type KeySchema struct {
	Partition     *template.Template
	Sort          *template.Template
	PartitionAttr string
	SortAttr      string
}

// NewKeySchema parses the partition and sort templates. Pass empty sortAttr
// and sortPattern for a partition-only table.
func NewKeySchema(partitionAttr, partitionPattern, sortAttr, sortPattern string) (*KeySchema, error) {
	if partitionAttr == "" {
		return nil, fmt.Errorf("%w: partition attribute name is required", tkerrors.ErrInvalidKey)
	}
	for _, attr := range []string{partitionAttr, sortAttr} {
		if attr == "" {
			continue
		}
		if err := validation.ValidateKeyAttributeName(attr); err != nil {
			return nil, fmt.Errorf("%w: %w", tkerrors.ErrInvalidKey, err)
		}
	}
	ks := &KeySchema{
		PartitionAttr: partitionAttr,
		Partition:     template.Parse(partitionPattern),
	}
	if sortAttr != "" {
		ks.SortAttr = sortAttr
		ks.Sort = template.Parse(sortPattern)
	}
	for _, t := range []*template.Template{ks.Partition, ks.Sort} {
		if t != nil && t.Ambiguous() {
			return nil, &tkerrors.TemplateError{Kind: tkerrors.ErrAmbiguousTemplate, Template: t.String()}
		}
	}
	return ks, nil
}

// HasSort reports whether the table has a sort key
func (ks *KeySchema) HasSort() bool {
	return ks.SortAttr != "" && ks.Sort != nil
}

// Fields returns the distinct fields referenced by both key templates
func (ks *KeySchema) Fields() []string {
	fields := ks.Partition.Fields()
	if !ks.HasSort() {
		return fields
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	for _, f := range ks.Sort.Fields() {
		if !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	return fields
}

// Key builds the full primary key from field values.
func (ks *KeySchema) Key(values map[string]any) (Key, error) {
	pk, err := ks.Partition.Build(values)
	if err != nil {
		return nil, fmt.Errorf("%w: partition key: %w", tkerrors.ErrInvalidKey, err)
	}
	key := Key{}
	if key[ks.PartitionAttr], err = attributevalue.Marshal(pk); err != nil {
		return nil, err
	}
	if !ks.HasSort() {
		return key, nil
	}

	sk, err := ks.Sort.Build(values)
	if err != nil {
		return nil, fmt.Errorf("%w: sort key: %w", tkerrors.ErrInvalidKey, err)
	}
	if key[ks.SortAttr], err = attributevalue.Marshal(sk); err != nil {
		return nil, err
	}
	return key, nil
}

// Keys builds one key per value set, failing on the first unresolvable one.
func (ks *KeySchema) Keys(values []map[string]any) ([]Key, error) {
	keys := make([]Key, 0, len(values))
	for i, v := range values {
		key, err := ks.Key(v)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ExtractFields reverses the key attributes of item back into field values.
// A field that appears in both templates must extract to the same value.
func (ks *KeySchema) ExtractFields(item Item) (map[string]string, error) {
	fields, err := extractAttr(item, ks.PartitionAttr, ks.Partition)
	if err != nil {
		return nil, err
	}
	if !ks.HasSort() {
		return fields, nil
	}

	sortFields, err := extractAttr(item, ks.SortAttr, ks.Sort)
	if err != nil {
		return nil, err
	}
	for name, value := range sortFields {
		if prev, ok := fields[name]; ok && prev != value {
			return nil, &tkerrors.TemplateError{
				Kind:     tkerrors.ErrDuplicateFieldMismatch,
				Template: ks.Sort.String(),
				Field:    name,
			}
		}
		fields[name] = value
	}
	return fields, nil
}

func extractAttr(item Item, attr string, t *template.Template) (map[string]string, error) {
	av, ok := item[attr]
	if !ok {
		return nil, fmt.Errorf("%w: item has no %s attribute", tkerrors.ErrInvalidKey, attr)
	}
	var raw string
	if err := attributevalue.Unmarshal(av, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s is not a string: %w", tkerrors.ErrInvalidKey, attr, err)
	}
	return t.Extract(raw)
}

// SortOp selects the sort key comparison in a key condition.
type SortOp int

const (
	// SortAuto uses equality when every sort field is known, begins_with on
	// the known prefix otherwise, and no sort clause when nothing is known.
	SortAuto SortOp = iota
	SortEq
	SortLt
	SortLte
	SortGt
	SortGte
	SortBeginsWith
	SortBetween
)

var sortComparators = map[SortOp]string{
	SortEq:  "=",
	SortLt:  "<",
	SortLte: "<=",
	SortGt:  ">",
	SortGte: ">=",
}

// SortCondition refines the sort key part of a key condition. Values and
// Upper are layered over the partition values; Upper is only used by
// SortBetween as the upper bound.
type SortCondition struct {
	Values map[string]any
	Upper  map[string]any
	Op     SortOp
}

// KeyCondition compiles the key-condition expression for a query. It uses the
// fixed aliases #pk/:pk and #sk/:sk (:sklo/:skhi for between), which never
// collide with filter aliases.
func KeyCondition(ks *KeySchema, values map[string]any, sort ...SortCondition) (expr.Compiled, error) {
	pk, err := ks.Partition.Build(values)
	if err != nil {
		return expr.Compiled{}, fmt.Errorf("%w: partition key: %w", tkerrors.ErrInvalidKey, err)
	}
	out := expr.Compiled{
		Expression: "#pk = :pk",
		Names:      map[string]string{"#pk": ks.PartitionAttr},
		Values:     map[string]any{":pk": pk},
	}
	if !ks.HasSort() {
		return out, nil
	}

	cond := SortCondition{Op: SortAuto}
	if len(sort) > 0 {
		cond = sort[0]
	}
	merged := layer(values, cond.Values)

	var clause string
	switch cond.Op {
	case SortAuto:
		if sk, err := ks.Sort.Build(merged); err == nil {
			out.Values[":sk"] = sk
			clause = "#sk = :sk"
		} else if prefix := ks.Sort.Prefix(merged); prefix != "" {
			out.Values[":sk"] = prefix
			clause = "begins_with(#sk, :sk)"
		}
	case SortBeginsWith:
		prefix := ks.Sort.Prefix(merged)
		if prefix == "" {
			return expr.Compiled{}, fmt.Errorf("%w: begins_with needs a non-empty sort key prefix", tkerrors.ErrInvalidKey)
		}
		out.Values[":sk"] = prefix
		clause = "begins_with(#sk, :sk)"
	case SortBetween:
		lo, err := ks.Sort.Build(merged)
		if err != nil {
			return expr.Compiled{}, fmt.Errorf("%w: sort lower bound: %w", tkerrors.ErrInvalidKey, err)
		}
		hi, err := ks.Sort.Build(layer(values, cond.Upper))
		if err != nil {
			return expr.Compiled{}, fmt.Errorf("%w: sort upper bound: %w", tkerrors.ErrInvalidKey, err)
		}
		out.Values[":sklo"] = lo
		out.Values[":skhi"] = hi
		clause = "#sk BETWEEN :sklo AND :skhi"
	default:
		op, ok := sortComparators[cond.Op]
		if !ok {
			return expr.Compiled{}, fmt.Errorf("%w: unknown sort operator %d", tkerrors.ErrInvalidKey, cond.Op)
		}
		sk, err := ks.Sort.Build(merged)
		if err != nil {
			return expr.Compiled{}, fmt.Errorf("%w: sort key: %w", tkerrors.ErrInvalidKey, err)
		}
		out.Values[":sk"] = sk
		clause = "#sk " + op + " :sk"
	}

	if clause != "" {
		out.Names["#sk"] = ks.SortAttr
		out.Expression += " AND " + clause
	}
	return out, nil
}

func layer(base, top map[string]any) map[string]any {
	if len(top) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}
