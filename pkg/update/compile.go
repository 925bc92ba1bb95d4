package update

import (
	"fmt"
	"strconv"
	"strings"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/expr"
)

// Alias prefixes per action kind
const (
	prefixSet            = "s"
	prefixSetIfNotExists = "sne"
	prefixRemove         = "r"
	prefixAdd            = "a"
	prefixDelete         = "d"
)

// Compile renders actions as an update expression. Each action list is numbered
// on its own, and every alias carries the kind prefix, the index and the path
// (#s0_name, :s0_name) so repeated paths never collide. Clauses are emitted in
// SET, REMOVE, ADD, DELETE order; empty clauses are omitted.
func Compile(actions Actions) (expr.Compiled, error) {
	if actions.IsEmpty() {
		return expr.Compiled{}, tkerrors.ErrEmptyUpdate
	}

	names := make(map[string]string)
	values := make(map[string]any)
	var clauses []string

	var sets []string
	for i, a := range actions.Sets {
		name, value, err := register(names, prefixSet, i, a.Path, "Set")
		if err != nil {
			return expr.Compiled{}, err
		}
		if la, ok := a.Value.(listAppend); ok {
			values[value] = la.values
			sets = append(sets, fmt.Sprintf("%s = list_append(%s, %s)", name, name, value))
			continue
		}
		values[value] = a.Value
		sets = append(sets, name+" = "+value)
	}
	for i, a := range actions.SetIfNotExists {
		name, value, err := register(names, prefixSetIfNotExists, i, a.Path, "SetIfNotExists")
		if err != nil {
			return expr.Compiled{}, err
		}
		values[value] = a.Value
		sets = append(sets, fmt.Sprintf("%s = if_not_exists(%s, %s)", name, name, value))
	}
	if len(sets) > 0 {
		clauses = append(clauses, "SET "+strings.Join(sets, ", "))
	}

	var removes []string
	for i, path := range actions.Removes {
		name, _, err := register(names, prefixRemove, i, path, "Remove")
		if err != nil {
			return expr.Compiled{}, err
		}
		removes = append(removes, name)
	}
	if len(removes) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(removes, ", "))
	}

	adds, err := compileOperandClause(names, values, prefixAdd, "Add", actions.Adds)
	if err != nil {
		return expr.Compiled{}, err
	}
	if len(adds) > 0 {
		clauses = append(clauses, "ADD "+strings.Join(adds, ", "))
	}

	deletes, err := compileOperandClause(names, values, prefixDelete, "Delete", actions.Deletes)
	if err != nil {
		return expr.Compiled{}, err
	}
	if len(deletes) > 0 {
		clauses = append(clauses, "DELETE "+strings.Join(deletes, ", "))
	}

	return expr.Compiled{
		Expression: strings.Join(clauses, " "),
		Names:      names,
		Values:     values,
	}, nil
}

// compileOperandClause renders ADD/DELETE entries ("#a0_x :a0_x"). Slice
// operands become DynamoDB sets.
func compileOperandClause(names map[string]string, values map[string]any, prefix, op string, list []Action) ([]string, error) {
	var parts []string
	for i, a := range list {
		name, value, err := register(names, prefix, i, a.Path, op)
		if err != nil {
			return nil, err
		}
		operand, err := expr.AsSet(a.Value)
		if err != nil {
			return nil, fmt.Errorf("%s(%s): %w", op, a.Path, err)
		}
		values[value] = operand
		parts = append(parts, name+" "+value)
	}
	return parts, nil
}

func register(names map[string]string, prefix string, i int, path, op string) (string, string, error) {
	if path == "" {
		return "", "", &tkerrors.PathError{Kind: tkerrors.ErrInvalidPath, Op: op}
	}
	token := prefix + strconv.Itoa(i) + "_" + expr.Sanitize(path)
	name := expr.AliasAttributeName(token)
	names[name] = path
	return name, expr.ValuePlaceholder(token), nil
}

// Compile renders the builder's current actions
func (b Builder) Compile() (expr.Compiled, error) {
	return Compile(b.Build())
}

// Resolve runs fn against a fresh builder and compiles the result. A nil fn
// yields ErrEmptyUpdate.
func Resolve(fn func(Builder) Builder) (expr.Compiled, error) {
	if fn == nil {
		return expr.Compiled{}, tkerrors.ErrEmptyUpdate
	}
	return fn(New()).Compile()
}
