package condition

import (
	"fmt"
	"strconv"
	"strings"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/expr"
)

// maxInOperands is the DynamoDB limit for IN comparisons
const maxInOperands = 100

var comparators = map[Kind]string{
	KindEq:  "=",
	KindNe:  "<>",
	KindLt:  "<",
	KindLte: "<=",
	KindGt:  ">",
	KindGte: ">=",
}

// compiler holds the per-call alias counter and maps. One is created for each
// Compile call so shared trees compile identically every time.
type compiler struct {
	names  map[string]string
	values map[string]any
	next   int
}

// Compile turns a condition tree into an expression and its alias maps.
// Leaves are numbered depth-first in visit order: the n-th leaf uses #f<n>/:f<n>.
func Compile(node Node) (expr.Compiled, error) {
	c := &compiler{
		names:  make(map[string]string),
		values: make(map[string]any),
	}
	expression, err := c.compile(node)
	if err != nil {
		return expr.Compiled{}, err
	}
	return expr.Compiled{
		Expression: expression,
		Names:      c.names,
		Values:     c.values,
	}, nil
}

func (c *compiler) compile(node Node) (string, error) {
	switch node.kind {
	case KindAnd, KindOr:
		return c.compileJunction(node)
	case KindNot:
		if len(node.children) != 1 {
			return "", fmt.Errorf("%w: not requires exactly one operand", tkerrors.ErrInvalidCondition)
		}
		inner, err := c.compile(node.children[0])
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case kindInvalid:
		return "", fmt.Errorf("%w: uninitialized node", tkerrors.ErrInvalidCondition)
	}
	return c.compileLeaf(node)
}

func (c *compiler) compileJunction(node Node) (string, error) {
	if len(node.children) == 0 {
		return "", fmt.Errorf("%w: %s", tkerrors.ErrEmptyComposite, node.kind)
	}
	if len(node.children) == 1 {
		return c.compile(node.children[0])
	}

	joiner := " AND "
	if node.kind == KindOr {
		joiner = " OR "
	}
	parts := make([]string, len(node.children))
	for i, child := range node.children {
		part, err := c.compile(child)
		if err != nil {
			return "", err
		}
		parts[i] = part
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func (c *compiler) compileLeaf(node Node) (string, error) {
	if node.path == "" {
		return "", &tkerrors.PathError{Kind: tkerrors.ErrInvalidPath, Op: node.kind.String()}
	}
	if err := checkOperands(node); err != nil {
		return "", err
	}

	idx := strconv.Itoa(c.next)
	c.next++
	name := "#f" + idx
	value := ":f" + idx
	c.names[name] = node.path

	if op, ok := comparators[node.kind]; ok {
		c.values[value] = node.operands[0]
		return name + " " + op + " " + value, nil
	}

	switch node.kind {
	case KindBetween:
		lo, hi := value+"lo", value+"hi"
		c.values[lo] = node.operands[0]
		c.values[hi] = node.operands[1]
		return name + " BETWEEN " + lo + " AND " + hi, nil
	case KindBeginsWith:
		c.values[value] = node.operands[0]
		return "begins_with(" + name + ", " + value + ")", nil
	case KindContains:
		c.values[value] = node.operands[0]
		return "contains(" + name + ", " + value + ")", nil
	case KindAttributeExists:
		return "attribute_exists(" + name + ")", nil
	case KindAttributeNotExists:
		return "attribute_not_exists(" + name + ")", nil
	case KindAttributeType:
		c.values[value] = node.operands[0]
		return "attribute_type(" + name + ", " + value + ")", nil
	case KindIn:
		refs := make([]string, len(node.operands))
		for i, operand := range node.operands {
			ref := value + "_" + strconv.Itoa(i)
			c.values[ref] = operand
			refs[i] = ref
		}
		return name + " IN (" + strings.Join(refs, ", ") + ")", nil
	}
	return "", fmt.Errorf("%w: unsupported kind %d", tkerrors.ErrInvalidCondition, int(node.kind))
}

func checkOperands(node Node) error {
	want := 1
	switch node.kind {
	case KindBetween:
		want = 2
	case KindAttributeExists, KindAttributeNotExists:
		want = 0
	case KindIn:
		if len(node.operands) == 0 || len(node.operands) > maxInOperands {
			return fmt.Errorf("%w: in requires 1 to %d operands, got %d",
				tkerrors.ErrInvalidCondition, maxInOperands, len(node.operands))
		}
		return nil
	case KindAttributeType:
		if len(node.operands) != 1 {
			return fmt.Errorf("%w: attributeType requires 1 operand", tkerrors.ErrInvalidCondition)
		}
		if tag, ok := node.operands[0].(string); !ok || !typeTags[tag] {
			return fmt.Errorf("%w: unknown attribute type %v", tkerrors.ErrInvalidCondition, node.operands)
		}
		return nil
	}
	if len(node.operands) != want {
		return fmt.Errorf("%w: %s requires %d operands, got %d",
			tkerrors.ErrInvalidCondition, node.kind, want, len(node.operands))
	}
	return nil
}
