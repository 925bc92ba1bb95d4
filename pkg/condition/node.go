// Package condition builds filter and condition trees and compiles them into
// DynamoDB expressions with collision-free aliases.
package condition

// Kind identifies a node in a condition tree.
type Kind int

// Node kinds. The zero Kind marks an uninitialized node.
const (
	kindInvalid Kind = iota
	KindEq
	KindNe
	KindLt
	KindLte
	KindGt
	KindGte
	KindBetween
	KindBeginsWith
	KindContains
	KindAttributeExists
	KindAttributeNotExists
	KindAttributeType
	KindIn
	KindAnd
	KindOr
	KindNot
)

var kindNames = map[Kind]string{
	KindEq:                 "eq",
	KindNe:                 "ne",
	KindLt:                 "lt",
	KindLte:                "lte",
	KindGt:                 "gt",
	KindGte:                "gte",
	KindBetween:            "between",
	KindBeginsWith:         "beginsWith",
	KindContains:           "contains",
	KindAttributeExists:    "attributeExists",
	KindAttributeNotExists: "attributeNotExists",
	KindAttributeType:      "attributeType",
	KindIn:                 "in",
	KindAnd:                "and",
	KindOr:                 "or",
	KindNot:                "not",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsComposite reports whether the kind combines child nodes
func (k Kind) IsComposite() bool {
	return k == KindAnd || k == KindOr || k == KindNot
}

// Node is an immutable condition tree node. Build nodes with the package
// functions or a Builder; the zero Node is invalid.
type Node struct {
	path     string
	operands []any
	children []Node
	kind     Kind
}

// Kind returns the node kind
func (n Node) Kind() Kind {
	return n.kind
}

// Path returns the attribute path of a leaf node
func (n Node) Path() string {
	return n.path
}

// Operands returns a copy of the literal operands of a leaf node.
func (n Node) Operands() []any {
	return append([]any(nil), n.operands...)
}

// Children returns a copy of the operands of a composite node.
func (n Node) Children() []Node {
	return append([]Node(nil), n.children...)
}

// AttributeType tags accepted by attribute_type.
const (
	TypeString    = "S"
	TypeStringSet = "SS"
	TypeNumber    = "N"
	TypeNumberSet = "NS"
	TypeBinary    = "B"
	TypeBinarySet = "BS"
	TypeBool      = "BOOL"
	TypeNull      = "NULL"
	TypeList      = "L"
	TypeMap       = "M"
)

var typeTags = map[string]bool{
	TypeString: true, TypeStringSet: true, TypeNumber: true, TypeNumberSet: true,
	TypeBinary: true, TypeBinarySet: true, TypeBool: true, TypeNull: true,
	TypeList: true, TypeMap: true,
}

func leaf(kind Kind, path string, operands ...any) Node {
	return Node{kind: kind, path: path, operands: append([]any(nil), operands...)}
}

func composite(kind Kind, children []Node) Node {
	return Node{kind: kind, children: append([]Node(nil), children...)}
}
