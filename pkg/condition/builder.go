package condition

// Builder constructs condition nodes over attribute paths of type K.
//
// Declaring a named string type for a model's attributes and using For[K]
// restricts conditions to those attributes at compile time:
//
//	type UserAttr string
//	const Status UserAttr = "status"
//	cond := condition.For[UserAttr]().Eq(Status, "active")
//
// Untyped accepts any string and is the variant used for dynamic callbacks.
type Builder[K ~string] struct{}

// Untyped is the builder handed to Resolve callbacks.
type Untyped = Builder[string]

// For returns a builder restricted to attribute paths of type K.
func For[K ~string]() Builder[K] {
	return Builder[K]{}
}

// Eq matches when path equals value
func (Builder[K]) Eq(path K, value any) Node { return leaf(KindEq, string(path), value) }

// Ne matches when path differs from value
func (Builder[K]) Ne(path K, value any) Node { return leaf(KindNe, string(path), value) }

// Lt matches when path is less than value
func (Builder[K]) Lt(path K, value any) Node { return leaf(KindLt, string(path), value) }

// Lte matches when path is less than or equal to value
func (Builder[K]) Lte(path K, value any) Node { return leaf(KindLte, string(path), value) }

// Gt matches when path is greater than value
func (Builder[K]) Gt(path K, value any) Node { return leaf(KindGt, string(path), value) }

// Gte matches when path is greater than or equal to value
func (Builder[K]) Gte(path K, value any) Node { return leaf(KindGte, string(path), value) }

// Between matches low <= path <= high
func (Builder[K]) Between(path K, low, high any) Node {
	return leaf(KindBetween, string(path), low, high)
}

// BeginsWith matches string values starting with prefix
func (Builder[K]) BeginsWith(path K, prefix any) Node {
	return leaf(KindBeginsWith, string(path), prefix)
}

// Contains matches strings containing a substring, or sets/lists containing an element
func (Builder[K]) Contains(path K, value any) Node {
	return leaf(KindContains, string(path), value)
}

// AttributeExists matches items that have path
func (Builder[K]) AttributeExists(path K) Node { return leaf(KindAttributeExists, string(path)) }

// AttributeNotExists matches items that lack path
func (Builder[K]) AttributeNotExists(path K) Node {
	return leaf(KindAttributeNotExists, string(path))
}

// AttributeType matches when path holds a value of the given type tag (S, N, BOOL, ...)
func (Builder[K]) AttributeType(path K, typeTag string) Node {
	return leaf(KindAttributeType, string(path), typeTag)
}

// In matches when path equals any of values (at most 100)
func (Builder[K]) In(path K, values ...any) Node {
	return leaf(KindIn, string(path), values...)
}

// And requires every operand to match
func (Builder[K]) And(first Node, rest ...Node) Node {
	return composite(KindAnd, append([]Node{first}, rest...))
}

// Or requires at least one operand to match
func (Builder[K]) Or(first Node, rest ...Node) Node {
	return composite(KindOr, append([]Node{first}, rest...))
}

// Not negates its operand
func (Builder[K]) Not(node Node) Node {
	return composite(KindNot, []Node{node})
}

// AndAll is And over a slice. An empty slice yields a node that fails to compile.
func (Builder[K]) AndAll(nodes []Node) Node { return composite(KindAnd, nodes) }

// OrAll is Or over a slice. An empty slice yields a node that fails to compile.
func (Builder[K]) OrAll(nodes []Node) Node { return composite(KindOr, nodes) }

var untyped Untyped

// Eq is Untyped.Eq
func Eq(path string, value any) Node { return untyped.Eq(path, value) }

// Ne is Untyped.Ne
func Ne(path string, value any) Node { return untyped.Ne(path, value) }

// Lt is Untyped.Lt
func Lt(path string, value any) Node { return untyped.Lt(path, value) }

// Lte is Untyped.Lte
func Lte(path string, value any) Node { return untyped.Lte(path, value) }

// Gt is Untyped.Gt
func Gt(path string, value any) Node { return untyped.Gt(path, value) }

// Gte is Untyped.Gte
func Gte(path string, value any) Node { return untyped.Gte(path, value) }

// Between is Untyped.Between
func Between(path string, low, high any) Node { return untyped.Between(path, low, high) }

// BeginsWith is Untyped.BeginsWith
func BeginsWith(path string, prefix any) Node { return untyped.BeginsWith(path, prefix) }

// Contains is Untyped.Contains
func Contains(path string, value any) Node { return untyped.Contains(path, value) }

// AttributeExists is Untyped.AttributeExists
func AttributeExists(path string) Node { return untyped.AttributeExists(path) }

// AttributeNotExists is Untyped.AttributeNotExists
func AttributeNotExists(path string) Node { return untyped.AttributeNotExists(path) }

// AttributeType is Untyped.AttributeType
func AttributeType(path, typeTag string) Node { return untyped.AttributeType(path, typeTag) }

// In is Untyped.In
func In(path string, values ...any) Node { return untyped.In(path, values...) }

// And is Untyped.And
func And(first Node, rest ...Node) Node { return untyped.And(first, rest...) }

// Or is Untyped.Or
func Or(first Node, rest ...Node) Node { return untyped.Or(first, rest...) }

// Not is Untyped.Not
func Not(node Node) Node { return untyped.Not(node) }
