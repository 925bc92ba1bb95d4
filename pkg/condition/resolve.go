package condition

import (
	"fmt"

	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
	"github.com/theory-cloud/tablekit/pkg/expr"
)

// Callback builds a condition from the dynamic builder
type Callback func(Untyped) Node

// Resolve normalizes the accepted filter inputs into a compiled bundle:
//
//   - nil or "" yields an empty bundle (no filter)
//   - a string is a pre-written expression passed through verbatim; the caller
//     supplies any names and values it references
//   - expr.Compiled is passed through unchanged
//   - Node / *Node is compiled
//   - Callback or func(Untyped) Node is invoked with the builder, then compiled
func Resolve(input any) (expr.Compiled, error) {
	switch in := input.(type) {
	case nil:
		return expr.Compiled{}, nil
	case string:
		return expr.Compiled{Expression: in}, nil
	case expr.Compiled:
		return in, nil
	case Node:
		return Compile(in)
	case *Node:
		if in == nil {
			return expr.Compiled{}, nil
		}
		return Compile(*in)
	case Callback:
		if in == nil {
			return expr.Compiled{}, nil
		}
		return Compile(in(untyped))
	case func(Untyped) Node:
		if in == nil {
			return expr.Compiled{}, nil
		}
		return Compile(in(untyped))
	}
	return expr.Compiled{}, fmt.Errorf("%w: unsupported filter input %T", tkerrors.ErrInvalidCondition, input)
}

// ResolveTyped invokes a typed callback and compiles the result. A nil
// callback yields an empty bundle.
func ResolveTyped[K ~string](fn func(Builder[K]) Node) (expr.Compiled, error) {
	if fn == nil {
		return expr.Compiled{}, nil
	}
	return Compile(fn(For[K]()))
}
