// Package update provides an immutable builder for DynamoDB update actions
// and the compiler that renders them as an update expression.
package update

// Action pairs an attribute path with an operand.
type Action struct {
	Value any
	Path  string
}

// Actions is a frozen snapshot of accumulated update actions.
type Actions struct {
	Sets           []Action
	SetIfNotExists []Action
	Removes        []string
	Adds           []Action
	Deletes        []Action
}

// IsEmpty reports whether no action of any kind was recorded
func (a Actions) IsEmpty() bool {
	return len(a.Sets)+len(a.SetIfNotExists)+len(a.Removes)+len(a.Adds)+len(a.Deletes) == 0
}

// listAppend marks a SET whose right-hand side is list_append(path, values)
type listAppend struct {
	values any
}

// Builder accumulates update actions. Every method returns a new Builder and
// leaves the receiver untouched, so intermediate builders can be reused freely.
type Builder struct {
	actions Actions
}

// New returns an empty builder
func New() Builder {
	return Builder{}
}

// Set assigns value to path
func (b Builder) Set(path string, value any) Builder {
	next := b
	next.actions.Sets = appendAction(b.actions.Sets, Action{Path: path, Value: value})
	return next
}

// SetIfNotExists assigns value to path only when the attribute is absent
func (b Builder) SetIfNotExists(path string, value any) Builder {
	next := b
	next.actions.SetIfNotExists = appendAction(b.actions.SetIfNotExists, Action{Path: path, Value: value})
	return next
}

// Remove deletes the attribute at path
func (b Builder) Remove(path string) Builder {
	next := b
	removes := make([]string, len(b.actions.Removes), len(b.actions.Removes)+1)
	copy(removes, b.actions.Removes)
	next.actions.Removes = append(removes, path)
	return next
}

// Add increments a number or adds elements to a set
func (b Builder) Add(path string, value any) Builder {
	next := b
	next.actions.Adds = appendAction(b.actions.Adds, Action{Path: path, Value: value})
	return next
}

// Delete removes elements from a set
func (b Builder) Delete(path string, value any) Builder {
	next := b
	next.actions.Deletes = appendAction(b.actions.Deletes, Action{Path: path, Value: value})
	return next
}

// Increment is Add(path, 1)
func (b Builder) Increment(path string) Builder {
	return b.Add(path, 1)
}

// Decrement is Add(path, -1)
func (b Builder) Decrement(path string) Builder {
	return b.Add(path, -1)
}

// AppendToList appends values to the end of the list at path
func (b Builder) AppendToList(path string, values any) Builder {
	return b.Set(path, listAppend{values: values})
}

// Build returns a snapshot of the accumulated actions. The snapshot shares no
// backing arrays with the builder.
func (b Builder) Build() Actions {
	return Actions{
		Sets:           cloneActions(b.actions.Sets),
		SetIfNotExists: cloneActions(b.actions.SetIfNotExists),
		Removes:        append([]string(nil), b.actions.Removes...),
		Adds:           cloneActions(b.actions.Adds),
		Deletes:        cloneActions(b.actions.Deletes),
	}
}

func appendAction(list []Action, a Action) []Action {
	out := make([]Action, len(list), len(list)+1)
	copy(out, list)
	return append(out, a)
}

func cloneActions(list []Action) []Action {
	if len(list) == 0 {
		return nil
	}
	return append([]Action(nil), list...)
}
