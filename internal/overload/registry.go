package overload

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// Registry maps (declaring type, operator) to the static method that
// implements it. Both levels are ordered maps so listings are stable.
//
// A Registry belongs to a single transform run; it is never shared.
type Registry struct {
	types *treemap.Map // type name -> *treemap.Map (Operator -> method name)
}

// Entry is one registered overload.
type Entry struct {
	Type     string   `json:"type"`
	Operator Operator `json:"operator"`
	Symbol   string   `json:"symbol"`
	Method   string   `json:"method"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: treemap.NewWithStringComparator()}
}

// Register records method as the implementation of op for typ. A later
// registration for the same pair replaces the earlier one.
func (r *Registry) Register(typ string, op Operator, method string) {
	ops, ok := r.types.Get(typ)
	if !ok {
		ops = treemap.NewWithStringComparator()
		r.types.Put(typ, ops)
	}
	ops.(*treemap.Map).Put(string(op), method)
}

// Lookup returns the method registered for (typ, op).
func (r *Registry) Lookup(typ string, op Operator) (string, bool) {
	ops, ok := r.types.Get(typ)
	if !ok {
		return "", false
	}
	m, ok := ops.(*treemap.Map).Get(string(op))
	if !ok {
		return "", false
	}
	return m.(string), true
}

// Types returns the declaring type names in sorted order.
func (r *Registry) Types() []string {
	keys := r.types.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// Entries returns every registration ordered by type, then operator name.
func (r *Registry) Entries() []Entry {
	var out []Entry
	it := r.types.Iterator()
	for it.Next() {
		typ := it.Key().(string)
		ops := it.Value().(*treemap.Map).Iterator()
		for ops.Next() {
			op := Operator(ops.Key().(string))
			out = append(out, Entry{
				Type:     typ,
				Operator: op,
				Symbol:   op.Symbol(),
				Method:   ops.Value().(string),
			})
		}
	}
	return out
}

// Len returns the number of registered (type, operator) pairs.
func (r *Registry) Len() int {
	n := 0
	for _, v := range r.types.Values() {
		n += v.(*treemap.Map).Size()
	}
	return n
}
