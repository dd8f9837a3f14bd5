package queryir

import "github.com/roach88/cscript/internal/ast"

// Encoding records which surface form a Descriptor was read from.
type Encoding string

const (
	EncodingSequence Encoding = "sequence"
	EncodingObject   Encoding = "object"
)

// Clause is one step of a query after the source.
//
// This is a sealed interface - only types in this package implement it.
// Chain builders switch over Where, GroupBy, OrderBy and Select.
type Clause interface {
	clauseNode()
}

// Operand is a clause expression. Lambda is set when the expression is
// already a one-parameter arrow function and must not be wrapped again.
type Operand struct {
	Expr   ast.Expr
	Lambda bool
}

// Where filters elements. A query may carry any number of them; they apply
// in source order.
type Where struct {
	Pred Operand
}

// GroupBy keys elements into groups.
type GroupBy struct {
	Key Operand
}

// OrderBy sorts elements by a key.
type OrderBy struct {
	Key Operand
}

// Select projects each element.
type Select struct {
	Projection Operand
}

func (Where) clauseNode()   {}
func (GroupBy) clauseNode() {}
func (OrderBy) clauseNode() {}
func (Select) clauseNode()  {}

// Descriptor is the normalized form of a query, independent of how it was
// written.
//
// Example (token encoding):
//
//	from, u, in, users, where, u.active, select, u.name
//
// Example (object encoding):
//
//	const names = { from: users, where: u => u.active, select: u => u.name };
//
// Both produce:
//
//	Descriptor{
//	  Source:  users,
//	  Binding: "u",
//	  Where:   []Where{{Pred: u.active}},
//	  Select:  &Select{Projection: u.name},
//	}
//
// A well-formed descriptor has exactly one source, one binding variable
// and a projection. GroupBy and OrderBy are optional.
type Descriptor struct {
	Source   ast.Expr
	Binding  string
	Where    []Where
	GroupBy  *GroupBy
	OrderBy  *OrderBy
	Select   *Select
	Encoding Encoding
}

// Clauses returns the clauses in chain order: every where in source order,
// then groupBy, then orderBy, then select. The order is fixed regardless of
// how the query was written.
func (d *Descriptor) Clauses() []Clause {
	out := make([]Clause, 0, len(d.Where)+3)
	for _, w := range d.Where {
		out = append(out, w)
	}
	if d.GroupBy != nil {
		out = append(out, *d.GroupBy)
	}
	if d.OrderBy != nil {
		out = append(out, *d.OrderBy)
	}
	if d.Select != nil {
		out = append(out, *d.Select)
	}
	return out
}

// operand classifies e, marking one-parameter arrows as ready lambdas.
func operand(e ast.Expr) Operand {
	if _, ok := LambdaParam(e); ok {
		return Operand{Expr: e, Lambda: true}
	}
	return Operand{Expr: e}
}

// LambdaParam returns the parameter name of a one-parameter arrow whose
// parameter is a plain identifier.
func LambdaParam(e ast.Expr) (string, bool) {
	a, ok := e.(*ast.Arrow)
	if !ok || len(a.Params) != 1 {
		return "", false
	}
	id, ok := a.Params[0].(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}
