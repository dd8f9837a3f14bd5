package querychain

import (
	"fmt"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/queryir"
)

// Names of the runtime query helper. The helper library itself lives in the
// target runtime; this package only emits calls to it.
const (
	FromFunc      = "from"
	WhereMethod   = "where"
	GroupByMethod = "groupBy"
	OrderByMethod = "orderBy"
	SelectMethod  = "select"
	ToArrayMethod = "toArray"
)

// Build turns a descriptor into the chain
//
//	from(src).where(x => p)...groupBy(x => k).orderBy(x => k).select(x => s).toArray()
//
// Every clause operand becomes a one-parameter arrow over the binding
// variable unless it already is one. toArray() is always appended, so the
// result is an eagerly materialized array.
//
// Build expects a descriptor that passed queryir.Validate.
func Build(d *queryir.Descriptor) (ast.Expr, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot build nil query")
	}
	if d.Source == nil || d.Binding == "" {
		return nil, fmt.Errorf("query needs a source and a binding variable")
	}

	var chain ast.Expr = ast.CallOf(ast.ID(FromFunc), d.Source)
	for _, c := range d.Clauses() {
		switch clause := c.(type) {
		case queryir.Where:
			chain = ast.MethodCall(chain, WhereMethod, lambda(d.Binding, clause.Pred))
		case queryir.GroupBy:
			chain = ast.MethodCall(chain, GroupByMethod, lambda(d.Binding, clause.Key))
		case queryir.OrderBy:
			chain = ast.MethodCall(chain, OrderByMethod, lambda(d.Binding, clause.Key))
		case queryir.Select:
			chain = ast.MethodCall(chain, SelectMethod, lambda(d.Binding, clause.Projection))
		default:
			return nil, fmt.Errorf("unsupported clause type: %T", c)
		}
	}
	return ast.MethodCall(chain, ToArrayMethod), nil
}

func lambda(binding string, op queryir.Operand) ast.Expr {
	if op.Lambda {
		return op.Expr
	}
	return ast.Lambda(binding, op.Expr)
}
