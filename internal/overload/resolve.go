package overload

import (
	"log/slog"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/typeinfer"
)

// Collect is the declaration pre-pass. It registers every
// `static $operator_<tag>(...)` method of every named class declaration in
// prog, so that uses are resolved regardless of whether they appear before
// or after the class. Methods with an unknown tag are logged and skipped.
func Collect(prog *ast.Program, logger *slog.Logger) *Registry {
	reg := NewRegistry()
	ast.Inspect(prog, func(n ast.Node) bool {
		class, ok := n.(*ast.ClassDecl)
		if !ok || class.Name == "" {
			return true
		}
		for _, m := range class.Members {
			method, ok := m.(*ast.ClassMethod)
			if !ok || !method.Static || method.Kind != ast.MethodPlain {
				continue
			}
			name, ok := ast.KeyName(method.Key, method.Computed)
			if !ok {
				continue
			}
			op, prefixed, valid := ParseMethodName(name)
			if !prefixed {
				continue
			}
			if !valid {
				logger.Warn("unknown operator overload tag", "class", class.Name, "method", name)
				continue
			}
			reg.Register(class.Name, op, name)
			logger.Debug("registered operator overload", "class", class.Name, "operator", string(op), "method", name)
		}
		return true
	})
	return reg
}

// Resolver rewrites binary operations into static overload calls.
type Resolver struct {
	reg   *Registry
	types typeinfer.Inferrer
}

// NewResolver returns a resolver over reg using types to classify operands.
func NewResolver(reg *Registry, types typeinfer.Inferrer) *Resolver {
	return &Resolver{reg: reg, types: types}
}

// Resolve returns `T.method(left, right)` when the left operand's type, or
// failing that the right operand's type, has an overload for b's operator.
// It reports false, leaving b alone, for non-overloadable operators and
// unresolved operands.
func (r *Resolver) Resolve(b *ast.Binary) (ast.Expr, bool) {
	op, ok := FromSymbol(b.Op)
	if !ok || r.reg.Len() == 0 {
		return nil, false
	}
	for _, operand := range []ast.Expr{b.Left, b.Right} {
		typ := r.types.InferType(operand)
		if typ == "" {
			continue
		}
		if method, ok := r.reg.Lookup(typ, op); ok {
			return ast.MethodCall(ast.ID(typ), method, b.Left, b.Right), true
		}
	}
	return nil, false
}
