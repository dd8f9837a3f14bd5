package typeinfer

import "github.com/roach88/cscript/internal/ast"

// BindingInferrer extends Heuristic with what variable initializers say.
// A pre-pass records every `x = <expr>` binding (declaration or plain
// assignment to an identifier) whose right side has an inferable type.
// Identifiers found there take that type; all others fall back to the
// naming convention.
//
// There is still no scope tracking: bindings are keyed by name across the
// whole program and the last one in source order wins.
type BindingInferrer struct {
	*Heuristic
	bindings map[string]string
}

// NewBindingInferrer scans prog and returns an inferrer over its bindings.
func NewBindingInferrer(known []string, prog *ast.Program) *BindingInferrer {
	b := &BindingInferrer{
		Heuristic: NewHeuristic(known),
		bindings:  map[string]string{},
	}
	if prog == nil {
		return b
	}
	ast.Inspect(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.VarDeclarator:
			b.record(n.Target, n.Init)
		case *ast.Assign:
			if n.Op == "=" {
				b.record(n.Target, n.Value)
			}
		}
		return true
	})
	return b
}

func (b *BindingInferrer) record(target, value ast.Expr) {
	id, ok := target.(*ast.Ident)
	if !ok || value == nil {
		return
	}
	if t := b.InferType(value); t != "" {
		b.bindings[id.Name] = t
	}
}

// InferType implements Inferrer.
func (b *BindingInferrer) InferType(e ast.Expr) string {
	return b.infer(e, b.fromBinding)
}

func (b *BindingInferrer) fromBinding(name string) string {
	if t, ok := b.bindings[name]; ok {
		return t
	}
	return b.fromName(name)
}

// Bindings returns a copy of the recorded name → type table.
func (b *BindingInferrer) Bindings() map[string]string {
	out := make(map[string]string, len(b.bindings))
	for k, v := range b.bindings {
		out[k] = v
	}
	return out
}
