package transform

import (
	"github.com/roach88/cscript/internal/ast"
)

// Outcome classifies what happened to a property candidate.
type Outcome string

const (
	// OutcomeRewritten: a `{ get; set; }` declaration became accessors.
	OutcomeRewritten Outcome = "rewritten"
	// OutcomeDetectedNotRewritten: a hand-written accessor looks like an
	// auto-property but is deliberately left as written.
	OutcomeDetectedNotRewritten Outcome = "detected_not_rewritten"
)

// PropertyOutcome reports one property candidate.
type PropertyOutcome struct {
	Class   string         `json:"class"`
	Name    string         `json:"name"`
	Kind    ast.MethodKind `json:"kind,omitempty"`
	Static  bool           `json:"static,omitempty"`
	Outcome Outcome        `json:"outcome"`
}

// BackingField returns the field a lowered property stores its value in.
func BackingField(name string) string {
	return "_" + name
}

// Accessors records hand-written accessors of one class by static-ness and
// name.
type Accessors map[accessorKey]bool

type accessorKey struct {
	static bool
	name   string
	kind   ast.MethodKind
}

// ClassAccessors collects the getters and setters already declared in c.
func ClassAccessors(c *ast.ClassDecl) Accessors {
	acc := Accessors{}
	for _, m := range c.Members {
		method, ok := m.(*ast.ClassMethod)
		if !ok || (method.Kind != ast.MethodGet && method.Kind != ast.MethodSet) {
			continue
		}
		if name, ok := ast.KeyName(method.Key, method.Computed); ok {
			acc[accessorKey{method.Static, name, method.Kind}] = true
		}
	}
	return acc
}

// Has reports whether an accessor of kind exists for name.
func (a Accessors) Has(static bool, name string, kind ast.MethodKind) bool {
	return a[accessorKey{static, name, kind}]
}

// IsPropertyDeclaration reports whether a class property's value is a
// marker object: any object literal with a plain `get` or `set` key, as in
// `{ get; set; }`, `{ get, set }` or `{ get: true }`. Other entries do not
// prevent the match.
func IsPropertyDeclaration(p *ast.ClassProperty) bool {
	obj, ok := p.Value.(*ast.ObjectLit)
	if !ok {
		return false
	}
	for _, e := range obj.Entries {
		prop, ok := e.(*ast.Property)
		if !ok {
			continue
		}
		if name, ok := ast.KeyName(prop.Key, prop.Computed); ok && (name == "get" || name == "set") {
			return true
		}
	}
	return false
}

// LowerProperty expands `name = { get; set; }` into
//
//	get name() { return this._name; }
//	set name(value) { this._name = value; }
//
// Accessors the class already declares by hand win: the matching half is
// not generated. When both halves exist already the declaration expands to
// nothing. Computed keys are declined.
func LowerProperty(p *ast.ClassProperty, existing Accessors) ([]ast.ClassMember, bool) {
	if !IsPropertyDeclaration(p) {
		return nil, false
	}
	name, ok := ast.KeyName(p.Key, p.Computed)
	if !ok {
		return nil, false
	}
	backing := func() ast.Expr { return ast.Dot(&ast.This{}, BackingField(name)) }

	out := []ast.ClassMember{}
	if !existing.Has(p.Static, name, ast.MethodGet) {
		out = append(out, &ast.ClassMethod{
			Kind:   ast.MethodGet,
			Static: p.Static,
			Key:    ast.ID(name),
			Params: []ast.Expr{},
			Body:   &ast.Block{Body: []ast.Stmt{&ast.Return{Arg: backing()}}},
		})
	}
	if !existing.Has(p.Static, name, ast.MethodSet) {
		out = append(out, &ast.ClassMethod{
			Kind:   ast.MethodSet,
			Static: p.Static,
			Key:    ast.ID(name),
			Params: []ast.Expr{ast.ID("value")},
			Body: &ast.Block{Body: []ast.Stmt{&ast.ExprStmt{
				X: &ast.Assign{Op: "=", Target: backing(), Value: ast.ID("value")},
			}}},
		})
	}
	return out, true
}

// IsAutoProperty reports whether a getter or setter has the body of an
// auto-property: empty, or a single return or expression statement.
// Detection only; such accessors are never rewritten.
func IsAutoProperty(m *ast.ClassMethod) bool {
	if m.Kind != ast.MethodGet && m.Kind != ast.MethodSet {
		return false
	}
	if m.Body == nil {
		return false
	}
	switch len(m.Body.Body) {
	case 0:
		return true
	case 1:
		switch m.Body.Body[0].(type) {
		case *ast.Return, *ast.ExprStmt:
			return true
		}
	}
	return false
}
