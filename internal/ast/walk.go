package ast

import "reflect"

// Inspect walks the tree rooted at n in depth-first pre-order. When fn
// returns false the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || isNil(n) {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(cs ...Node) {
		for _, c := range cs {
			if c != nil && !isNil(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Body {
			add(s)
		}
	case *VarDecl:
		for _, d := range n.Decls {
			add(d)
		}
	case *VarDeclarator:
		add(n.Target, n.Init)
	case *FuncDecl:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *ClassDecl:
		add(n.SuperClass)
		for _, m := range n.Members {
			add(m)
		}
	case *ClassMethod:
		add(n.Key)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *ClassProperty:
		add(n.Key, n.Value)
	case *Block:
		for _, s := range n.Body {
			add(s)
		}
	case *Return:
		add(n.Arg)
	case *If:
		add(n.Test, n.Cons, n.Alt)
	case *For:
		add(n.Init, n.Test, n.Update, n.Body)
	case *ForIn:
		add(n.Left, n.Right, n.Body)
	case *While:
		add(n.Test, n.Body)
	case *Throw:
		add(n.Arg)
	case *ExprStmt:
		add(n.X)
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *ObjectLit:
		for _, e := range n.Entries {
			add(e)
		}
	case *Property:
		add(n.Key, n.Value)
	case *Spread:
		add(n.Arg)
	case *Func:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Arrow:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Expr, n.Block)
	case *Call:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *New:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *Member:
		add(n.Object, n.Property)
	case *Binary:
		add(n.Left, n.Right)
	case *Unary:
		add(n.X)
	case *Update:
		add(n.X)
	case *Assign:
		add(n.Target, n.Value)
	case *Conditional:
		add(n.Test, n.Cons, n.Alt)
	case *Sequence:
		for _, e := range n.Exprs {
			add(e)
		}
	}
	return out
}

// Equal reports whether two trees are structurally identical. Nil and empty
// slices compare equal, so a parsed `f()` equals a synthesized one.
func Equal(a, b Node) bool {
	return deepEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

func deepEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Interface, reflect.Ptr:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return deepEqual(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !deepEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !deepEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.String:
		return a.String() == b.String()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	default:
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
}

// isNil catches typed nil pointers stored in an interface, e.g. a nil *Block.
func isNil(n Node) bool {
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
