package ast

// Constructors for the fragments rewriters synthesize.

func ID(name string) *Ident { return &Ident{Name: name} }

func Str(s string) *StringLit { return &StringLit{Value: s} }

func Num(raw string) *NumberLit { return &NumberLit{Raw: raw} }

// Dot builds `obj.name`.
func Dot(obj Expr, name string) *Member {
	return &Member{Object: obj, Property: ID(name)}
}

func CallOf(callee Expr, args ...Expr) *Call {
	if args == nil {
		args = []Expr{}
	}
	return &Call{Callee: callee, Args: args}
}

// MethodCall builds `recv.name(args...)`.
func MethodCall(recv Expr, name string, args ...Expr) *Call {
	return CallOf(Dot(recv, name), args...)
}

// Lambda builds the single-parameter arrow `param => body`.
func Lambda(param string, body Expr) *Arrow {
	return &Arrow{Params: []Expr{ID(param)}, Expr: body}
}

// KeyName returns the static name of a property or member key: the
// identifier name, or the string value for quoted keys. Computed keys and
// numeric keys have no static name.
func KeyName(key Expr, computed bool) (string, bool) {
	if computed {
		return "", false
	}
	switch k := key.(type) {
	case *Ident:
		return k.Name, true
	case *StringLit:
		return k.Value, true
	}
	return "", false
}

// PropertyName is KeyName for an object literal entry. Spread entries and
// methods have no name.
func PropertyName(e ObjectEntry) (string, bool) {
	p, ok := e.(*Property)
	if !ok || p.Kind != PropInit {
		return "", false
	}
	return KeyName(p.Key, p.Computed)
}

// MemberName is KeyName for a class member.
func MemberName(m ClassMember) (string, bool) {
	switch m := m.(type) {
	case *ClassMethod:
		return KeyName(m.Key, m.Computed)
	case *ClassProperty:
		return KeyName(m.Key, m.Computed)
	}
	return "", false
}

// IsIdent reports whether e is the identifier name.
func IsIdent(e Expr, name string) bool {
	id, ok := e.(*Ident)
	return ok && id.Name == name
}

// binaryPrec is the binding power of each binary operator. `|>` binds
// loosest so `a + b |> f` pipes the sum.
var binaryPrec = map[string]int{
	"|>": 1,
	"??": 2,
	"||": 3,
	"&&": 4,
	"|":  5,
	"^":  6,
	"&":  7,
	"==": 8, "!=": 8, "===": 8, "!==": 8,
	"<": 9, ">": 9, "<=": 9, ">=": 9, "instanceof": 9, "in": 9,
	"<<": 10, ">>": 10, ">>>": 10,
	"+": 11, "-": 11,
	"*": 12, "/": 12, "%": 12,
	"**": 13,
}

// Precedence returns the binding power of a binary operator, or 0 when op
// is not one.
func Precedence(op string) int {
	return binaryPrec[op]
}
