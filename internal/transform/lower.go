package transform

import (
	"strconv"
	"strings"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/querychain"
	"github.com/roach88/cscript/internal/queryir"
)

// Each Lower* function is a guarded pattern match over one node shape. It
// reports ok=false, leaving the node untouched, when the shape does not
// apply, and returns an error only for a recognized construct it cannot
// lower.

// NoMatchMessage is the message of the error a lowered match throws when
// no clause holds.
const NoMatchMessage = "No match found"

// LowerPipeline rewrites `L |> R` into `R(L)`. R is not checked for being
// callable.
func LowerPipeline(e ast.Expr) (ast.Expr, bool) {
	b, ok := e.(*ast.Binary)
	if !ok || b.Op != "|>" {
		return nil, false
	}
	return ast.CallOf(b.Right, b.Left), true
}

// LowerMatch rewrites `subject.match({ key: result, ... })` into an
// immediately invoked arrow that binds subject once to temp and tests each
// clause in order:
//
//	((temp) => c1 ? r1 : c2 ? r2 : (() => { throw new Error("No match found"); })())(subject)
func LowerMatch(e ast.Expr, temp string) (ast.Expr, bool, error) {
	call, ok := e.(*ast.Call)
	if !ok {
		return nil, false, nil
	}
	m, ok := call.Callee.(*ast.Member)
	if !ok || m.Computed || !ast.IsIdent(m.Property, "match") || len(call.Args) != 1 {
		return nil, false, nil
	}
	clauses, ok := call.Args[0].(*ast.ObjectLit)
	if !ok {
		return nil, false, malformed(FeatureMatch, CodeMatchArgument,
			"match expects an object literal of pattern clauses, got %s", describe(call.Args[0]))
	}

	var chain ast.Expr = noMatch()
	for i := len(clauses.Entries) - 1; i >= 0; i-- {
		prop, ok := clauses.Entries[i].(*ast.Property)
		if !ok || prop.Kind != ast.PropInit {
			return nil, false, malformed(FeatureMatch, CodeMatchPattern,
				"match clause %d must be a `pattern: result` entry", i)
		}
		cond, err := patternCondition(temp, prop.Key, prop.Computed)
		if err != nil {
			return nil, false, err
		}
		chain = &ast.Conditional{Test: cond, Cons: prop.Value, Alt: chain}
	}

	fn := &ast.Arrow{Params: []ast.Expr{ast.ID(temp)}, Expr: chain}
	return ast.CallOf(fn, m.Object), true, nil
}

// patternCondition builds the test for one clause key against temp.
func patternCondition(temp string, key ast.Expr, computed bool) (ast.Expr, error) {
	subject := func() ast.Expr { return ast.ID(temp) }

	switch k := key.(type) {
	case *ast.Ident:
		if k.Name == "_" && !computed {
			return &ast.BoolLit{Value: true}, nil
		}
	case *ast.StringLit:
		if lo, hi, ok := parseRange(k.Value); ok {
			return &ast.Binary{
				Op:    "&&",
				Left:  &ast.Binary{Op: ">=", Left: subject(), Right: intLit(lo)},
				Right: &ast.Binary{Op: "<=", Left: subject(), Right: intLit(hi)},
			}, nil
		}
	case *ast.ObjectLit:
		if !computed {
			break
		}
		var cond ast.Expr
		for _, entry := range k.Entries {
			prop, ok := entry.(*ast.Property)
			if !ok || prop.Kind != ast.PropInit {
				return nil, malformed(FeatureMatch, CodeMatchPattern, "object pattern may only hold `key: value` entries")
			}
			test := &ast.Binary{Op: "===", Left: fieldOf(subject(), prop), Right: prop.Value}
			if cond == nil {
				cond = test
			} else {
				cond = &ast.Binary{Op: "&&", Left: cond, Right: test}
			}
		}
		if cond == nil {
			return &ast.BoolLit{Value: true}, nil
		}
		return cond, nil
	}
	return &ast.Binary{Op: "===", Left: subject(), Right: key}, nil
}

// fieldOf builds the access of prop's key on subject.
func fieldOf(subject ast.Expr, prop *ast.Property) ast.Expr {
	if id, ok := prop.Key.(*ast.Ident); ok && !prop.Computed {
		return ast.Dot(subject, id.Name)
	}
	return &ast.Member{Object: subject, Property: prop.Key, Computed: true}
}

// parseRange reads "start..end". Each bound is read like JavaScript's
// parseInt: the leading integer is taken and the rest ignored, so "1.5..3.5"
// is the range 1..3. A bound without leading digits makes the key a plain
// string.
func parseRange(s string) (int, int, bool) {
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return 0, 0, false
	}
	start, ok := leadingInt(lo)
	if !ok {
		return 0, 0, false
	}
	end, ok := leadingInt(hi)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n := 0
	if n < len(s) && (s[n] == '+' || s[n] == '-') {
		n++
	}
	digits := n
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, false
	}
	return v, true
}

func intLit(n int) ast.Expr {
	if n < 0 {
		return &ast.Unary{Op: "-", X: ast.Num(strconv.Itoa(-n))}
	}
	return ast.Num(strconv.Itoa(n))
}

// noMatch is `(() => { throw new Error("No match found"); })()`.
func noMatch() ast.Expr {
	throw := &ast.Throw{Arg: &ast.New{Callee: ast.ID("Error"), Args: []ast.Expr{ast.Str(NoMatchMessage)}}}
	return ast.CallOf(&ast.Arrow{Params: []ast.Expr{}, Block: &ast.Block{Body: []ast.Stmt{throw}}})
}

// LowerUpdate rewrites `withUpdate(base, patch)`. An object literal patch
// is inlined after a spread of base, keeping its entries in order so they
// shadow base keys; any other patch is spread as a whole.
func LowerUpdate(e ast.Expr) (ast.Expr, bool, error) {
	call, ok := e.(*ast.Call)
	if !ok || !ast.IsIdent(call.Callee, "withUpdate") {
		return nil, false, nil
	}
	if len(call.Args) != 2 {
		return nil, false, malformed(FeatureUpdate, CodeUpdateArity,
			"withUpdate takes a base and a patch, got %d argument(s)", len(call.Args))
	}
	base, patch := call.Args[0], call.Args[1]

	out := &ast.ObjectLit{Entries: []ast.ObjectEntry{&ast.Spread{Arg: base}}}
	if obj, ok := patch.(*ast.ObjectLit); ok {
		out.Entries = append(out.Entries, obj.Entries...)
	} else {
		out.Entries = append(out.Entries, &ast.Spread{Arg: patch})
	}
	return out, true, nil
}

// LowerQuery rewrites a comma expression that spells a query into its
// method chain.
func LowerQuery(e ast.Expr) (ast.Expr, bool, error) {
	seq, ok := e.(*ast.Sequence)
	if !ok || !queryir.MatchSequence(seq) {
		return nil, false, nil
	}
	d, errs := queryir.FromSequence(seq)
	return buildQuery(d, errs)
}

// LowerQueryObject rewrites an object literal that spells a query into its
// method chain. Only variable initializers are offered to it.
func LowerQueryObject(e ast.Expr) (ast.Expr, bool, error) {
	obj, ok := e.(*ast.ObjectLit)
	if !ok || !queryir.MatchObject(obj) {
		return nil, false, nil
	}
	d, errs := queryir.FromObject(obj)
	return buildQuery(d, errs)
}

func buildQuery(d *queryir.Descriptor, errs []queryir.ValidationError) (ast.Expr, bool, error) {
	if len(errs) > 0 {
		return nil, false, queryError(errs)
	}
	chain, err := querychain.Build(d)
	if err != nil {
		return nil, false, malformed(FeatureQuery, CodeQueryClause, "%v", err)
	}
	return chain, true, nil
}

// describe names an expression's shape for error messages.
func describe(e ast.Expr) string {
	switch e.(type) {
	case *ast.Ident:
		return "an identifier"
	case *ast.StringLit, *ast.NumberLit, *ast.BoolLit, *ast.NullLit, *ast.TemplateLit:
		return "a literal"
	case *ast.ArrayLit:
		return "an array literal"
	case *ast.Arrow, *ast.Func:
		return "a function"
	case *ast.Call, *ast.New:
		return "a call"
	case *ast.Spread:
		return "a spread"
	}
	return "an expression"
}
