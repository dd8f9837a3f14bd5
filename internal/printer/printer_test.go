package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/syntax"
)

func TestPrint_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"precedence kept", "a + b * c;", "a + b * c;\n"},
		{"parentheses kept", "(a + b) * c;", "(a + b) * c;\n"},
		{"redundant parentheses dropped", "((a));", "a;\n"},
		{"exponent right assoc", "a ** b ** c;", "a ** b ** c;\n"},
		{"exponent left group", "(a ** b) ** c;", "(a ** b) ** c;\n"},
		{"nullish mixed", "(a || b) ?? c;", "(a || b) ?? c;\n"},
		{"single quotes", "const s = 'it\\'s';", "const s = \"it's\";\n"},
		{"arrow object body", "const f = () => ({ a: 1 });", "const f = () => ({ a: 1 });\n"},
		{"object statement", "({ a } = b);", "({ a } = b);\n"},
		{"member of number", "(1).toString();", "(1).toString();\n"},
		{"new with call callee", "new (f())();", "new (f())();\n"},
		{"spread", "f(...xs, [...ys]);", "f(...xs, [...ys]);\n"},
		{"unary", "!a && -(-b) && typeof c;", "!a && - -b && typeof c;\n"},
		{"conditional", "a ? b : c ? d : e;", "a ? b : c ? d : e;\n"},
		{"iife", "(x => x)(1);", "(x => x)(1);\n"},
		{"shorthand and computed", "const o = { a, [k]: 1, \"b-c\": 2 };", "const o = { a, [k]: 1, \"b-c\": 2 };\n"},
		{"template", "const t = `hi ${name}`;", "const t = `hi ${name}`;\n"},
		{"empty object", "const o = {};", "const o = {};\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := syntax.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Print(prog))
		})
	}
}

func TestPrint_Statements(t *testing.T) {
	src := `
class Point extends Base {
  static origin = null;
  constructor(x, y) { super(); this.x = x; }
  get norm() { return this.x; }
}
function f(a, b = 2, ...rest) {
  for (let i = 0; i < a; i++) { continue; }
  for (const x of rest) {}
  while (b) b--;
  if (a) return 1;
  else return;
}
`
	want := `class Point extends Base {
  static origin = null;
  constructor(x, y) {
    super();
    this.x = x;
  }
  get norm() {
    return this.x;
  }
}
function f(a, b = 2, ...rest) {
  for (let i = 0; i < a; i++) {
    continue;
  }
  for (const x of rest) {}
  while (b) b--;
  if (a) return 1;
  else return;
}
`
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, want, Print(prog))
}

func TestPrint_Idempotent(t *testing.T) {
	src := "const r = ((v) => v === 1 ? \"one\" : (() => {\n  throw new Error(\"No match found\");\n})())(n);\n"
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	first := Print(prog)

	again, err := syntax.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, Print(again))
	assert.True(t, ast.Equal(prog, again))
}

func TestPrintExpr_Synthesized(t *testing.T) {
	e := ast.MethodCall(ast.ID("Vector"), "$operator_plus", ast.ID("a"), ast.ID("b"))
	assert.Equal(t, "Vector.$operator_plus(a, b)", PrintExpr(e))

	seq := &ast.Sequence{Exprs: []ast.Expr{ast.ID("a"), ast.ID("b")}}
	call := ast.CallOf(ast.ID("f"), seq)
	assert.Equal(t, "f((a, b))", PrintExpr(call))

	neg := &ast.Binary{Op: ">=", Left: ast.ID("x"), Right: &ast.Unary{Op: "-", X: ast.Num("5")}}
	assert.Equal(t, "x >= -5", PrintExpr(neg))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\n\t"`, Quote("a\"b\\c\n\t"))
	assert.Equal(t, `"\x01"`, Quote("\x01"))
	assert.Equal(t, `"café"`, Quote("café"))
}
