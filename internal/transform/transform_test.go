package transform

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/printer"
	"github.com/roach88/cscript/internal/syntax"
	"github.com/roach88/cscript/internal/typeinfer"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// lower parses src, transforms it with opts and prints the result.
func lower(t *testing.T, src string, opts ...Option) (string, *Result) {
	t.Helper()
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	res, err := New(append([]Option{WithLogger(quiet())}, opts...)...).Transform(prog)
	require.NoError(t, err)
	return printer.Print(res.Program), res
}

func lowerErr(t *testing.T, src string, opts ...Option) *Error {
	t.Helper()
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	_, err = New(append([]Option{WithLogger(quiet())}, opts...)...).Transform(prog)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	te, ok := AsError(err)
	require.True(t, ok)
	return te
}

func TestTransform_SugarFreeIsIdentity(t *testing.T) {
	src := `const total = items.reduce((a, b) => a + b, 0);
class Point {
  constructor(x) {
    this.x = x;
  }
  get x2() {
    return this.x * 2;
  }
}
for (const p of points) {
  if (p.x > 0) {
    console.log(p);
  }
}
`
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	before := printer.Print(prog)

	out, res := lower(t, src)
	assert.Equal(t, before, out)
	assert.Zero(t, res.Total())
	assert.Empty(t, res.Overloads)
}

func TestTransform_Pipeline(t *testing.T) {
	tests := []struct {
		src  string
		want string
		n    int
	}{
		{"x |> f;", "f(x);\n", 1},
		{"x |> double |> square;", "square(double(x));\n", 2},
		{"a + b |> f;", "f(a + b);\n", 1},
		{"x |> obj.method;", "obj.method(x);\n", 1},
		{"x |> (y => y * 2);", "(y => y * 2)(x);\n", 1},
		{"const r = data |> parse |> (d => d.items);", "const r = (d => d.items)(parse(data));\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, res := lower(t, tt.src)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.n, res.Stats[FeaturePipeline])
		})
	}
}

func TestTransform_PipelineIntoCallRules(t *testing.T) {
	out, res := lower(t, `const r = { 1: "one", _: "many" } |> n.match;`)
	assert.Contains(t, out, `const r = (__matchValue => __matchValue === 1 ? "one" : true ? "many"`)
	assert.Contains(t, out, "})())(n);")
	assert.Equal(t, 1, res.Stats[FeaturePipeline])
	assert.Equal(t, 1, res.Stats[FeatureMatch])

	err := lowerErr(t, "const p = point |> withUpdate;")
	assert.Equal(t, CodeUpdateArity, err.Code)

	second, _ := lower(t, out)
	assert.Equal(t, out, second)
}

func TestTransform_Match(t *testing.T) {
	out, res := lower(t, `const s = code.match({ 200: "ok", "404": "missing", _: "other" });`)
	assert.Equal(t,
		`const s = (__matchValue => __matchValue === 200 ? "ok" : __matchValue === "404" ? "missing" : true ? "other" : (() => {
  throw new Error("No match found");
})())(code);
`, out)
	assert.Equal(t, 1, res.Stats[FeatureMatch])
}

func TestTransform_MatchRanges(t *testing.T) {
	out, _ := lower(t, `const c = t.match({ "-10..0": "cold", "1..20": "mild", "abc": "text" });`)
	assert.Contains(t, out, "__matchValue >= -10 && __matchValue <= 0 ? \"cold\"")
	assert.Contains(t, out, "__matchValue >= 1 && __matchValue <= 20 ? \"mild\"")
	assert.Contains(t, out, `__matchValue === "abc" ? "text"`)
}

func TestTransform_MatchFractionalRange(t *testing.T) {
	out, _ := lower(t, `const r = x.match({ "1.5..3.5": "mid", _: "other" });`)
	assert.Contains(t, out, `__matchValue >= 1 && __matchValue <= 3 ? "mid"`)
	assert.NotContains(t, out, `"1.5..3.5"`)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		key        string
		start, end int
		ok         bool
	}{
		{"90..100", 90, 100, true},
		{"-10..0", -10, 0, true},
		{" 1 .. 5 ", 1, 5, true},
		{"1.5..3.5", 1, 3, true},
		{"2px..10px", 2, 10, true},
		{"+3..7", 3, 7, true},
		{"a..b", 0, 0, false},
		{"1..", 0, 0, false},
		{"..4", 0, 0, false},
		{"-..4", 0, 0, false},
		{"12", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			start, end, ok := parseRange(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestTransform_MatchObjectPattern(t *testing.T) {
	out, _ := lower(t, `const r = shape.match({ [{ kind: "circle", "r": 1 }]: "unit", [{}]: "any" });`)
	assert.Contains(t, out, `__matchValue.kind === "circle" && __matchValue["r"] === 1 ? "unit"`)
	assert.Contains(t, out, `true ? "any"`)
}

func TestTransform_MatchComputedKey(t *testing.T) {
	out, _ := lower(t, `const r = v.match({ [LIMIT]: "limit", [_]: "underscore" });`)
	assert.Contains(t, out, `__matchValue === LIMIT ? "limit"`)
	assert.Contains(t, out, `__matchValue === _ ? "underscore"`)
}

func TestTransform_MatchTempsAreUnique(t *testing.T) {
	out, res := lower(t, `
const a = x.match({ 1: "a" });
const b = y.match({ 1: z.match({ 2: "c" }) });
`)
	assert.Contains(t, out, "(__matchValue => __matchValue === 1")
	assert.Contains(t, out, "(__matchValue1 => __matchValue1 === 2")
	assert.Contains(t, out, "(__matchValue2 => __matchValue2 === 1")
	assert.Equal(t, 3, res.Stats[FeatureMatch])
}

func TestTransform_MatchNotApplicable(t *testing.T) {
	for _, in := range []string{
		"const a = s.match();\n",
		"const a = s.match(x, y);\n",
		"const a = s[\"match\"]({ 1: 2 });\n",
		"const a = match({ 1: 2 });\n",
	} {
		out, res := lower(t, in)
		assert.Equal(t, in, out)
		assert.Zero(t, res.Stats[FeatureMatch])
	}
}

func TestTransform_MatchErrors(t *testing.T) {
	err := lowerErr(t, `const r = s.match(handlers);`)
	assert.Equal(t, CodeMatchArgument, err.Code)
	assert.Equal(t, FeatureMatch, err.Feature)
	assert.Contains(t, err.Message, "an identifier")

	err = lowerErr(t, `const r = s.match({ ...base, 1: "a" });`)
	assert.Equal(t, CodeMatchPattern, err.Code)

	err = lowerErr(t, `const r = s.match({ f() { return 1; } });`)
	assert.Equal(t, CodeMatchPattern, err.Code)

	err = lowerErr(t, `const r = s.match({ [{ ...o }]: 1 });`)
	assert.Equal(t, CodeMatchPattern, err.Code)
}

func TestTransform_Update(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"const p2 = withUpdate(p, { x: 1, y: p.y });", "const p2 = { ...p, x: 1, y: p.y };\n"},
		{"const p2 = withUpdate(p, patch);", "const p2 = { ...p, ...patch };\n"},
		{"const p2 = withUpdate(p, {});", "const p2 = { ...p };\n"},
		{"const p2 = withUpdate(p, { ...a, b });", "const p2 = { ...p, ...a, b };\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, res := lower(t, tt.src)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, 1, res.Stats[FeatureUpdate])
		})
	}

	for _, src := range []string{"withUpdate(a);", "withUpdate(a, b, c);", "withUpdate();"} {
		err := lowerErr(t, src)
		assert.Equal(t, CodeUpdateArity, err.Code, src)
	}
}

func TestTransform_QuerySequence(t *testing.T) {
	out, res := lower(t, "const adults = (from, p, in, people, where, p.age >= 18, orderby, p.name, select, p.name);")
	assert.Equal(t,
		"const adults = from(people).where(p => p.age >= 18).orderBy(p => p.name).select(p => p.name).toArray();\n",
		out)
	assert.Equal(t, 1, res.Stats[FeatureQuery])
}

func TestTransform_QueryObject(t *testing.T) {
	out, res := lower(t, "const teams = { from: users, groupBy: u => u.team, select: g => g };")
	assert.Equal(t, "const teams = from(users).groupBy(u => u.team).select(g => g).toArray();\n", out)
	assert.Equal(t, 1, res.Stats[FeatureQuery])

	// Outside a variable initializer the object form is a plain object.
	out, res = lower(t, "f({ from: users, select: u => u });")
	assert.Equal(t, "f({ from: users, select: u => u });\n", out)
	assert.Zero(t, res.Stats[FeatureQuery])
}

func TestTransform_QueryErrors(t *testing.T) {
	tests := []struct {
		src  string
		code string
	}{
		{"const q = (from, x, in, select, x);", CodeQuerySource},
		{"const q = (from, 1, in, xs, select, 1);", CodeQueryBinding},
		{"const q = (from, x, in, xs, select);", CodeQueryProjection},
		{"const q = (from, x, in, xs, select, x, select, x);", CodeQueryClause},
		{"const q = (from, x, in, xs, 7, select, x);", CodeQueryClause},
		{"const q = (from, x, in, a, from, y, in, b, select, y);", CodeQueryClause},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			err := lowerErr(t, tt.src)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, FeatureQuery, err.Feature)
		})
	}
}

func TestTransform_Overloads(t *testing.T) {
	src := `const sum = v1 + v2;
const scaled = 2 * velocityVector;
const plain = a + b;
const same = v1 === v2;
class Vector {
  static $operator_plus(a, b) {
    return new Vector(a.x + b.x, a.y + b.y);
  }
  static $operator_multiply(a, b) {
    return a;
  }
}
`
	out, res := lower(t, src)
	assert.Contains(t, out, "const sum = Vector.$operator_plus(v1, v2);")
	assert.Contains(t, out, "const scaled = Vector.$operator_multiply(2, velocityVector);")
	assert.Contains(t, out, "const plain = a + b;")
	assert.Contains(t, out, "const same = v1 === v2;")
	assert.Contains(t, out, "return new Vector(a.x + b.x, a.y + b.y);")
	assert.Equal(t, 2, res.Stats[FeatureOverload])
	assert.Len(t, res.Overloads, 2)
}

func TestTransform_OverloadInferrers(t *testing.T) {
	src := `class Money {
  static $operator_plus(a, b) {
    return a;
  }
}
const price = new Money(5);
const total = price + tax;
`
	out, _ := lower(t, src)
	assert.Contains(t, out, "const total = price + tax;", "naming heuristic cannot see the binding")

	enhanced := DefaultFeatures()
	enhanced.EnhancedTypes = true
	out, _ = lower(t, src, WithFeatures(enhanced))
	assert.Contains(t, out, "const total = Money.$operator_plus(price, tax);")

	always := func(known []string, _ *ast.Program) typeinfer.Inferrer { return fixed("Money") }
	out, _ = lower(t, src, WithInferrer(always))
	assert.Contains(t, out, "const total = Money.$operator_plus(price, tax);")
}

type fixed string

func (f fixed) InferType(ast.Expr) string { return string(f) }

func TestTransform_PipelineIntoOverload(t *testing.T) {
	src := `class Vector {
  static $operator_plus(a, b) {
    return a;
  }
}
const r = v1 + v2 |> normalize;
`
	out, res := lower(t, src)
	assert.Contains(t, out, "const r = normalize(Vector.$operator_plus(v1, v2));")
	assert.Equal(t, 1, res.Stats[FeaturePipeline])
	assert.Equal(t, 1, res.Stats[FeatureOverload])
}

func TestTransform_Properties(t *testing.T) {
	src := `class Person {
  name = { get; set; };
  age = { get; };
  get age() {
    return this._age ?? 0;
  }
  static count = { get; set; };
  label = "x";
  options = { get: true };
  get id() {
    return this._id;
  }
}
`
	out, res := lower(t, src)
	want := `class Person {
  get name() {
    return this._name;
  }
  set name(value) {
    this._name = value;
  }
  set age(value) {
    this._age = value;
  }
  get age() {
    return this._age ?? 0;
  }
  static get count() {
    return this._count;
  }
  static set count(value) {
    this._count = value;
  }
  label = "x";
  get options() {
    return this._options;
  }
  set options(value) {
    this._options = value;
  }
  get id() {
    return this._id;
  }
}
`
	assert.Equal(t, want, out)
	assert.Equal(t, 4, res.Stats[FeatureProperty])
	assert.Equal(t, []PropertyOutcome{
		{Class: "Person", Name: "name", Outcome: OutcomeRewritten},
		{Class: "Person", Name: "age", Outcome: OutcomeRewritten},
		{Class: "Person", Name: "age", Kind: ast.MethodGet, Outcome: OutcomeDetectedNotRewritten},
		{Class: "Person", Name: "count", Static: true, Outcome: OutcomeRewritten},
		{Class: "Person", Name: "options", Outcome: OutcomeRewritten},
		{Class: "Person", Name: "id", Kind: ast.MethodGet, Outcome: OutcomeDetectedNotRewritten},
	}, res.Properties)
}

func TestIsPropertyDeclaration(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"{ get; set; }", true},
		{"{ get, set }", true},
		{"{ set; }", true},
		{"{ get: true }", true},
		{"{ get; set; extra: 1 }", true},
		{`{ "get": 1 }`, true},
		{"{}", false},
		{"{ value: 1 }", false},
		{"{ [get]: 1 }", false},
		{"{ ...get }", false},
		{"get", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			prog, err := syntax.Parse("class A { p = " + tt.value + "; }")
			require.NoError(t, err)
			prop := prog.Body[0].(*ast.ClassDecl).Members[0].(*ast.ClassProperty)
			assert.Equal(t, tt.want, IsPropertyDeclaration(prop))
		})
	}
}

func TestTransform_PropertyWithExtraKeys(t *testing.T) {
	out, res := lower(t, "class A {\n  name = { get; set; extra: 1 };\n}\n")
	assert.Equal(t, `class A {
  get name() {
    return this._name;
  }
  set name(value) {
    this._name = value;
  }
}
`, out)
	assert.NotContains(t, out, "get, set")
	assert.Equal(t, 1, res.Stats[FeatureProperty])
}

func TestTransform_FeatureToggles(t *testing.T) {
	src := `const a = x |> f;
const b = s.match({ 1: "one" });
const c = withUpdate(p, { x: 1 });
const d = (from, n, in, ns, select, n);
class P {
  v = { get; set; };
}
`
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	before := printer.Print(prog)

	var none Features
	out, res := lower(t, src, WithFeatures(none))
	assert.Equal(t, before, out)
	assert.Zero(t, res.Total())

	for _, f := range AllFeatures {
		if f == FeatureOverload {
			continue
		}
		only := none.With(f, true)
		_, res := lower(t, src, WithFeatures(only))
		assert.Equal(t, 1, res.Stats[f], f)
		assert.Equal(t, 1, res.Total(), f)
	}
}

func TestTransform_DisabledFeatureSkipsErrors(t *testing.T) {
	features := DefaultFeatures().With(FeatureUpdate, false)
	out, _ := lower(t, "withUpdate(a);", WithFeatures(features))
	assert.Equal(t, "withUpdate(a);\n", out)
}

func TestTransform_Idempotent(t *testing.T) {
	src := `class Vector {
  static $operator_plus(a, b) {
    return a;
  }
}
class Box {
  size = { get; set; };
}
const a = v1 + v2 |> f;
const b = n.match({ "1..5": "low", _: "high" });
const c = withUpdate(p, { y: 2 });
const d = (from, x, in, xs, where, x > 1, select, x);
const e = { from: ys, select: y => y.id };
`
	first, res := lower(t, src)
	require.NotZero(t, res.Total())

	second, res2 := lower(t, first)
	assert.Equal(t, first, second)
	assert.Zero(t, res2.Stats[FeaturePipeline]+res2.Stats[FeatureMatch]+res2.Stats[FeatureUpdate]+res2.Stats[FeatureQuery]+res2.Stats[FeatureProperty])
}

func TestTransform_LogsOverloadRegistration(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	prog, err := syntax.Parse("class V { static $operator_plus(a, b) { return a; } }\nv + v;")
	require.NoError(t, err)
	_, err = New(WithLogger(logger)).Transform(prog)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "registered operator overload")
	assert.Contains(t, logs.String(), "transform complete")
}

func TestResult_StatsLine(t *testing.T) {
	r := &Result{Stats: map[Feature]int{FeatureQuery: 1, FeaturePipeline: 2}}
	assert.Equal(t, "pipelineOperators=2 linqQueries=1", r.StatsLine())
	assert.Equal(t, 3, r.Total())
}
