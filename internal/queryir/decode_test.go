package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/syntax"
)

func parseSequence(t *testing.T, src string) *ast.Sequence {
	t.Helper()
	e, err := syntax.ParseExpr(src)
	require.NoError(t, err)
	seq, ok := e.(*ast.Sequence)
	require.True(t, ok, "not a comma expression: %s", src)
	return seq
}

func parseObject(t *testing.T, src string) *ast.ObjectLit {
	t.Helper()
	e, err := syntax.ParseExpr("(" + src + ")")
	require.NoError(t, err)
	obj, ok := e.(*ast.ObjectLit)
	require.True(t, ok, "not an object literal: %s", src)
	return obj
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestMatchSequence(t *testing.T) {
	assert.True(t, MatchSequence(parseSequence(t, "from, x, in, xs, select, x")))
	assert.True(t, MatchSequence(parseSequence(t, "select, from, in")))
	assert.False(t, MatchSequence(parseSequence(t, "a, b, c")))
	assert.False(t, MatchSequence(parseSequence(t, "from, in")))
	assert.False(t, MatchSequence(parseSequence(t, "from, x, in, xs, where, x")))
	assert.False(t, MatchSequence(nil))
}

func TestFromSequence(t *testing.T) {
	seq := parseSequence(t, "from, u, in, users, where, u.active, where, u.age > 18, groupby, u.team, orderby, u.name, select, u.name")
	d, errs := FromSequence(seq)
	require.Empty(t, errs)

	assert.Equal(t, EncodingSequence, d.Encoding)
	assert.Equal(t, "u", d.Binding)
	assert.True(t, ast.IsIdent(d.Source, "users"))
	require.Len(t, d.Where, 2)
	assert.False(t, d.Where[0].Pred.Lambda)
	require.NotNil(t, d.GroupBy)
	require.NotNil(t, d.OrderBy)
	require.NotNil(t, d.Select)

	clauses := d.Clauses()
	require.Len(t, clauses, 5)
	assert.IsType(t, Where{}, clauses[0])
	assert.IsType(t, Where{}, clauses[1])
	assert.IsType(t, GroupBy{}, clauses[2])
	assert.IsType(t, OrderBy{}, clauses[3])
	assert.IsType(t, Select{}, clauses[4])
}

func TestFromSequence_ClauseOrderIsFixed(t *testing.T) {
	d, errs := FromSequence(parseSequence(t, "select, x * 2, orderby, x, from, x, in, xs"))
	require.Empty(t, errs)

	clauses := d.Clauses()
	require.Len(t, clauses, 2)
	assert.IsType(t, OrderBy{}, clauses[0])
	assert.IsType(t, Select{}, clauses[1])
}

func TestFromSequence_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"missing source", "from, x, in, select, x", []string{ErrMissingSource}},
		{"missing binding", "from, 1, in, xs, select, 2", []string{ErrMissingBinding}},
		{"dangling keyword", "from, x, in, xs, select", []string{ErrMissingOperand, ErrMissingProjection}},
		{"duplicate select", "from, x, in, xs, select, x, select, x", []string{ErrDuplicateClause}},
		{"duplicate from", "from, x, in, a, from, y, in, b, select, y", []string{ErrDuplicateClause}},
		{"stray term", "from, x, in, xs, 42, select, x", []string{ErrUnexpectedTerm}},
		{"unknown word", "from, x, in, xs, limit, select, x", []string{ErrUnexpectedTerm}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := FromSequence(parseSequence(t, tt.src))
			assert.Equal(t, tt.want, codes(errs))
		})
	}
}

func TestFromSequence_DuplicateFromKeepsFirst(t *testing.T) {
	d, errs := FromSequence(parseSequence(t, "from, x, in, a, from, y, in, b, select, x"))
	assert.Equal(t, []string{ErrDuplicateClause}, codes(errs))
	assert.True(t, ast.IsIdent(d.Source, "a"))
	assert.Equal(t, "x", d.Binding)
}

func TestMatchObject(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"{ from: xs, select: x => x }", true},
		{"{ from: xs, where: x => x, orderBy: x => x, groupBy: x => x, select: x => x }", true},
		{"{ from: xs }", false},
		{"{ from: xs, select: x => x, limit: 10 }", false},
		{"{ from: xs, select }", false},
		{"{ ...base, from: xs, select: x => x }", false},
		{"{ [from]: xs, select: x => x }", false},
		{"{ from: xs, select(x) { return x; } }", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchObject(parseObject(t, tt.src)))
		})
	}
}

func TestFromObject(t *testing.T) {
	obj := parseObject(t, "{ from: people, where: [p => p.age >= 18, p.active], orderBy: p => p.name, select: p.name }")
	d, errs := FromObject(obj)
	require.Empty(t, errs)

	assert.Equal(t, EncodingObject, d.Encoding)
	assert.Equal(t, "p", d.Binding)
	require.Len(t, d.Where, 2)
	assert.True(t, d.Where[0].Pred.Lambda)
	assert.False(t, d.Where[1].Pred.Lambda)
	assert.True(t, d.OrderBy.Key.Lambda)
	assert.False(t, d.Select.Projection.Lambda)
}

func TestFromObject_Errors(t *testing.T) {
	_, errs := FromObject(parseObject(t, "{ from: xs, select: 1 }"))
	assert.Equal(t, []string{ErrMissingBinding}, codes(errs))

	_, errs = FromObject(parseObject(t, "{ from: xs, where: [...preds], select: x => x }"))
	assert.Equal(t, []string{ErrUnexpectedTerm}, codes(errs))

	_, errs = FromObject(parseObject(t, "{ from: xs, from: ys, select: x => x }"))
	assert.Equal(t, []string{ErrDuplicateClause}, codes(errs))
}

func TestValidate(t *testing.T) {
	errs := Validate(&Descriptor{})
	assert.Equal(t, []string{ErrMissingSource, ErrMissingBinding, ErrMissingProjection}, codes(errs))

	errs = Validate(nil)
	assert.Equal(t, []string{ErrMissingSource}, codes(errs))

	d := &Descriptor{
		Source:  ast.ID("xs"),
		Binding: "x",
		Where:   []Where{{}},
		Select:  &Select{Projection: Operand{Expr: ast.ID("x")}},
	}
	errs = Validate(d)
	require.Len(t, errs, 1)
	assert.Equal(t, "where[0]", errs[0].Field)
	assert.Equal(t, "[Q004] where[0]: empty predicate", errs[0].Error())
}

func TestLambdaParam(t *testing.T) {
	for src, want := range map[string]string{"x => x": "x", "(y) => y": "y"} {
		e, err := syntax.ParseExpr(src)
		require.NoError(t, err)
		got, ok := LambdaParam(e)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	for _, src := range []string{"(a, b) => a", "({ a }) => a", "f"} {
		e, err := syntax.ParseExpr(src)
		require.NoError(t, err)
		_, ok := LambdaParam(e)
		assert.False(t, ok, src)
	}
}
