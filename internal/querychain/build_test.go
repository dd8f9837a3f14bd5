package querychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/printer"
	"github.com/roach88/cscript/internal/queryir"
)

func TestBuild(t *testing.T) {
	d := &queryir.Descriptor{
		Source:  ast.ID("users"),
		Binding: "u",
		Where: []queryir.Where{
			{Pred: queryir.Operand{Expr: ast.Dot(ast.ID("u"), "active")}},
			{Pred: queryir.Operand{Expr: ast.Lambda("v", ast.Dot(ast.ID("v"), "ok")), Lambda: true}},
		},
		GroupBy: &queryir.GroupBy{Key: queryir.Operand{Expr: ast.Dot(ast.ID("u"), "team")}},
		OrderBy: &queryir.OrderBy{Key: queryir.Operand{Expr: ast.Dot(ast.ID("u"), "name")}},
		Select:  &queryir.Select{Projection: queryir.Operand{Expr: ast.ID("u")}},
	}

	chain, err := Build(d)
	require.NoError(t, err)
	assert.Equal(t,
		"from(users).where(u => u.active).where(v => v.ok).groupBy(u => u.team).orderBy(u => u.name).select(u => u).toArray()",
		printer.PrintExpr(chain))
}

func TestBuild_SelectOnly(t *testing.T) {
	d := &queryir.Descriptor{
		Source:  ast.CallOf(ast.ID("load")),
		Binding: "x",
		Select:  &queryir.Select{Projection: queryir.Operand{Expr: ast.ID("x")}},
	}
	chain, err := Build(d)
	require.NoError(t, err)
	assert.Equal(t, "from(load()).select(x => x).toArray()", printer.PrintExpr(chain))
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)

	_, err = Build(&queryir.Descriptor{Binding: "x"})
	assert.ErrorContains(t, err, "source")

	_, err = Build(&queryir.Descriptor{Source: ast.ID("xs")})
	assert.ErrorContains(t, err, "binding")
}
