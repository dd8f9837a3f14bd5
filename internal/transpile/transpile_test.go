package transpile

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/syntax"
	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/typeinfer"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func TestTranspile(t *testing.T) {
	out, err := Transpile("const r = [1, 2, 3] |> sum;", quiet)
	require.NoError(t, err)
	assert.Equal(t, "const r = sum([1, 2, 3]);\n", out.Code)
	assert.Equal(t, 1, out.Result.Stats[transform.FeaturePipeline])
}

func TestTranspile_ParseError(t *testing.T) {
	_, err := Transpile("const = 1;", quiet)
	require.Error(t, err)

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageParse, te.Stage)
	assert.Equal(t, syntax.CodeParse, Code(err))
	assert.Contains(t, err.Error(), "parse: 1:")

	var se *syntax.Error
	assert.True(t, errors.As(err, &se))
}

func TestTranspile_ScanError(t *testing.T) {
	_, err := Transpile("const a = @;", quiet)
	require.Error(t, err)
	assert.Equal(t, syntax.CodeScan, Code(err))
}

func TestTranspile_TransformError(t *testing.T) {
	_, err := Transpile("const r = s.match(table);", quiet)
	require.Error(t, err)

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageTransform, te.Stage)
	assert.Equal(t, transform.CodeMatchArgument, Code(err))
	assert.True(t, transform.IsMalformed(err))
}

func TestTranspile_Options(t *testing.T) {
	src := "x |> f;"

	off := transform.DefaultFeatures().With(transform.FeaturePipeline, false)
	out, err := Transpile(src, quiet, WithFeatures(off))
	require.NoError(t, err)
	assert.Equal(t, "x |> f;\n", out.Code)

	src = "class Money { static $operator_plus(a, b) { return a; } }\nconst t = money + y;\n"
	out, err = Transpile(src, quiet)
	require.NoError(t, err)
	assert.Contains(t, out.Code, "const t = Money.$operator_plus(money, y);")

	blind := func([]string, *ast.Program) typeinfer.Inferrer { return typeinfer.NewHeuristic(nil) }
	out, err = Transpile(src, quiet, WithInferrer(blind))
	require.NoError(t, err)
	assert.Contains(t, out.Code, "const t = money + y;")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(errors.New("plain")))
	assert.Equal(t, "E203", Code(&Error{Stage: StageTransform, Code: "E203", Err: errors.New("x")}))
}
