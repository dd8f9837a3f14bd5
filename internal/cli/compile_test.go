package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/journal"
)

func TestCompile_PrintsCodeAndFeatures(t *testing.T) {
	dir := newProject(t, "", map[string]string{"app.csc": "const y = x |> f;\n"})

	out, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"))
	require.NoError(t, err)

	assert.Contains(t, out, "--- Transpiled JavaScript ---\nconst y = f(x);\n")
	assert.Contains(t, out, "Active features: pipelineOperators, operatorOverloading, matchExpressions, withUpdates, linqQueries, autoProperties\n")
}

func TestCompile_WritesOutputAndRecords(t *testing.T) {
	dir := newProject(t, "", map[string]string{"app.csc": "const y = x |> f;\n"})
	in := filepath.Join(dir, "app.csc")
	outFile := filepath.Join(dir, "out", "app.js")

	out, err := execute(t, dir, "compile", in, outFile)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Transpiled "+in+" → "+outFile)
	assert.NotContains(t, out, "--- Transpiled JavaScript ---")
	assert.Equal(t, "const y = f(x);\n", readFile(t, outFile))

	entries := journalEntries(t, dir)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.StatusOK, entries[0].Status)
	assert.Equal(t, in, entries[0].InputPath)
	assert.Equal(t, outFile, entries[0].OutputPath)
	assert.Equal(t, 1, entries[0].Stats["pipelineOperators"])
}

func TestCompile_OutputFlag(t *testing.T) {
	dir := newProject(t, "", map[string]string{"app.csc": "a |> b;\n"})
	outFile := filepath.Join(dir, "app.js")

	_, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"), "-o", outFile)
	require.NoError(t, err)
	assert.Equal(t, "b(a);\n", readFile(t, outFile))
}

func TestCompile_NoJournal(t *testing.T) {
	dir := newProject(t, "", map[string]string{"app.csc": "a |> b;\n"})

	_, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"), "--no-journal")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".cscript"))
	assert.True(t, os.IsNotExist(err), "journal directory should not exist")
}

func TestCompile_JournalDisabledInConfig(t *testing.T) {
	dir := newProject(t, `{"journal": {"enabled": false}}`, map[string]string{"app.csc": "a |> b;\n"})

	_, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".cscript"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompile_JSON(t *testing.T) {
	dir := newProject(t, "", map[string]string{"app.csc": "const y = x |> f;\n"})

	out, err := execute(t, dir, "--format", "json", "compile", filepath.Join(dir, "app.csc"))
	require.NoError(t, err)

	var result struct {
		Code     string         `json:"code"`
		Stats    map[string]int `json:"stats"`
		BuildID  string         `json:"build_id"`
		Features []string       `json:"features"`
	}
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "const y = f(x);\n", result.Code)
	assert.Equal(t, map[string]int{"pipelineOperators": 1}, result.Stats)
	assert.NotEmpty(t, result.BuildID)
	assert.Contains(t, result.Features, "linqQueries")
}

func TestCompile_TranspileError(t *testing.T) {
	dir := newProject(t, "", map[string]string{"bad.csc": "withUpdate(a);\n"})

	out, err := execute(t, dir, "compile", filepath.Join(dir, "bad.csc"))
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "E203", ErrorCode(err))
	assert.Contains(t, out, "Error [E203]")

	entries := journalEntries(t, dir)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.StatusError, entries[0].Status)
	assert.Equal(t, "E203", entries[0].ErrorCode)
	assert.Empty(t, entries[0].OutputPath)
}

func TestCompile_ParseErrorJSON(t *testing.T) {
	dir := newProject(t, "", map[string]string{"bad.csc": "const = 1;\n"})

	out, err := execute(t, dir, "--format", "json", "compile", filepath.Join(dir, "bad.csc"))
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "parse: 1:")
}

func TestCompile_MissingInput(t *testing.T) {
	dir := newProject(t, "", nil)

	out, err := execute(t, dir, "compile", filepath.Join(dir, "missing.csc"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E001]")
}

func TestCompile_FeatureToggleFromConfig(t *testing.T) {
	dir := newProject(t, `{"languageFeatures": {"pipelineOperators": false}}`,
		map[string]string{"app.csc": "const p = withUpdate(a, { x: 1 });\n"})

	out, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"))
	require.NoError(t, err)
	assert.Contains(t, out, "const p = { ...a, x: 1 };")
	assert.Contains(t, out, "Active features: operatorOverloading, matchExpressions")
	assert.NotContains(t, out, "pipelineOperators")
}

func TestCompile_BadConfig(t *testing.T) {
	dir := newProject(t, `{"languageFeatures": {"pipelineOperators": "yes"}}`,
		map[string]string{"app.csc": "a;\n"})

	out, err := execute(t, dir, "compile", filepath.Join(dir, "app.csc"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E303]")
}

func TestCompile_ArgCount(t *testing.T) {
	_, err := execute(t, t.TempDir(), "compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts between 1 and 2 arg")
}
