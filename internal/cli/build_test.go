package cli

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/config"
)

func buildFixture() map[string]string {
	return map[string]string{
		"main.csc":                 "const y = x |> f;\n",
		"src/a.csc":                "const p = withUpdate(q, { x: 1 });\n",
		"src/nested/b.csc":         "const r = v |> g;\n",
		"src/notes.txt":            "not a source\n",
		"dist/stale.csc":           "stale |> skip;\n",
		"node_modules/lib/dep.csc": "dep |> skip;\n",
		"src/types.d.ts":           "declare const x: number;\n",
	}
}

func TestBuild_TranspilesProject(t *testing.T) {
	dir := newProject(t, "", buildFixture())

	out, err := execute(t, dir, "build")
	require.NoError(t, err)

	assert.Equal(t, "const y = f(x);\n", readFile(t, filepath.Join(dir, "dist", "main.js")))
	assert.Equal(t, "const p = { ...q, x: 1 };\n", readFile(t, filepath.Join(dir, "dist", "src", "a.js")))
	assert.Equal(t, "const r = g(v);\n", readFile(t, filepath.Join(dir, "dist", "src", "nested", "b.js")))
	assert.NoFileExists(t, filepath.Join(dir, "dist", "dist", "stale.js"))
	assert.NoFileExists(t, filepath.Join(dir, "dist", "node_modules", "lib", "dep.js"))

	assert.Contains(t, out, "✓ "+filepath.Join(dir, "main.csc")+" → "+filepath.Join(dir, "dist", "main.js"))
	assert.Contains(t, out, "Build Summary: 3 succeeded, 0 failed, 3 total")

	entries := journalEntries(t, dir)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, entries[0].RunID, e.RunID, "one run id per build")
	}
}

func TestBuild_FlatOutput(t *testing.T) {
	dir := newProject(t, `{"output": {"preserveStructure": false, "extension": ".mjs"}}`, map[string]string{
		"src/nested/b.csc": "v |> g;\n",
	})

	_, err := execute(t, dir, "build", "--no-journal")
	require.NoError(t, err)
	assert.Equal(t, "g(v);\n", readFile(t, filepath.Join(dir, "dist", "b.mjs")))
}

func TestBuild_OutDirFlag(t *testing.T) {
	dir := newProject(t, "", map[string]string{"main.csc": "v |> g;\n"})

	_, err := execute(t, dir, "build", "--out-dir", "build/js", "--no-journal")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "build", "js", "main.js"))
}

func TestBuild_ExplicitFiles(t *testing.T) {
	dir := newProject(t, `{"include": ["none/*.csc"], "files": ["lib/extra.csc"]}`, map[string]string{
		"main.csc":      "ignored |> f;\n",
		"lib/extra.csc": "extra |> f;\n",
	})

	out, err := execute(t, dir, "build", "--no-journal")
	require.NoError(t, err)
	assert.Contains(t, out, "Build Summary: 1 succeeded, 0 failed, 1 total")
	assert.FileExists(t, filepath.Join(dir, "dist", "lib", "extra.js"))
}

func TestBuild_ContinuesPastFailures(t *testing.T) {
	dir := newProject(t, "", map[string]string{
		"a.csc": "withUpdate(a);\n",
		"b.csc": "b |> f;\n",
	})

	out, err := execute(t, dir, "build")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ "+filepath.Join(dir, "a.csc"))
	assert.Contains(t, out, "  E203: ")
	assert.Contains(t, out, "Build Summary: 1 succeeded, 1 failed, 2 total")
	assert.NoFileExists(t, filepath.Join(dir, "dist", "a.js"))
	assert.FileExists(t, filepath.Join(dir, "dist", "b.js"))
	assert.Len(t, journalEntries(t, dir), 2)
}

func TestBuild_JSON(t *testing.T) {
	dir := newProject(t, "", map[string]string{
		"a.csc": "withUpdate(a);\n",
		"b.csc": "b |> f;\n",
	})

	out, err := execute(t, dir, "--format", "json", "build")
	require.Error(t, err)

	var result BuildResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_BUILD_FAILED", resp.Error.Code)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "E203", result.Files[0].ErrorCode)
	assert.Equal(t, "f(b);\n", result.Files[1].Code)
	assert.Equal(t, resp.RunID, result.RunID)
}

func TestBuild_NoSources(t *testing.T) {
	dir := newProject(t, "", map[string]string{"readme.md": "# nothing\n"})

	out, err := execute(t, dir, "build")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.csc", "a.csc", true},
		{"*.csc", "src/a.csc", false},
		{"src/**/*.csc", "src/a.csc", true},
		{"src/**/*.csc", "src/x/y/a.csc", true},
		{"src/**/*.csc", "lib/a.csc", false},
		{"**/*.d.ts", "a.d.ts", true},
		{"**/*.d.ts", "types/a.d.ts", true},
		{"dist/**", "dist/a/b.js", true},
		{"dist/**", "dist", true},
		{"dist/**", "distant/a.js", false},
		{"src/?.csc", "src/a.csc", true},
		{"[", "[", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchGlob(tt.pattern, tt.name))
		})
	}
}

func TestFindSources_SortedAndDeduplicated(t *testing.T) {
	dir := newProject(t, `{"include": ["**/*.csc"], "files": ["b.csc"]}`, map[string]string{
		"b.csc":          "b;\n",
		"a.csc":          "a;\n",
		"sub/c.csc":      "c;\n",
		".hidden/d.csc":  "d;\n",
		"dist/built.csc": "x;\n",
	})
	cfg, err := config.Load(filepath.Join(dir, "csconfig.json"))
	require.NoError(t, err)
	p := &project{cfg: cfg, root: dir}

	got, err := p.findSources()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csc"),
		filepath.Join(dir, "b.csc"),
		filepath.Join(dir, "sub", "c.csc"),
	}, got)
}

func TestFindSources_MissingExplicitFile(t *testing.T) {
	dir := newProject(t, `{"files": ["gone.csc"]}`, nil)
	cfg, err := config.Load(filepath.Join(dir, "csconfig.json"))
	require.NoError(t, err)
	p := &project{cfg: cfg, root: dir}

	_, err = p.findSources()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

