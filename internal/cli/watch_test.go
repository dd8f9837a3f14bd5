package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/config"
)

func loadTestProject(t *testing.T, dir string) *project {
	t.Helper()
	cfg, err := config.Load(filepath.Join(dir, "csconfig.json"))
	require.NoError(t, err)
	return &project{cfg: cfg, root: dir, logger: slog.Default()}
}

func TestWatch_RebuildsChangedSources(t *testing.T) {
	dir := newProject(t, "", map[string]string{"src/a.csc": "a |> f;\n"})
	p := loadTestProject(t, dir)

	out := &syncBuffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out}
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- p.watch(ctx, nil, formatter, 20*time.Millisecond, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watch ended early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}
	assert.Equal(t, "f(a);\n", readFile(t, filepath.Join(dir, "dist", "src", "a.js")))
	assert.Contains(t, out.String(), "Watching "+dir)

	writeFile(t, filepath.Join(dir, "src", "notes.txt"), "ignored\n")
	writeFile(t, filepath.Join(dir, "src", "b.csc"), "b |> g;\n")

	target := filepath.Join(dir, "dist", "src", "b.js")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(target)
		return err == nil && string(data) == "g(b);\n"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "Rebuilt 1 file(s), 0 failed")
	assert.NotContains(t, out.String(), "notes.txt")
	assert.NoFileExists(t, filepath.Join(dir, "dist", "src", "notes.js"))
}

func TestWatch_Watched(t *testing.T) {
	dir := newProject(t, "", nil)
	p := loadTestProject(t, dir)

	tests := []struct {
		path string
		want bool
	}{
		{"main.csc", true},
		{"src/deep/a.csc", true},
		{"src/notes.txt", false},
		{"lib/a.csc", false},
		{"dist/a.csc", false},
		{"src/types.d.ts", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.watched(filepath.Join(dir, filepath.FromSlash(tt.path))))
		})
	}
	assert.False(t, p.watched(filepath.Join(filepath.Dir(dir), "other.csc")), "outside the project")
}

func TestWatch_IgnoredDir(t *testing.T) {
	dir := newProject(t, `{"compilerOptions": {"outDir": "out"}, "watch": {"ignore": ["vendor"]}}`, nil)
	p := loadTestProject(t, dir)

	assert.True(t, p.ignoredDir(filepath.Join(dir, ".git")))
	assert.True(t, p.ignoredDir(filepath.Join(dir, "vendor")))
	assert.True(t, p.ignoredDir(filepath.Join(dir, "out")))
	assert.True(t, p.ignoredDir(filepath.Join(dir, "node_modules")), "excluded by node_modules/**")
	assert.False(t, p.ignoredDir(filepath.Join(dir, "src")))
}
