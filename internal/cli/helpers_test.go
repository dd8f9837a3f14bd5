package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cscript/internal/journal"
)

// newProject creates a temp project with the given csconfig.json content
// and files (path relative to the project root → content).
func newProject(t *testing.T, csconfig string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if csconfig == "" {
		csconfig = "{}"
	}
	writeFile(t, filepath.Join(dir, "csconfig.json"), csconfig)
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// execute runs the root command against the project in dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "csconfig.json")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON CLIResponse and decodes its data into v.
func decodeResponse(t *testing.T, raw string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	if v != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}
	return resp
}

// journalEntries lists what the project's default journal recorded.
func journalEntries(t *testing.T, dir string) []journal.Entry {
	t.Helper()
	j, err := journal.Open(filepath.Join(dir, ".cscript", "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	return entries
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
