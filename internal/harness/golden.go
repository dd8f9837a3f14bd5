package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is the directory, next to the case files, holding golden
// outputs.
const GoldenDir = "golden"

// GoldenPath returns the golden file of a case: golden/<name>.golden in
// the directory of the case file.
func GoldenPath(c *Case) string {
	return filepath.Join(filepath.Dir(c.Path), GoldenDir, c.Name+".golden")
}

// UpdateGolden writes the result snapshot as the case's golden file.
func UpdateGolden(c *Case, r *Result) error {
	path := GoldenPath(c)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, r.Snapshot(), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the snapshot equals the golden file. A
// missing golden file is an error.
func CompareGolden(c *Case, r *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(c))
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, r.Snapshot()), nil
}

// RunWithGolden runs c and compares its snapshot against GoldenPath(c).
// Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, c *Case) (*Result, error) {
	t.Helper()

	r, err := Run(c)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Dir(GoldenPath(c))),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, c.Name, r.Snapshot())
	return r, nil
}
