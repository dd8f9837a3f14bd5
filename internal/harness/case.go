package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cscript/internal/transform"
)

// Case is one conformance case: a CScript input and what transpiling it
// must produce.
//
// Exactly one outcome is checked: Error when set, else Expect when set,
// else the golden file next to the case.
type Case struct {
	// Name uniquely identifies the case; it also names the golden file.
	Name string `yaml:"name"`

	// Description says what the case pins down.
	Description string `yaml:"description"`

	// Features overrides the default toggles by csconfig name, e.g.
	// `pipelineOperators: false` or `enhancedTypes: true`.
	Features map[string]bool `yaml:"features,omitempty"`

	// Input is the CScript source.
	Input string `yaml:"input"`

	// Expect is the exact expected JavaScript.
	Expect *string `yaml:"expect,omitempty"`

	// Contains lists substrings the output must contain.
	Contains []string `yaml:"contains,omitempty"`

	// Stats is a subset match on the per-feature lowering counts.
	Stats map[string]int `yaml:"stats,omitempty"`

	// Error expects the transpile to fail.
	Error *ExpectError `yaml:"error,omitempty"`

	// SkipIdempotence disables the re-transpile check for inputs whose
	// output is known to still hold sugar.
	SkipIdempotence bool `yaml:"skip_idempotence,omitempty"`

	// Path is the file the case was loaded from.
	Path string `yaml:"-"`
}

// ExpectError describes an expected failure.
type ExpectError struct {
	// Code is the stable error code, e.g. "E203".
	Code string `yaml:"code"`

	// Contains is a substring of the error message.
	Contains string `yaml:"contains,omitempty"`
}

// Toggles resolves the case's feature overrides against the defaults.
func (c *Case) Toggles() (transform.Features, error) {
	return transform.DefaultFeatures().Override(c.Features)
}

// LoadCase reads and validates a case file. Unknown fields are rejected so
// a misspelled key fails loudly.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("invalid case: %w", err)
	}
	c.Path = path
	return &c, nil
}

func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", c.Name)
	}
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input is required")
	}
	if c.Error != nil {
		if c.Error.Code == "" {
			return fmt.Errorf("error.code is required")
		}
		if c.Expect != nil || len(c.Contains) > 0 || len(c.Stats) > 0 {
			return fmt.Errorf("error cannot be combined with expect, contains or stats")
		}
	}
	if _, err := c.Toggles(); err != nil {
		return err
	}
	for name := range c.Stats {
		if _, err := transform.ParseFeature(name); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
	}
	return nil
}

// FindCases returns the YAML case files under dir in lexical order. A
// non-empty filter is a glob matched against the file name without its
// extension.
func FindCases(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == GoldenDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}
