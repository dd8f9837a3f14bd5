// Package config loads csconfig.json (or csconfig.yaml), the per-project
// settings file of the cscript tool.
//
// The file is decoded into a CUE value, unified with an embedded schema and
// only then decoded into Go structs, so a misspelled key or a value of the
// wrong type is reported with its path instead of being silently ignored.
// A missing file is not an error: Default applies.
package config

import (
	"github.com/roach88/cscript/internal/transform"
)

// Config mirrors csconfig.json.
type Config struct {
	CompilerOptions  CompilerOptions  `json:"compilerOptions" yaml:"compilerOptions"`
	LanguageFeatures LanguageFeatures `json:"languageFeatures" yaml:"languageFeatures"`
	Transpilation    Transpilation    `json:"transpilation" yaml:"transpilation"`
	Include          []string         `json:"include" yaml:"include"`
	Exclude          []string         `json:"exclude" yaml:"exclude"`
	Files            []string         `json:"files" yaml:"files"`
	Watch            Watch            `json:"watch" yaml:"watch"`
	Output           Output           `json:"output" yaml:"output"`
	Journal          Journal          `json:"journal" yaml:"journal"`
	Requires         string           `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Path is the file the config was loaded from, "" for defaults.
	Path string `json:"-" yaml:"-"`
}

// CompilerOptions are carried for compatibility with existing project files.
// Only OutDir and SourceMap influence the tool.
type CompilerOptions struct {
	Target             string `json:"target" yaml:"target"`
	Module             string `json:"module" yaml:"module"`
	OutDir             string `json:"outDir" yaml:"outDir"`
	SourceMap          bool   `json:"sourceMap" yaml:"sourceMap"`
	Strict             bool   `json:"strict" yaml:"strict"`
	RemoveComments     bool   `json:"removeComments" yaml:"removeComments"`
	PreserveConstEnums bool   `json:"preserveConstEnums" yaml:"preserveConstEnums"`
	SkipLibCheck       bool   `json:"skipLibCheck" yaml:"skipLibCheck"`
}

// LanguageFeatures holds the per-feature toggles. A nil toggle means "not
// set" and falls back to the default.
type LanguageFeatures struct {
	PipelineOperators   *bool `json:"pipelineOperators,omitempty" yaml:"pipelineOperators,omitempty"`
	MatchExpressions    *bool `json:"matchExpressions,omitempty" yaml:"matchExpressions,omitempty"`
	WithUpdates         *bool `json:"withUpdates,omitempty" yaml:"withUpdates,omitempty"`
	AutoProperties      *bool `json:"autoProperties,omitempty" yaml:"autoProperties,omitempty"`
	LinqQueries         *bool `json:"linqQueries,omitempty" yaml:"linqQueries,omitempty"`
	OperatorOverloading *bool `json:"operatorOverloading,omitempty" yaml:"operatorOverloading,omitempty"`
	EnhancedTypes       *bool `json:"enhancedTypes,omitempty" yaml:"enhancedTypes,omitempty"`
}

type Transpilation struct {
	PreserveWhitespace bool `json:"preserveWhitespace" yaml:"preserveWhitespace"`
	GenerateHelpers    bool `json:"generateHelpers" yaml:"generateHelpers"`
	OptimizeOutput     bool `json:"optimizeOutput" yaml:"optimizeOutput"`
	BundleHelpers      bool `json:"bundleHelpers" yaml:"bundleHelpers"`
}

type Watch struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Ignore     []string `json:"ignore" yaml:"ignore"`
}

type Output struct {
	Format            string `json:"format" yaml:"format"`
	Extension         string `json:"extension" yaml:"extension"`
	PreserveStructure bool   `json:"preserveStructure" yaml:"preserveStructure"`
}

// Journal controls the build journal database.
type Journal struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// Default file names, in lookup order.
var FileNames = []string{"csconfig.json", "csconfig.yaml", "csconfig.yml"}

// SourceExtension is the extension of CScript source files.
const SourceExtension = ".csc"

// Default returns the configuration used when no file is present. It is
// also what `cscript init` writes.
func Default() *Config {
	on := func() *bool { b := true; return &b }
	off := func() *bool { b := false; return &b }
	return &Config{
		CompilerOptions: CompilerOptions{
			Target:             "ES2020",
			Module:             "ESNext",
			OutDir:             "./dist",
			SourceMap:          true,
			Strict:             true,
			PreserveConstEnums: true,
			SkipLibCheck:       true,
		},
		LanguageFeatures: LanguageFeatures{
			PipelineOperators:   on(),
			MatchExpressions:    on(),
			WithUpdates:         on(),
			AutoProperties:      on(),
			LinqQueries:         on(),
			OperatorOverloading: on(),
			EnhancedTypes:       off(),
		},
		Transpilation: Transpilation{
			PreserveWhitespace: true,
			GenerateHelpers:    true,
		},
		Include: []string{"src/**/*.csc", "*.csc"},
		Exclude: []string{"node_modules/**", "dist/**", "**/*.d.ts"},
		Files:   []string{},
		Watch: Watch{
			Extensions: []string{SourceExtension},
			Ignore:     []string{"node_modules", "dist"},
		},
		Output: Output{
			Format:            "module",
			Extension:         ".js",
			PreserveStructure: true,
		},
		Journal: Journal{
			Enabled: true,
			Path:    ".cscript/journal.db",
		},
	}
}

// Features resolves the toggles against the transformer defaults.
func (lf LanguageFeatures) Features() transform.Features {
	f := transform.DefaultFeatures()
	pick := func(p *bool, def bool) bool {
		if p == nil {
			return def
		}
		return *p
	}
	f.Pipeline = pick(lf.PipelineOperators, f.Pipeline)
	f.Match = pick(lf.MatchExpressions, f.Match)
	f.Update = pick(lf.WithUpdates, f.Update)
	f.Property = pick(lf.AutoProperties, f.Property)
	f.Query = pick(lf.LinqQueries, f.Query)
	f.Overload = pick(lf.OperatorOverloading, f.Overload)
	f.EnhancedTypes = pick(lf.EnhancedTypes, f.EnhancedTypes)
	return f
}

// Features is shorthand for c.LanguageFeatures.Features().
func (c *Config) Features() transform.Features {
	return c.LanguageFeatures.Features()
}

// applyDefaults fills every zero-valued section from Default. Booleans
// outside LanguageFeatures cannot be told apart from an explicit false and
// are kept as decoded.
func (c *Config) applyDefaults() {
	def := Default()
	if c.CompilerOptions.OutDir == "" {
		c.CompilerOptions.OutDir = def.CompilerOptions.OutDir
	}
	if c.CompilerOptions.Target == "" {
		c.CompilerOptions.Target = def.CompilerOptions.Target
	}
	if c.CompilerOptions.Module == "" {
		c.CompilerOptions.Module = def.CompilerOptions.Module
	}
	if c.Include == nil {
		c.Include = def.Include
	}
	if c.Exclude == nil {
		c.Exclude = def.Exclude
	}
	if c.Files == nil {
		c.Files = []string{}
	}
	if c.Watch.Extensions == nil {
		c.Watch.Extensions = def.Watch.Extensions
	}
	if c.Watch.Ignore == nil {
		c.Watch.Ignore = def.Watch.Ignore
	}
	if c.Output.Format == "" {
		c.Output.Format = def.Output.Format
	}
	if c.Output.Extension == "" {
		c.Output.Extension = def.Output.Extension
	}
	if c.Journal.Path == "" {
		c.Journal.Path = def.Journal.Path
	}
}
