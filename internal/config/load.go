package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cscript/internal/version"
)

//go:embed schema.cue
var schemaSource string

// Error codes for configuration failures (E300-E399).
const (
	ErrCodeRead       = "E301" // file cannot be read
	ErrCodeSyntax     = "E302" // not valid JSON or YAML
	ErrCodeSchema     = "E303" // violates the schema
	ErrCodeConstraint = "E304" // requires is not a semver constraint
	ErrCodeVersion    = "E305" // tool version does not satisfy requires
	ErrCodeExists     = "E306" // init would overwrite a file
)

// Error is a configuration failure tied to a file and, when known, a path
// inside it.
type Error struct {
	Code    string
	File    string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Code)
	sb.WriteString(": ")
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Find returns the first csconfig file present in dir, or "" if none is.
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadDir loads the csconfig file in dir, or returns Default when there is
// none.
func LoadDir(dir string) (*Config, error) {
	p := Find(dir)
	if p == "" {
		return Default(), nil
	}
	return Load(p)
}

// Load reads, validates and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeRead, File: path, Message: "cannot read config", Err: err}
	}
	cfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes config data. The format is chosen by the extension of
// name: .yaml and .yml are YAML, anything else is JSON.
func Parse(name string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	value, err := encode(ctx, name, data)
	if err != nil {
		return nil, err
	}

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(name, err)
	}

	cfg := &Config{}
	if err := unified.Decode(cfg); err != nil {
		return nil, schemaError(name, err)
	}
	cfg.applyDefaults()
	cfg.Journal.Enabled = boolOr(unified, "journal.enabled", true)
	cfg.Output.PreserveStructure = boolOr(unified, "output.preserveStructure", true)

	if err := CheckRequires(cfg.Requires, version.Tool); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.File = name
		}
		return nil, err
	}
	return cfg, nil
}

func encode(ctx *cue.Context, name string, data []byte) (cue.Value, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, &Error{Code: ErrCodeSyntax, File: name, Message: "invalid YAML", Err: err}
		}
		if raw == nil {
			raw = map[string]any{}
		}
		v := ctx.Encode(raw)
		if err := v.Err(); err != nil {
			return cue.Value{}, &Error{Code: ErrCodeSyntax, File: name, Message: "unsupported YAML value", Err: err}
		}
		return v, nil
	default:
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return cue.Value{}, &Error{Code: ErrCodeSyntax, File: name, Message: "invalid JSON", Err: err}
		}
		v := ctx.BuildExpr(expr)
		if err := v.Err(); err != nil {
			return cue.Value{}, &Error{Code: ErrCodeSyntax, File: name, Message: "invalid JSON", Err: err}
		}
		return v, nil
	}
}

// schemaError reports the first schema violation with its CUE path.
func schemaError(file string, err error) *Error {
	e := &Error{Code: ErrCodeSchema, File: file, Message: err.Error(), Err: err}
	if list := cueerrors.Errors(err); len(list) > 0 {
		first := list[0]
		e.Path = strings.Join(first.Path(), ".")
		format, args := first.Msg()
		e.Message = fmt.Sprintf(format, args...)
	}
	return e
}

func boolOr(v cue.Value, path string, def bool) bool {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return def
	}
	b, err := field.Bool()
	if err != nil {
		return def
	}
	return b
}

// CheckRequires verifies that tool satisfies the semver constraint in
// requires. An empty constraint always holds.
func CheckRequires(requires, tool string) error {
	if requires == "" {
		return nil
	}
	c, err := semver.NewConstraint(requires)
	if err != nil {
		return &Error{Code: ErrCodeConstraint, Path: "requires", Message: fmt.Sprintf("invalid version constraint %q", requires), Err: err}
	}
	v, err := semver.NewVersion(tool)
	if err != nil {
		return fmt.Errorf("tool version %q: %w", tool, err)
	}
	if !c.Check(v) {
		return &Error{Code: ErrCodeVersion, Path: "requires", Message: fmt.Sprintf("cscript %s does not satisfy %q", tool, requires)}
	}
	return nil
}

// Marshal renders c in the format implied by name's extension.
func Marshal(name string, c *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Marshal(c)
	default:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// WriteDefault writes Default to path. An existing file is only replaced
// when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return &Error{Code: ErrCodeExists, File: path, Message: "config file already exists (use --force to overwrite)"}
		}
	}
	data, err := Marshal(path, Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Code: ErrCodeRead, File: path, Message: "cannot write config", Err: err}
	}
	return nil
}
