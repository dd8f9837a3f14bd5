package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/cscript/internal/config"
	"github.com/roach88/cscript/internal/journal"
	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/transpile"
)

// project is a loaded csconfig plus the directory its relative paths are
// resolved against.
type project struct {
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

func (o *RootOptions) loadProject() (*project, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	root := "."
	if cfg.Path != "" {
		root = filepath.Dir(cfg.Path)
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, err
	}
	return &project{cfg: cfg, root: root, logger: o.logger()}, nil
}

func (p *project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.root, path)
}

func (p *project) features() transform.Features {
	return p.cfg.Features()
}

// openJournal returns nil when the journal is disabled.
func (p *project) openJournal() (*journal.Journal, error) {
	if !p.cfg.Journal.Enabled || p.cfg.Journal.Path == "" {
		return nil, nil
	}
	j, err := journal.Open(p.resolve(p.cfg.Journal.Path))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeJournal, err)
	}
	return j, nil
}

// FileResult is the outcome of transpiling one source file.
type FileResult struct {
	Input     string                    `json:"input"`
	Output    string                    `json:"output,omitempty"`
	Code      string                    `json:"code,omitempty"`
	Stats     map[transform.Feature]int `json:"stats,omitempty"`
	BuildID   string                    `json:"build_id,omitempty"`
	ErrorCode string                    `json:"error_code,omitempty"`
	Error     string                    `json:"error,omitempty"`

	err error
}

// transpileFile reads in, transpiles it and, when out is set, writes the
// result there. The attempt is recorded in j when j is not nil. A
// transpile failure is reported in the result, not returned; the returned
// error is for I/O and journal failures only.
func (p *project) transpileFile(ctx context.Context, j *journal.Journal, runID, in, out string) (*FileResult, error) {
	res := &FileResult{Input: in, Output: out}

	src, err := os.ReadFile(in)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeRead, err)
	}

	features := p.features()
	start := time.Now()
	compiled, err := transpile.Transpile(string(src),
		transpile.WithFeatures(features),
		transpile.WithLogger(p.logger.With("file", in)),
	)
	elapsed := time.Since(start)

	if err != nil {
		res.Output = ""
		res.err = err
		res.ErrorCode = transpile.Code(err)
		res.Error = fmt.Sprintf("%s: %v", in, err)
	} else {
		res.Code = compiled.Code
		res.Stats = compiled.Result.Stats
		if out != "" {
			if err := writeOutput(out, compiled.Code); err != nil {
				return nil, WrapExitError(ExitCommandError, ErrCodeWrite, err)
			}
		}
	}

	if j != nil {
		entry, err := j.Record(ctx, journal.Build{
			RunID:      runID,
			InputPath:  in,
			OutputPath: out,
			Source:     string(src),
			Output:     res.Code,
			Features:   features,
			Stats:      res.Stats,
			Duration:   elapsed,
			ErrorCode:  res.ErrorCode,
			Err:        res.err,
		})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, ErrCodeJournal, err)
		}
		res.BuildID = entry.ID
	}
	return res, nil
}

func writeOutput(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func featureList(f transform.Features) []string {
	var names []string
	for _, a := range f.Active() {
		names = append(names, string(a))
	}
	if f.EnhancedTypes {
		names = append(names, transform.EnhancedTypesName)
	}
	return names
}
