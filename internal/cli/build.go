package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/journal"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	OutDir    string // overrides compilerOptions.outDir
	NoJournal bool
}

// BuildResult holds the outcome of one build run.
type BuildResult struct {
	RunID     string        `json:"run_id,omitempty"`
	Files     []*FileResult `json:"files"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Total     int           `json:"total"`
}

func (r *BuildResult) add(f *FileResult) {
	r.Files = append(r.Files, f)
	r.Total++
	if f.err != nil {
		r.Failed++
	} else {
		r.Succeeded++
	}
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Transpile every project source into outDir",
		Long: `Transpile every file selected by the include, exclude and files
settings of csconfig into compilerOptions.outDir.

A failing file does not stop the build; each attempt is recorded in the
build journal under one run id.

Exit codes:
  0 - All files transpiled
  1 - One or more files failed
  2 - Command error (bad config, no sources, journal unavailable, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "output directory relative to the project root (overrides compilerOptions.outDir)")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record builds in the journal")

	return cmd
}

func runBuild(opts *BuildOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	proj, err := opts.loadProject()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}
	if opts.OutDir != "" {
		proj.cfg.CompilerOptions.OutDir = opts.OutDir
	}
	if opts.NoJournal {
		proj.cfg.Journal.Enabled = false
	}

	sources, err := proj.findSources()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRead, err)
	}
	if len(sources) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNoInput, fmt.Errorf("no source files matched in %s", proj.root))
	}
	formatter.VerboseLog("Found %d source file(s) in %s", len(sources), proj.root)

	j, err := proj.openJournal()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	if j != nil {
		defer j.Close()
	}

	result, err := proj.build(cmd.Context(), j, sources, formatter)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrorCode(err), err)
	}

	if formatter.Format == "json" {
		return outputBuildJSON(formatter, result)
	}
	return outputBuildText(formatter, result)
}

// build transpiles sources into their output paths under one run id. In
// text mode each file gets a status line as it finishes.
func (p *project) build(ctx context.Context, j *journal.Journal, sources []string, formatter *OutputFormatter) (*BuildResult, error) {
	result := &BuildResult{Files: make([]*FileResult, 0, len(sources))}
	if j != nil {
		result.RunID = j.NewRunID()
	}

	for _, src := range sources {
		res, err := p.transpileFile(ctx, j, result.RunID, src, p.outputPath(src))
		if err != nil {
			return nil, err
		}
		result.add(res)

		if formatter.Format == "json" {
			continue
		}
		if res.err != nil {
			formatter.Cross("%s", src)
			fmt.Fprintf(formatter.Writer, "  %s: %v\n", res.ErrorCode, res.err)
			continue
		}
		formatter.Check("%s → %s", src, res.Output)
		if stats := statsLine(res); stats != "" {
			formatter.VerboseLog("  lowered: %s", stats)
		}
	}
	return result, nil
}

func outputBuildJSON(formatter *OutputFormatter, result *BuildResult) error {
	response := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_BUILD_FAILED",
			Message: fmt.Sprintf("%d file(s) failed", result.Failed),
		}
	}
	if err := formatter.JSON(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", result.Failed))
	}
	return nil
}

func outputBuildText(formatter *OutputFormatter, result *BuildResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Build Summary: %d succeeded, %d failed, %d total\n", result.Succeeded, result.Failed, result.Total)
	if result.RunID != "" {
		formatter.VerboseLog("Run ID: %s", result.RunID)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", result.Failed))
	}
	return nil
}
