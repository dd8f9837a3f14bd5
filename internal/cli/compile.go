package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/transform"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string // output file path
	NoJournal bool
}

// CompileResult is the JSON payload of a successful compile.
type CompileResult struct {
	*FileResult
	Features []string `json:"features"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <input> [output]",
		Short: "Transpile one CScript file to JavaScript",
		Long: `Transpile a single CScript file.

The output path may be given as a second argument or with --output. Without
one, the JavaScript is printed. Feature toggles come from csconfig.

Examples:
  cscript compile app.csc
  cscript compile app.csc dist/app.js
  cscript compile app.csc --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Output
			if len(args) == 2 {
				out = args[1]
			}
			return runCompile(opts, args[0], out, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record the build in the journal")

	return cmd
}

func runCompile(opts *CompileOptions, input, output string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	proj, err := opts.loadProject()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}

	formatter.VerboseLog("Transpiling %s", input)

	j, err := proj.openJournal()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	if opts.NoJournal && j != nil {
		j.Close()
		j = nil
	}
	runID := ""
	if j != nil {
		defer j.Close()
		runID = j.NewRunID()
	}

	res, err := proj.transpileFile(cmd.Context(), j, runID, input, output)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrorCode(err), err)
	}
	if res.err != nil {
		_ = formatter.Error(res.ErrorCode, res.Error, nil)
		return WrapExitError(ExitFailure, res.ErrorCode, res.err)
	}

	features := featureList(proj.features())
	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{
			Status: "ok",
			Data:   CompileResult{FileResult: res, Features: features},
			RunID:  runID,
		})
	}

	w := formatter.Writer
	if output != "" {
		formatter.Check("Transpiled %s → %s", input, output)
	} else {
		fmt.Fprintln(w, "--- Transpiled JavaScript ---")
		fmt.Fprint(w, res.Code)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Active features: %s\n", strings.Join(features, ", "))
	if stats := statsLine(res); stats != "" {
		formatter.VerboseLog("Lowered: %s", stats)
	}
	return nil
}

func statsLine(res *FileResult) string {
	return (&transform.Result{Stats: res.Stats}).StatsLine()
}
