package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // case filter (glob pattern)
}

// CaseResult holds the result of a single case.
type CaseResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Cases  []CaseResult `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <cases-dir>",
		Short: "Run conformance cases",
		Long: `Run the YAML conformance cases in a directory.

Each case transpiles its input and checks the expected error, the exact
output, or the golden file in golden/ next to the case. Successful outputs
must also survive a second transpile unchanged.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (invalid paths, etc.)

Examples:
  cscript test ./testdata/cases
  cscript test ./testdata/cases --filter "match_*"
  cscript test ./testdata/cases --update
  cscript test ./testdata/cases --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, casesDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if info, err := os.Stat(casesDir); err != nil || !info.IsDir() {
		return formatter.Fail(ExitCommandError, ErrCodeNoInput, fmt.Errorf("cases directory not found: %s", casesDir))
	}

	files, err := harness.FindCases(casesDir, opts.Filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRead, err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(formatter, TestResult{Cases: []CaseResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No cases found.")
		return nil
	}

	result := TestResult{
		Cases: make([]CaseResult, 0, len(files)),
		Total: len(files),
	}
	for _, file := range files {
		cr := runCase(file, opts)
		result.Cases = append(result.Cases, cr)
		if cr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if opts.Format == "json" {
			continue
		}
		if cr.Pass {
			formatter.Check("%s", cr.Name)
			continue
		}
		formatter.Cross("%s", cr.Name)
		for _, e := range cr.Errors {
			fmt.Fprintf(formatter.Writer, "  %s\n", e)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// runCase loads and runs one case file, applying golden comparison or
// update as the flags ask.
func runCase(file string, opts *TestOptions) CaseResult {
	cr := CaseResult{Name: filepath.Base(file), File: file}

	c, err := harness.LoadCase(file)
	if err != nil {
		cr.Errors = []string{fmt.Sprintf("failed to load case: %v", err)}
		return cr
	}
	cr.Name = c.Name

	r, err := harness.Run(c)
	if err != nil {
		cr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return cr
	}

	if harness.NeedsGolden(c) && len(r.Errors) == 0 {
		if opts.Update {
			if err := harness.UpdateGolden(c, r); err != nil {
				r.AddError("failed to update golden file: %v", err)
			}
		} else {
			match, err := harness.CompareGolden(c, r)
			switch {
			case err != nil:
				r.AddError("golden comparison failed: %v (run with --update to create it)", err)
			case !match:
				r.AddError("output does not match %s (run with --update to regenerate)", harness.GoldenPath(c))
			}
		}
	}

	cr.Pass = len(r.Errors) == 0
	cr.Errors = r.Errors
	return cr
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d case(s) failed", result.Failed),
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}

	formatter.Check("All cases passed")
	return nil
}
