package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/transpile"
)

// Result is the outcome of running one case.
type Result struct {
	Name string `json:"name"`

	// Pass is true when every check held.
	Pass bool `json:"pass"`

	// Output is the generated JavaScript, "" when transpiling failed.
	Output string `json:"output,omitempty"`

	// Stats are the lowering counts of the run.
	Stats map[transform.Feature]int `json:"stats,omitempty"`

	// ErrorCode and ErrorMessage describe a transpile failure.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors lists failed checks. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failed check.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Snapshot is the text compared against golden files: the output on
// success, or the error code and message on failure.
func (r *Result) Snapshot() []byte {
	if r.ErrorCode != "" || r.ErrorMessage != "" {
		return []byte(fmt.Sprintf("error %s: %s\n", r.ErrorCode, r.ErrorMessage))
	}
	return []byte(r.Output)
}

// Run transpiles the case input and checks the outcome the case asks for.
// Golden comparison is left to the caller, since it needs the case file's
// location; NeedsGolden reports whether it applies.
//
// Each run is isolated: its own transformer, a discarding logger.
func Run(c *Case) (*Result, error) {
	features, err := c.Toggles()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := &Result{Name: c.Name, Pass: true}

	out, err := transpile.Transpile(c.Input,
		transpile.WithFeatures(features),
		transpile.WithLogger(logger),
	)
	if err != nil {
		res.ErrorCode = transpile.Code(err)
		res.ErrorMessage = err.Error()
		checkError(c, res)
		return res, nil
	}

	res.Output = out.Code
	res.Stats = out.Result.Stats
	if c.Error != nil {
		res.AddError("expected error %s, transpile succeeded", c.Error.Code)
		return res, nil
	}

	if c.Expect != nil && normalize(*c.Expect) != normalize(res.Output) {
		res.AddError("output mismatch\n--- expected\n%s--- actual\n%s", normalize(*c.Expect), normalize(res.Output))
	}
	for _, want := range c.Contains {
		if !strings.Contains(res.Output, want) {
			res.AddError("output does not contain %q", want)
		}
	}
	checkStats(c, res)

	if !c.SkipIdempotence {
		again, err := transpile.Transpile(res.Output,
			transpile.WithFeatures(features),
			transpile.WithLogger(logger),
		)
		checkFixedPoint(res, again, err)
	}
	return res, nil
}

// checkFixedPoint records an error unless transpiling res.Output again
// produced it unchanged.
func checkFixedPoint(res *Result, again *transpile.Output, err error) {
	switch {
	case err != nil:
		res.AddError("re-transpiling the output failed: %v", err)
	case again.Code != res.Output:
		res.AddError("output is not a fixed point\n--- first\n%s--- second\n%s", res.Output, again.Code)
	}
}

// NeedsGolden reports whether c is checked against a golden file.
func NeedsGolden(c *Case) bool {
	return c.Error == nil && c.Expect == nil
}

func checkError(c *Case, res *Result) {
	if c.Error == nil {
		res.AddError("unexpected error: %s", res.ErrorMessage)
		return
	}
	if res.ErrorCode != c.Error.Code {
		res.AddError("expected error code %s, got %s (%s)", c.Error.Code, res.ErrorCode, res.ErrorMessage)
	}
	if c.Error.Contains != "" && !strings.Contains(res.ErrorMessage, c.Error.Contains) {
		res.AddError("error %q does not contain %q", res.ErrorMessage, c.Error.Contains)
	}
}

func checkStats(c *Case, res *Result) {
	names := make([]string, 0, len(c.Stats))
	for name := range c.Stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := c.Stats[name]
		if got := res.Stats[transform.Feature(name)]; got != want {
			res.AddError("stats: %s = %d, expected %d", name, got, want)
		}
	}
}

// normalize trims trailing blank space so YAML block scalars compare equal
// to printer output.
func normalize(s string) string {
	return strings.TrimRight(s, " \t\n") + "\n"
}
