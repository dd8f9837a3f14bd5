package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/roach88/cscript/internal/config"
	"github.com/roach88/cscript/internal/transpile"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Transpile or test failure
	ExitCommandError = 2 // Command error (missing input, bad config, journal unavailable, etc.)
)

// Error codes for I/O failures (E001-E099). Syntax, transform and config
// errors carry their own codes.
const (
	ErrCodeGeneric = "E000"
	ErrCodeRead    = "E001" // input cannot be read
	ErrCodeWrite   = "E002" // output cannot be written
	ErrCodeNoInput = "E003" // no source files matched
	ErrCodeJournal = "E004" // journal cannot be opened or queried
	ErrCodeWatch   = "E005" // file watcher failed
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError, ExitSuccess
// for nil.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode returns the stable code carried by err: a transpile or config
// code, the code an ExitError was created with, else ErrCodeGeneric.
func ErrorCode(err error) string {
	if code := transpile.Code(err); code != "" {
		return code
	}
	var ce *config.Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && isErrorCode(exitErr.Message) {
		return exitErr.Message
	}
	return ErrCodeGeneric
}

func isErrorCode(s string) bool {
	if len(s) != 4 || s[0] != 'E' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
	RunID  string    `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E203", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON writes v as indented JSON.
func (f *OutputFormatter) JSON(v any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.JSON(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.JSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s Error [%s]: %s\n", f.cross(), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(exitCode int, code string, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		err = exitErr.Err
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}

// Check writes a "✓ ..." status line.
func (f *OutputFormatter) Check(format string, args ...any) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.check(), fmt.Sprintf(format, args...))
}

// Cross writes a "✗ ..." status line.
func (f *OutputFormatter) Cross(format string, args ...any) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.cross(), fmt.Sprintf(format, args...))
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Styled reports whether Writer is a terminal. Colors are only emitted
// then, so piped output and test buffers stay plain.
func (f *OutputFormatter) Styled() bool {
	return isTerminal(f.Writer)
}

// setupPterm switches pterm colors to match Styled before a render.
func (f *OutputFormatter) setupPterm() {
	if f.Styled() {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

func (f *OutputFormatter) check() string {
	if f.Styled() {
		return pterm.FgGreen.Sprint("✓")
	}
	return "✓"
}

func (f *OutputFormatter) cross() string {
	if f.Styled() {
		return pterm.FgRed.Sprint("✗")
	}
	return "✗"
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
