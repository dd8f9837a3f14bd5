// Package transpile runs the whole source-to-source pipeline: parse the
// CScript text, lower its sugar, print JavaScript.
package transpile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/printer"
	"github.com/roach88/cscript/internal/syntax"
	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/typeinfer"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageParse     Stage = "parse"
	StageTransform Stage = "transform"
)

// Error wraps a failure with the stage and a stable code.
type Error struct {
	Stage Stage
	Code  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Output is the result of a successful transpile.
type Output struct {
	Code   string
	Result *transform.Result
}

type options struct {
	features transform.Features
	logger   *slog.Logger
	infer    typeinfer.Factory
}

// Option configures a transpile run.
type Option func(*options)

// WithFeatures sets the feature toggles. The default enables all.
func WithFeatures(f transform.Features) Option {
	return func(o *options) { o.features = f }
}

// WithLogger sets the logger handed to the transformer.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInferrer overrides the operator overload type inferrer.
func WithInferrer(f typeinfer.Factory) Option {
	return func(o *options) { o.infer = f }
}

func newOptions(opts []Option) options {
	o := options{features: transform.DefaultFeatures(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Transpile parses src, lowers it and prints the result.
func Transpile(src string, opts ...Option) (*Output, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := Lower(prog, opts...)
	if err != nil {
		return nil, err
	}
	return &Output{Code: printer.Print(res.Program), Result: res}, nil
}

// Parse parses src, wrapping failures as a parse-stage *Error.
func Parse(src string) (*ast.Program, error) {
	prog, err := syntax.Parse(src)
	if err != nil {
		code := syntax.CodeParse
		var se *syntax.Error
		if errors.As(err, &se) && se.Code != "" {
			code = se.Code
		}
		return nil, &Error{Stage: StageParse, Code: code, Err: err}
	}
	return prog, nil
}

// Lower runs the transformer over prog in place.
func Lower(prog *ast.Program, opts ...Option) (*transform.Result, error) {
	o := newOptions(opts)
	tr := transform.New(
		transform.WithFeatures(o.features),
		transform.WithLogger(o.logger),
		transform.WithInferrer(o.infer),
	)
	res, err := tr.Transform(prog)
	if err != nil {
		code := ""
		if te, ok := transform.AsError(err); ok {
			code = te.Code
		}
		return nil, &Error{Stage: StageTransform, Code: code, Err: err}
	}
	return res, nil
}

// Code extracts the stable error code from err, or "" if it has none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
