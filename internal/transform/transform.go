package transform

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/cscript/internal/ast"
	"github.com/roach88/cscript/internal/overload"
	"github.com/roach88/cscript/internal/typeinfer"
)

// MatchTemp is the parameter name of the first lowered match in a program.
// Later matches append a counter: __matchValue1, __matchValue2, ...
const MatchTemp = "__matchValue"

// Transformer lowers CScript sugar in a parsed program to plain JavaScript.
// It is stateless between calls and safe for concurrent use.
type Transformer struct {
	features Features
	logger   *slog.Logger
	infer    typeinfer.Factory
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithFeatures sets the feature toggles.
func WithFeatures(f Features) Option {
	return func(t *Transformer) {
		t.features = f
	}
}

// WithLogger sets the logger for overload registration and rewrite traces.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = l
	}
}

// WithInferrer overrides the type inferrer used for operator overloads.
// Without it, Features.EnhancedTypes picks between the naming heuristic and
// the binding-aware inferrer.
func WithInferrer(f typeinfer.Factory) Option {
	return func(t *Transformer) {
		t.infer = f
	}
}

// New returns a Transformer with every feature enabled unless overridden.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		features: DefaultFeatures(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Features returns the toggles t was built with.
func (t *Transformer) Features() Features {
	return t.features
}

// Result is the outcome of one Transform call.
type Result struct {
	Program *ast.Program `json:"-"`

	// Stats counts lowered constructs per feature.
	Stats map[Feature]int `json:"stats"`

	// Properties lists declarative properties that were expanded and
	// hand-written accessors that look like auto-properties.
	Properties []PropertyOutcome `json:"properties,omitempty"`

	// Overloads lists the operator overloads found by the pre-pass.
	Overloads []overload.Entry `json:"overloads,omitempty"`
}

// Total returns the number of lowered constructs.
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Stats {
		n += c
	}
	return n
}

// StatsLine renders Stats in feature order, e.g. "pipelineOperators=2 linqQueries=1".
func (r *Result) StatsLine() string {
	var parts []string
	for _, f := range AllFeatures {
		if c := r.Stats[f]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", f, c))
		}
	}
	return strings.Join(parts, " ")
}

// Transform rewrites prog in place and returns it inside the Result.
//
// Operator overload declarations are collected first, so a use may appear
// before its class. The tree is then walked once, children before parents;
// a node produced by a rewrite is not revisited. On error the tree may be
// partly rewritten and must be discarded.
func (t *Transformer) Transform(prog *ast.Program) (*Result, error) {
	r := &rewriter{
		features: t.features,
		logger:   t.logger,
		stats:    map[Feature]int{},
	}

	if t.features.Overload {
		reg := overload.Collect(prog, t.logger)
		if reg.Len() > 0 {
			factory := t.infer
			if factory == nil {
				factory = typeinfer.HeuristicFactory
				if t.features.EnhancedTypes {
					factory = typeinfer.BindingFactory
				}
			}
			r.resolver = overload.NewResolver(reg, factory(reg.Types(), prog))
		}
		r.overloads = reg.Entries()
	}

	if err := r.stmts(prog.Body); err != nil {
		return nil, err
	}

	t.logger.Debug("transform complete", "stats", (&Result{Stats: r.stats}).StatsLine())
	return &Result{
		Program:    prog,
		Stats:      r.stats,
		Properties: r.properties,
		Overloads:  r.overloads,
	}, nil
}

// rewriter holds the state of one Transform call.
type rewriter struct {
	features   Features
	logger     *slog.Logger
	resolver   *overload.Resolver
	overloads  []overload.Entry
	stats      map[Feature]int
	properties []PropertyOutcome
	temps      int
	class      string
}

func (r *rewriter) count(f Feature) {
	r.stats[f]++
	r.logger.Debug("lowered", "feature", string(f))
}

// temp names the next match temporary. The counter advances only when a
// match actually lowers.
func (r *rewriter) temp() string {
	if r.temps == 0 {
		return MatchTemp
	}
	return fmt.Sprintf("%s%d", MatchTemp, r.temps)
}

// =============================================================================
// Statements
// =============================================================================

func (r *rewriter) stmts(list []ast.Stmt) error {
	for _, s := range list {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *rewriter) stmt(s ast.Stmt) error {
	var err error
	switch s := s.(type) {
	case nil:
	case *ast.VarDecl:
		return r.varDecl(s)
	case *ast.FuncDecl:
		return r.function(s.Params, s.Body)
	case *ast.ClassDecl:
		return r.classDecl(s)
	case *ast.Block:
		return r.stmts(s.Body)
	case *ast.Return:
		s.Arg, err = r.optExpr(s.Arg)
	case *ast.If:
		if s.Test, err = r.expr(s.Test); err != nil {
			return err
		}
		if err = r.stmt(s.Cons); err != nil {
			return err
		}
		err = r.stmt(s.Alt)
	case *ast.For:
		if err = r.stmt(s.Init); err != nil {
			return err
		}
		if s.Test, err = r.optExpr(s.Test); err != nil {
			return err
		}
		if s.Update, err = r.optExpr(s.Update); err != nil {
			return err
		}
		err = r.stmt(s.Body)
	case *ast.ForIn:
		if err = r.stmt(s.Left); err != nil {
			return err
		}
		if s.Right, err = r.expr(s.Right); err != nil {
			return err
		}
		err = r.stmt(s.Body)
	case *ast.While:
		if s.Test, err = r.expr(s.Test); err != nil {
			return err
		}
		err = r.stmt(s.Body)
	case *ast.Throw:
		s.Arg, err = r.expr(s.Arg)
	case *ast.ExprStmt:
		s.X, err = r.expr(s.X)
	case *ast.Break, *ast.Continue, *ast.Empty:
	default:
		return fmt.Errorf("transform: unsupported statement %T", s)
	}
	return err
}

// varDecl rewrites each initializer. An initializer that is an object
// literal spelling a query is the one place the object query form is
// recognized.
func (r *rewriter) varDecl(d *ast.VarDecl) error {
	for _, decl := range d.Decls {
		var err error
		if decl.Target, err = r.pattern(decl.Target); err != nil {
			return err
		}
		if decl.Init == nil {
			continue
		}
		if decl.Init, err = r.expr(decl.Init); err != nil {
			return err
		}
		if !r.features.Query {
			continue
		}
		out, ok, err := LowerQueryObject(decl.Init)
		if err != nil {
			return err
		}
		if ok {
			decl.Init = out
			r.count(FeatureQuery)
		}
	}
	return nil
}

// pattern rewrites default values inside a binding target.
func (r *rewriter) pattern(e ast.Expr) (ast.Expr, error) {
	switch e.(type) {
	case *ast.Ident, nil:
		return e, nil
	}
	return r.expr(e)
}

func (r *rewriter) function(params []ast.Expr, body *ast.Block) error {
	if err := r.exprs(params); err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	return r.stmts(body.Body)
}

// =============================================================================
// Classes
// =============================================================================

func (r *rewriter) classDecl(c *ast.ClassDecl) error {
	var err error
	if c.SuperClass, err = r.optExpr(c.SuperClass); err != nil {
		return err
	}

	outer := r.class
	r.class = c.Name
	defer func() { r.class = outer }()

	existing := ClassAccessors(c)
	members := make([]ast.ClassMember, 0, len(c.Members))
	for _, m := range c.Members {
		switch m := m.(type) {
		case *ast.ClassMethod:
			if r.features.Property && IsAutoProperty(m) {
				r.report(m.Key, m.Computed, m.Kind, m.Static, OutcomeDetectedNotRewritten)
			}
			if m.Computed {
				if m.Key, err = r.expr(m.Key); err != nil {
					return err
				}
			}
			if err := r.function(m.Params, m.Body); err != nil {
				return err
			}
			members = append(members, m)

		case *ast.ClassProperty:
			if r.features.Property {
				if expanded, ok := LowerProperty(m, existing); ok {
					members = append(members, expanded...)
					r.report(m.Key, m.Computed, "", m.Static, OutcomeRewritten)
					r.count(FeatureProperty)
					continue
				}
			}
			if m.Computed {
				if m.Key, err = r.expr(m.Key); err != nil {
					return err
				}
			}
			if m.Value, err = r.optExpr(m.Value); err != nil {
				return err
			}
			members = append(members, m)

		default:
			members = append(members, m)
		}
	}
	c.Members = members
	return nil
}

func (r *rewriter) report(key ast.Expr, computed bool, kind ast.MethodKind, static bool, outcome Outcome) {
	name, ok := ast.KeyName(key, computed)
	if !ok {
		return
	}
	r.properties = append(r.properties, PropertyOutcome{
		Class:   r.class,
		Name:    name,
		Kind:    kind,
		Static:  static,
		Outcome: outcome,
	})
}

// =============================================================================
// Expressions
// =============================================================================

func (r *rewriter) optExpr(e ast.Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return r.expr(e)
}

func (r *rewriter) exprs(list []ast.Expr) error {
	for i, e := range list {
		out, err := r.expr(e)
		if err != nil {
			return err
		}
		list[i] = out
	}
	return nil
}

// expr rewrites the children of e, then offers e itself to the lowering
// rules.
func (r *rewriter) expr(e ast.Expr) (ast.Expr, error) {
	if err := r.children(e); err != nil {
		return nil, err
	}
	return r.lower(e)
}

func (r *rewriter) children(e ast.Expr) error {
	var err error
	switch x := e.(type) {
	case *ast.ArrayLit:
		return r.exprs(x.Elems)
	case *ast.ObjectLit:
		for _, entry := range x.Entries {
			switch en := entry.(type) {
			case *ast.Property:
				if en.Computed {
					if en.Key, err = r.expr(en.Key); err != nil {
						return err
					}
				}
				if en.Shorthand {
					continue
				}
				if en.Value, err = r.expr(en.Value); err != nil {
					return err
				}
			case *ast.Spread:
				if en.Arg, err = r.expr(en.Arg); err != nil {
					return err
				}
			}
		}
	case *ast.Spread:
		x.Arg, err = r.expr(x.Arg)
	case *ast.Func:
		return r.function(x.Params, x.Body)
	case *ast.Arrow:
		if err = r.exprs(x.Params); err != nil {
			return err
		}
		if x.Block != nil {
			return r.stmts(x.Block.Body)
		}
		x.Expr, err = r.expr(x.Expr)
	case *ast.Call:
		if x.Callee, err = r.expr(x.Callee); err != nil {
			return err
		}
		return r.exprs(x.Args)
	case *ast.New:
		if x.Callee, err = r.expr(x.Callee); err != nil {
			return err
		}
		return r.exprs(x.Args)
	case *ast.Member:
		if x.Object, err = r.expr(x.Object); err != nil {
			return err
		}
		if x.Computed {
			x.Property, err = r.expr(x.Property)
		}
	case *ast.Binary:
		if x.Left, err = r.expr(x.Left); err != nil {
			return err
		}
		x.Right, err = r.expr(x.Right)
	case *ast.Unary:
		x.X, err = r.expr(x.X)
	case *ast.Update:
		x.X, err = r.expr(x.X)
	case *ast.Assign:
		if x.Target, err = r.expr(x.Target); err != nil {
			return err
		}
		x.Value, err = r.expr(x.Value)
	case *ast.Conditional:
		if x.Test, err = r.expr(x.Test); err != nil {
			return err
		}
		if x.Cons, err = r.expr(x.Cons); err != nil {
			return err
		}
		x.Alt, err = r.expr(x.Alt)
	case *ast.Sequence:
		return r.exprs(x.Exprs)
	}
	return err
}

// lower applies the first enabled rule whose shape matches e. Rules are
// tried in feature priority order; at most one fires per node. The call a
// pipeline produces is a new node and is offered to the call rules, so
// `x |> withUpdate` fails here instead of on a second run.
func (r *rewriter) lower(e ast.Expr) (ast.Expr, error) {
	switch x := e.(type) {
	case *ast.Binary:
		if r.features.Pipeline {
			if out, ok := LowerPipeline(x); ok {
				r.count(FeaturePipeline)
				return r.lowerCall(out.(*ast.Call))
			}
		}
		if r.features.Overload && r.resolver != nil {
			if out, ok := r.resolver.Resolve(x); ok {
				r.count(FeatureOverload)
				return out, nil
			}
		}

	case *ast.Call:
		return r.lowerCall(x)

	case *ast.Sequence:
		if r.features.Query {
			out, ok, err := LowerQuery(x)
			if err != nil {
				return nil, err
			}
			if ok {
				r.count(FeatureQuery)
				return out, nil
			}
		}
	}
	return e, nil
}

func (r *rewriter) lowerCall(x *ast.Call) (ast.Expr, error) {
	if r.features.Match {
		out, ok, err := LowerMatch(x, r.temp())
		if err != nil {
			return nil, err
		}
		if ok {
			r.temps++
			r.count(FeatureMatch)
			return out, nil
		}
	}
	if r.features.Update {
		out, ok, err := LowerUpdate(x)
		if err != nil {
			return nil, err
		}
		if ok {
			r.count(FeatureUpdate)
			return out, nil
		}
	}
	return x, nil
}
