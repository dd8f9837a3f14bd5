package printer

import (
	"fmt"
	"strings"

	"github.com/roach88/cscript/internal/ast"
)

// Print renders a program as JavaScript source. Output is deterministic:
// two-space indentation, double-quoted strings, one statement per line,
// and parentheses only where precedence requires them.
func Print(prog *ast.Program) string {
	p := &printer{}
	var sb strings.Builder
	for _, s := range prog.Body {
		sb.WriteString(p.stmt(s))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintExpr renders a single expression.
func PrintExpr(e ast.Expr) string {
	p := &printer{}
	return p.expr(e, levelSequence)
}

type printer struct {
	indent int
}

func (p *printer) pad() string {
	return strings.Repeat("  ", p.indent)
}

// =============================================================================
// Statements
// =============================================================================

// stmt returns the text of s. The first line carries no indentation; inner
// lines are indented relative to the current level.
func (p *printer) stmt(s ast.Stmt) string {
	switch s := s.(type) {
	case *ast.VarDecl:
		return p.varDecl(s) + ";"
	case *ast.FuncDecl:
		return fmt.Sprintf("%sfunction %s(%s) %s", asyncPrefix(s.Async), s.Name, p.params(s.Params), p.block(s.Body))
	case *ast.ClassDecl:
		return p.class(s)
	case *ast.Block:
		return p.block(s)
	case *ast.Return:
		if s.Arg == nil {
			return "return;"
		}
		return "return " + p.expr(s.Arg, levelSequence) + ";"
	case *ast.If:
		out := "if (" + p.expr(s.Test, levelSequence) + ") " + p.body(s.Cons)
		if s.Alt != nil {
			if _, ok := s.Cons.(*ast.Block); !ok {
				out += "\n" + p.pad()
			} else {
				out += " "
			}
			out += "else " + p.body(s.Alt)
		}
		return out
	case *ast.For:
		init := ""
		switch i := s.Init.(type) {
		case *ast.VarDecl:
			init = p.varDecl(i)
		case *ast.ExprStmt:
			init = p.expr(i.X, levelSequence)
		}
		test, update := "", ""
		if s.Test != nil {
			test = " " + p.expr(s.Test, levelSequence)
		}
		if s.Update != nil {
			update = " " + p.expr(s.Update, levelSequence)
		}
		return fmt.Sprintf("for (%s;%s;%s) %s", init, test, update, p.body(s.Body))
	case *ast.ForIn:
		left := ""
		switch l := s.Left.(type) {
		case *ast.VarDecl:
			left = p.varDecl(l)
		case *ast.ExprStmt:
			left = p.expr(l.X, levelPostfix)
		}
		kw := "in"
		if s.Of {
			kw = "of"
		}
		return fmt.Sprintf("for (%s %s %s) %s", left, kw, p.expr(s.Right, levelAssign), p.body(s.Body))
	case *ast.While:
		return "while (" + p.expr(s.Test, levelSequence) + ") " + p.body(s.Body)
	case *ast.Throw:
		return "throw " + p.expr(s.Arg, levelSequence) + ";"
	case *ast.Break:
		return "break;"
	case *ast.Continue:
		return "continue;"
	case *ast.ExprStmt:
		text := p.expr(s.X, levelSequence)
		if startsAmbiguous(s.X) {
			text = "(" + text + ")"
		}
		return text + ";"
	case *ast.Empty:
		return ";"
	}
	return fmt.Sprintf("/* unsupported statement %T */", s)
}

// body prints a loop or branch body; blocks stay on the same line.
func (p *printer) body(s ast.Stmt) string {
	return p.stmt(s)
}

func (p *printer) block(b *ast.Block) string {
	if b == nil || len(b.Body) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	p.indent++
	for _, s := range b.Body {
		sb.WriteString(p.pad())
		sb.WriteString(p.stmt(s))
		sb.WriteByte('\n')
	}
	p.indent--
	sb.WriteString(p.pad())
	sb.WriteByte('}')
	return sb.String()
}

func (p *printer) varDecl(d *ast.VarDecl) string {
	parts := make([]string, len(d.Decls))
	for i, decl := range d.Decls {
		parts[i] = p.expr(decl.Target, levelPrimary)
		if decl.Init != nil {
			parts[i] += " = " + p.expr(decl.Init, levelAssign)
		}
	}
	return d.Kind + " " + strings.Join(parts, ", ")
}

func (p *printer) class(c *ast.ClassDecl) string {
	head := "class " + c.Name
	if c.SuperClass != nil {
		head += " extends " + p.expr(c.SuperClass, levelCall)
	}
	if len(c.Members) == 0 {
		return head + " {}"
	}
	var sb strings.Builder
	sb.WriteString(head + " {\n")
	p.indent++
	for _, m := range c.Members {
		sb.WriteString(p.pad())
		sb.WriteString(p.member(m))
		sb.WriteByte('\n')
	}
	p.indent--
	sb.WriteString(p.pad() + "}")
	return sb.String()
}

func (p *printer) member(m ast.ClassMember) string {
	switch m := m.(type) {
	case *ast.ClassMethod:
		prefix := ""
		if m.Static {
			prefix = "static "
		}
		if m.Kind == ast.MethodGet || m.Kind == ast.MethodSet {
			prefix += string(m.Kind) + " "
		}
		return fmt.Sprintf("%s%s(%s) %s", prefix, p.key(m.Key, m.Computed), p.params(m.Params), p.block(m.Body))
	case *ast.ClassProperty:
		out := p.key(m.Key, m.Computed)
		if m.Static {
			out = "static " + out
		}
		if m.Value != nil {
			out += " = " + p.expr(m.Value, levelAssign)
		}
		return out + ";"
	}
	return fmt.Sprintf("/* unsupported member %T */", m)
}

func (p *printer) key(k ast.Expr, computed bool) string {
	if computed {
		return "[" + p.expr(k, levelAssign) + "]"
	}
	return p.expr(k, levelPrimary)
}

func (p *printer) params(params []ast.Expr) string {
	parts := make([]string, len(params))
	for i, param := range params {
		parts[i] = p.expr(param, levelAssign)
	}
	return strings.Join(parts, ", ")
}

func asyncPrefix(async bool) string {
	if async {
		return "async "
	}
	return ""
}

// startsAmbiguous reports whether an expression statement would begin with
// `{` or `function` and so be misread as a block or declaration.
func startsAmbiguous(e ast.Expr) bool {
	for {
		switch x := e.(type) {
		case *ast.ObjectLit, *ast.Func:
			return true
		case *ast.Call:
			e = x.Callee
		case *ast.Member:
			e = x.Object
		case *ast.Binary:
			e = x.Left
		case *ast.Conditional:
			e = x.Test
		case *ast.Assign:
			e = x.Target
		case *ast.Sequence:
			e = x.Exprs[0]
		case *ast.Update:
			if x.Prefix {
				return false
			}
			e = x.X
		default:
			return false
		}
	}
}
