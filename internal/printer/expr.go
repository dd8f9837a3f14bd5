package printer

import (
	"fmt"
	"strings"

	"github.com/roach88/cscript/internal/ast"
)

// Precedence levels, loosest first. Binary operators occupy
// levelBinary+ast.Precedence(op).
const (
	levelSequence    = 0
	levelAssign      = 2
	levelConditional = 3
	levelBinary      = 3
	levelUnary       = 17
	levelPostfix     = 18
	levelCall        = 19
	levelPrimary     = 20
)

func level(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Sequence:
		return levelSequence
	case *ast.Assign, *ast.Arrow, *ast.Spread:
		return levelAssign
	case *ast.Conditional:
		return levelConditional
	case *ast.Binary:
		return levelBinary + ast.Precedence(e.Op)
	case *ast.Unary:
		return levelUnary
	case *ast.Update:
		if e.Prefix {
			return levelUnary
		}
		return levelPostfix
	case *ast.Call, *ast.New, *ast.Member:
		return levelCall
	}
	return levelPrimary
}

// expr renders e, adding parentheses when its level is below min.
func (p *printer) expr(e ast.Expr, min int) string {
	text := p.exprText(e)
	if level(e) < min {
		return "(" + text + ")"
	}
	return text
}

func (p *printer) exprText(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.NumberLit:
		return e.Raw
	case *ast.StringLit:
		return Quote(e.Value)
	case *ast.TemplateLit:
		return e.Raw
	case *ast.BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.NullLit:
		return "null"
	case *ast.This:
		return "this"
	case *ast.ArrayLit:
		return "[" + p.list(e.Elems) + "]"
	case *ast.ObjectLit:
		return p.object(e)
	case *ast.Spread:
		return "..." + p.expr(e.Arg, levelAssign)
	case *ast.Func:
		name := ""
		if e.Name != "" {
			name = " " + e.Name
		}
		return fmt.Sprintf("%sfunction%s(%s) %s", asyncPrefix(e.Async), name, p.params(e.Params), p.block(e.Body))
	case *ast.Arrow:
		return p.arrow(e)
	case *ast.Call:
		return p.expr(e.Callee, levelCall) + "(" + p.list(e.Args) + ")"
	case *ast.New:
		callee := p.expr(e.Callee, levelCall)
		if containsCall(e.Callee) {
			callee = "(" + p.exprText(e.Callee) + ")"
		}
		return "new " + callee + "(" + p.list(e.Args) + ")"
	case *ast.Member:
		obj := p.expr(e.Object, levelCall)
		if _, ok := e.Object.(*ast.NumberLit); ok {
			obj = "(" + obj + ")"
		}
		if e.Computed {
			return obj + "[" + p.expr(e.Property, levelSequence) + "]"
		}
		return obj + "." + p.exprText(e.Property)
	case *ast.Binary:
		return p.binary(e)
	case *ast.Unary:
		operand := p.expr(e.X, levelUnary)
		if isWordOp(e.Op) {
			return e.Op + " " + operand
		}
		if (e.Op == "-" || e.Op == "+") && strings.HasPrefix(operand, e.Op) {
			return e.Op + " " + operand
		}
		return e.Op + operand
	case *ast.Update:
		if e.Prefix {
			return e.Op + p.expr(e.X, levelUnary)
		}
		return p.expr(e.X, levelPostfix) + e.Op
	case *ast.Assign:
		return p.expr(e.Target, levelPostfix) + " " + e.Op + " " + p.expr(e.Value, levelAssign)
	case *ast.Conditional:
		return p.expr(e.Test, levelConditional+1) + " ? " + p.expr(e.Cons, levelAssign) + " : " + p.expr(e.Alt, levelAssign)
	case *ast.Sequence:
		parts := make([]string, len(e.Exprs))
		for i, x := range e.Exprs {
			parts[i] = p.expr(x, levelAssign)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("/* unsupported expression %T */", e)
}

func (p *printer) list(items []ast.Expr) string {
	parts := make([]string, len(items))
	for i, x := range items {
		parts[i] = p.expr(x, levelAssign)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) binary(b *ast.Binary) string {
	lv := levelBinary + ast.Precedence(b.Op)
	leftMin, rightMin := lv, lv+1
	if b.Op == "**" {
		leftMin, rightMin = lv+1, lv
	}
	left := p.expr(b.Left, leftMin)
	right := p.expr(b.Right, rightMin)
	// `??` cannot be mixed with `||` or `&&` without parentheses.
	if mixesNullish(b.Op, b.Left) && !strings.HasPrefix(left, "(") {
		left = "(" + left + ")"
	}
	if mixesNullish(b.Op, b.Right) && !strings.HasPrefix(right, "(") {
		right = "(" + right + ")"
	}
	return left + " " + b.Op + " " + right
}

func mixesNullish(op string, child ast.Expr) bool {
	c, ok := child.(*ast.Binary)
	if !ok {
		return false
	}
	logical := func(o string) bool { return o == "||" || o == "&&" }
	return (op == "??" && logical(c.Op)) || (logical(op) && c.Op == "??")
}

func (p *printer) arrow(a *ast.Arrow) string {
	var params string
	if len(a.Params) == 1 {
		if id, ok := a.Params[0].(*ast.Ident); ok {
			params = id.Name
		}
	}
	if params == "" {
		params = "(" + p.params(a.Params) + ")"
	}
	params = asyncPrefix(a.Async) + params
	if a.Block != nil {
		return params + " => " + p.block(a.Block)
	}
	body := p.expr(a.Expr, levelAssign)
	if startsAmbiguous(a.Expr) {
		if _, ok := a.Expr.(*ast.ObjectLit); ok || !strings.HasPrefix(body, "(") {
			body = "(" + body + ")"
		}
	}
	return params + " => " + body
}

func (p *printer) object(o *ast.ObjectLit) string {
	if len(o.Entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Entries))
	for i, entry := range o.Entries {
		switch en := entry.(type) {
		case *ast.Spread:
			parts[i] = p.exprText(en)
		case *ast.Property:
			parts[i] = p.property(en)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (p *printer) property(prop *ast.Property) string {
	key := p.key(prop.Key, prop.Computed)
	switch prop.Kind {
	case ast.PropMethod, ast.PropGet, ast.PropSet:
		fn, _ := prop.Value.(*ast.Func)
		if fn == nil {
			break
		}
		prefix := ""
		if prop.Kind != ast.PropMethod {
			prefix = string(prop.Kind) + " "
		}
		return fmt.Sprintf("%s%s(%s) %s", prefix, key, p.params(fn.Params), p.block(fn.Body))
	}
	if prop.Shorthand {
		if id, ok := prop.Value.(*ast.Ident); ok && ast.IsIdent(prop.Key, id.Name) {
			return id.Name
		}
	}
	return key + ": " + p.expr(prop.Value, levelAssign)
}

func containsCall(e ast.Expr) bool {
	for {
		switch x := e.(type) {
		case *ast.Call:
			return true
		case *ast.Member:
			e = x.Object
		default:
			return false
		}
	}
}

func isWordOp(op string) bool {
	switch op {
	case "typeof", "void", "delete", "await":
		return true
	}
	return false
}

// Quote renders s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\x%02x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
