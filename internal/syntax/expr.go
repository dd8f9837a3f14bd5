package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/cscript/internal/ast"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true, "^=": true,
	"&&=": true, "||=": true, "??=": true,
}

// expression parses a comma expression.
func (p *parser) expression() (ast.Expr, error) {
	first, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if !p.is(",") {
		return first, nil
	}
	seq := &ast.Sequence{Exprs: []ast.Expr{first}}
	for p.eat(",") {
		e, err := p.assignment()
		if err != nil {
			return nil, err
		}
		seq.Exprs = append(seq.Exprs, e)
	}
	return seq, nil
}

func (p *parser) assignment() (ast.Expr, error) {
	if arrow, ok, err := p.tryArrow(); ok || err != nil {
		return arrow, err
	}

	left, err := p.conditional()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.Kind == Punct && assignOps[t.Text] {
		p.next()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Op: t.Text, Target: left, Value: value}, nil
	}
	return left, nil
}

// tryArrow parses an arrow function when one starts at the current token.
func (p *parser) tryArrow() (ast.Expr, bool, error) {
	async := false
	off := 0
	if p.is("async") && !p.peekAt(1).NewlineBefore {
		n := p.peekAt(1)
		if (n.Kind == Ident && p.peekAt(2).Text == "=>") || (n.Kind == Punct && n.Text == "(" && p.arrowAhead(1)) {
			async = true
			off = 1
		}
	}

	t := p.peekAt(off)
	var params []ast.Expr
	switch {
	case t.Kind == Ident && p.peekAt(off+1).Kind == Punct && p.peekAt(off+1).Text == "=>":
		p.i += off + 1
		params = []ast.Expr{ast.ID(t.Text)}
	case t.Kind == Punct && t.Text == "(" && p.arrowAhead(off):
		p.i += off
		var err error
		if params, err = p.params(); err != nil {
			return nil, true, err
		}
	default:
		return nil, false, nil
	}

	if err := p.expect("=>"); err != nil {
		return nil, true, err
	}
	arrow := &ast.Arrow{Params: params, Async: async}
	if p.is("{") {
		body, err := p.block()
		if err != nil {
			return nil, true, err
		}
		arrow.Block = body
		return arrow, true, nil
	}
	saved := p.noIn
	p.noIn = false
	body, err := p.assignment()
	p.noIn = saved
	if err != nil {
		return nil, true, err
	}
	arrow.Expr = body
	return arrow, true, nil
}

// arrowAhead reports whether the parenthesis at offset off closes into `=>`.
func (p *parser) arrowAhead(off int) bool {
	depth := 0
	for j := p.i + off; j < len(p.toks); j++ {
		t := p.toks[j]
		if t.Kind == EOF {
			return false
		}
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				n := p.toks[j+1]
				return n.Kind == Punct && n.Text == "=>"
			}
		}
	}
	return false
}

func (p *parser) conditional() (ast.Expr, error) {
	test, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if !p.eat("?") {
		return test, nil
	}
	saved := p.noIn
	p.noIn = false
	cons, err := p.assignment()
	p.noIn = saved
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	alt, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Test: test, Cons: cons, Alt: alt}, nil
}

// binaryOp returns the operator at the current token and its precedence.
func (p *parser) binaryOp() (string, int) {
	t := p.peek()
	if t.Kind != Punct && t.Kind != Ident {
		return "", 0
	}
	if t.Kind == Ident && t.Text != "instanceof" && t.Text != "in" {
		return "", 0
	}
	if t.Text == "in" && p.noIn {
		return "", 0
	}
	return t.Text, ast.Precedence(t.Text)
}

// binary is a precedence-climbing loop over left-associative operators;
// `**` associates to the right.
func (p *parser) binary(minPrec int) (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, prec := p.binaryOp()
		if prec == 0 || prec <= minPrec {
			return left, nil
		}
		p.next()
		next := prec
		if op == "**" {
			next = prec - 1
		}
		right, err := p.binary(next)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) unary() (ast.Expr, error) {
	t := p.peek()
	switch {
	case t.Kind == Punct && (t.Text == "!" || t.Text == "-" || t.Text == "+" || t.Text == "~"),
		t.Kind == Ident && (t.Text == "typeof" || t.Text == "void" || t.Text == "delete" || t.Text == "await") && p.startsOperand(1):
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: t.Text, X: x}, nil
	case t.Kind == Punct && (t.Text == "++" || t.Text == "--"):
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Update{Op: t.Text, Prefix: true, X: x}, nil
	}

	x, err := p.callOrMember()
	if err != nil {
		return nil, err
	}
	if n := p.peek(); n.Kind == Punct && (n.Text == "++" || n.Text == "--") && !n.NewlineBefore {
		p.next()
		return &ast.Update{Op: n.Text, X: x}, nil
	}
	return x, nil
}

// startsOperand reports whether the token at offset n can begin an operand,
// so that `typeof` used as a plain name still parses.
func (p *parser) startsOperand(n int) bool {
	t := p.peekAt(n)
	switch t.Kind {
	case Ident, Number, String, Template:
		return true
	case Punct:
		switch t.Text {
		case "(", "[", "{", "!", "-", "+", "~", "++", "--":
			return true
		}
	}
	return false
}

func (p *parser) callOrMember() (ast.Expr, error) {
	var x ast.Expr
	var err error
	if p.is("new") && p.peekAt(1).Text != "." {
		x, err = p.newExpr()
	} else {
		x, err = p.primary()
	}
	if err != nil {
		return nil, err
	}
	return p.suffixes(x, true)
}

// suffixes applies member access, indexing and (when calls is set) call
// suffixes to x.
func (p *parser) suffixes(x ast.Expr, calls bool) (ast.Expr, error) {
	for {
		switch {
		case p.is("."):
			p.next()
			name := p.peek()
			if name.Kind != Ident {
				return nil, p.unexpected("property name")
			}
			p.next()
			x = ast.Dot(x, name.Text)
		case p.is("["):
			p.next()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &ast.Member{Object: x, Property: idx, Computed: true}
		case calls && p.is("("):
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			x = &ast.Call{Callee: x, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) newExpr() (ast.Expr, error) {
	p.next() // new
	var callee ast.Expr
	var err error
	if p.is("new") {
		callee, err = p.newExpr()
	} else {
		callee, err = p.primary()
	}
	if err != nil {
		return nil, err
	}
	if callee, err = p.suffixes(callee, false); err != nil {
		return nil, err
	}
	n := &ast.New{Callee: callee, Args: []ast.Expr{}}
	if p.is("(") {
		if n.Args, err = p.arguments(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *parser) arguments() ([]ast.Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	args := []ast.Expr{}
	for !p.eat(")") {
		arg, err := p.element()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.is(")") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	return args, nil
}

// element parses an argument or array element, allowing spread.
func (p *parser) element() (ast.Expr, error) {
	if p.eat("...") {
		arg, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Spread{Arg: arg}, nil
	}
	return p.assignment()
}

func (p *parser) primary() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case Number:
		p.next()
		return ast.Num(t.Text), nil
	case String:
		p.next()
		return unquote(t)
	case Template:
		p.next()
		return &ast.TemplateLit{Raw: t.Text}, nil
	case Ident:
		switch t.Text {
		case "true", "false":
			p.next()
			return &ast.BoolLit{Value: t.Text == "true"}, nil
		case "null":
			p.next()
			return &ast.NullLit{}, nil
		case "this":
			p.next()
			return &ast.This{}, nil
		case "function":
			return p.funcExpr(false)
		case "async":
			if p.peekAt(1).Text == "function" && !p.peekAt(1).NewlineBefore {
				p.next()
				return p.funcExpr(true)
			}
		}
		p.next()
		return ast.ID(t.Text), nil
	case Punct:
		switch t.Text {
		case "(":
			p.next()
			saved := p.noIn
			p.noIn = false
			e, err := p.expression()
			p.noIn = saved
			if err != nil {
				return nil, err
			}
			return e, p.expect(")")
		case "[":
			return p.arrayLit()
		case "{":
			return p.objectLit()
		}
	}
	return nil, p.unexpected("expression")
}

func (p *parser) funcExpr(async bool) (ast.Expr, error) {
	p.next() // function
	f := &ast.Func{Async: async}
	if t := p.peek(); t.Kind == Ident {
		p.next()
		f.Name = t.Text
	}
	var err error
	if f.Params, err = p.params(); err != nil {
		return nil, err
	}
	if f.Body, err = p.block(); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) arrayLit() (ast.Expr, error) {
	p.next() // [
	arr := &ast.ArrayLit{Elems: []ast.Expr{}}
	for !p.eat("]") {
		if p.atEnd() {
			return nil, p.unexpected(`"]"`)
		}
		e, err := p.element()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, e)
		if !p.is("]") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	return arr, nil
}

// objectLit parses an object literal. Entries may be separated by `;` as
// well as `,`, which lets `{ get; set; }` read as two shorthand entries.
func (p *parser) objectLit() (ast.Expr, error) {
	p.next() // {
	obj := &ast.ObjectLit{Entries: []ast.ObjectEntry{}}
	for !p.eat("}") {
		if p.atEnd() {
			return nil, p.unexpected(`"}"`)
		}
		if p.eat("...") {
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			obj.Entries = append(obj.Entries, &ast.Spread{Arg: arg})
		} else {
			prop, err := p.objectProperty()
			if err != nil {
				return nil, err
			}
			obj.Entries = append(obj.Entries, prop)
		}
		if !p.is("}") && !p.eat(",") && !p.eat(";") {
			return nil, p.unexpected(`"," or "}"`)
		}
	}
	return obj, nil
}

func (p *parser) objectProperty() (*ast.Property, error) {
	kind := ast.PropInit
	if (p.is("get") || p.is("set")) && p.startsKey(1) {
		kind = ast.PropKind(p.next().Text)
	}
	key, computed, err := p.propertyKey()
	if err != nil {
		return nil, err
	}

	if p.is("(") {
		if kind == ast.PropInit {
			kind = ast.PropMethod
		}
		fn := &ast.Func{}
		if fn.Params, err = p.params(); err != nil {
			return nil, err
		}
		if fn.Body, err = p.block(); err != nil {
			return nil, err
		}
		return &ast.Property{Kind: kind, Key: key, Computed: computed, Value: fn}, nil
	}
	if kind != ast.PropInit {
		return nil, p.unexpected(`"("`)
	}

	if p.eat(":") {
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Property{Kind: ast.PropInit, Key: key, Computed: computed, Value: value}, nil
	}

	id, ok := key.(*ast.Ident)
	if !ok || computed {
		return nil, p.unexpected(`":"`)
	}
	return &ast.Property{Kind: ast.PropInit, Key: id, Shorthand: true, Value: ast.ID(id.Name)}, nil
}

// unquote decodes a single- or double-quoted string token.
func unquote(t Token) (*ast.StringLit, error) {
	body := t.Text[1 : len(t.Text)-1]
	if !strings.ContainsRune(body, '\\') {
		return ast.Str(body), nil
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case 'x', 'u':
			width := 2
			if e == 'u' {
				width = 4
			}
			if i+1+width > len(body) {
				return nil, &Error{Code: CodeScan, Line: t.Line, Column: t.Column, Message: "truncated escape sequence"}
			}
			n, err := strconv.ParseUint(body[i+1:i+1+width], 16, 32)
			if err != nil {
				return nil, &Error{Code: CodeScan, Line: t.Line, Column: t.Column, Message: "invalid escape sequence"}
			}
			var buf [utf8.UTFMax]byte
			sb.Write(buf[:utf8.EncodeRune(buf[:], rune(n))])
			i += width
		default:
			sb.WriteByte(e)
		}
	}
	return ast.Str(sb.String()), nil
}
