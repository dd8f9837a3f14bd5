package syntax

import (
	"fmt"

	"github.com/roach88/cscript/internal/ast"
)

// Parse parses a CScript source file.
func Parse(src string) (*ast.Program, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// ParseExpr parses src as a single expression.
func ParseExpr(src string) (ast.Expr, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.eat(";")
	if !p.atEnd() {
		return nil, p.unexpected("end of expression")
	}
	return e, nil
}

type parser struct {
	toks []Token
	i    int
	// noIn disables `in` as a binary operator while parsing a for-loop head.
	noIn bool
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() Token {
	t := p.toks[p.i]
	if t.Kind != EOF {
		p.i++
	}
	return t
}

func (p *parser) atEnd() bool { return p.peek().Kind == EOF }

// is reports whether the current token is the punctuator or word text.
func (p *parser) is(text string) bool {
	t := p.peek()
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

func (p *parser) eat(text string) bool {
	if p.is(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if p.eat(text) {
		return nil
	}
	return p.unexpected(fmt.Sprintf("%q", text))
}

func (p *parser) unexpected(want string) error {
	t := p.peek()
	got := fmt.Sprintf("%q", t.Text)
	if t.Kind == EOF {
		got = "end of input"
	}
	return &Error{Code: CodeParse, Line: t.Line, Column: t.Column, Message: fmt.Sprintf("expected %s, found %s", want, got)}
}

// semicolon consumes a statement terminator, applying automatic semicolon
// insertion before `}`, at end of input and across line breaks.
func (p *parser) semicolon() error {
	if p.eat(";") {
		return nil
	}
	if p.is("}") || p.atEnd() || p.peek().NewlineBefore {
		return nil
	}
	return p.unexpected(`";"`)
}

func (p *parser) program() (*ast.Program, error) {
	prog := &ast.Program{Body: []ast.Stmt{}}
	for !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, s)
	}
	return prog, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	t := p.peek()
	if t.Kind == Punct {
		switch t.Text {
		case "{":
			return p.block()
		case ";":
			p.next()
			return &ast.Empty{}, nil
		}
	}
	if t.Kind == Ident {
		switch t.Text {
		case "var", "let", "const":
			d, err := p.varDecl()
			if err != nil {
				return nil, err
			}
			return d, p.semicolon()
		case "function":
			return p.funcDecl(false)
		case "async":
			if p.peekAt(1).Text == "function" && !p.peekAt(1).NewlineBefore {
				p.next()
				return p.funcDecl(true)
			}
		case "class":
			return p.classDecl()
		case "return":
			return p.returnStmt()
		case "if":
			return p.ifStmt()
		case "for":
			return p.forStmt()
		case "while":
			return p.whileStmt()
		case "throw":
			p.next()
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &ast.Throw{Arg: arg}, p.semicolon()
		case "break":
			p.next()
			return &ast.Break{}, p.semicolon()
		case "continue":
			p.next()
			return &ast.Continue{}, p.semicolon()
		}
	}

	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x}, p.semicolon()
}

func (p *parser) block() (*ast.Block, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	b := &ast.Block{Body: []ast.Stmt{}}
	for !p.is("}") {
		if p.atEnd() {
			return nil, p.unexpected(`"}"`)
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		b.Body = append(b.Body, s)
	}
	p.next()
	return b, nil
}

func (p *parser) varDecl() (*ast.VarDecl, error) {
	d := &ast.VarDecl{Kind: p.next().Text}
	for {
		target, err := p.bindingTarget()
		if err != nil {
			return nil, err
		}
		decl := &ast.VarDeclarator{Target: target}
		if p.eat("=") {
			if decl.Init, err = p.assignment(); err != nil {
				return nil, err
			}
		}
		d.Decls = append(d.Decls, decl)
		if !p.eat(",") {
			return d, nil
		}
	}
}

// bindingTarget parses an identifier or a destructuring pattern.
func (p *parser) bindingTarget() (ast.Expr, error) {
	t := p.peek()
	switch {
	case t.Kind == Ident:
		p.next()
		return ast.ID(t.Text), nil
	case p.is("{"), p.is("["):
		return p.primary()
	}
	return nil, p.unexpected("binding name")
}

func (p *parser) funcDecl(async bool) (*ast.FuncDecl, error) {
	p.next() // function
	name := p.peek()
	if name.Kind != Ident {
		return nil, p.unexpected("function name")
	}
	p.next()
	params, err := p.params()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Name: name.Text, Params: params, Body: body, Async: async}, nil
}

// params parses a parenthesized parameter list.
func (p *parser) params() ([]ast.Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	out := []ast.Expr{}
	for !p.eat(")") {
		var param ast.Expr
		if p.eat("...") {
			target, err := p.bindingTarget()
			if err != nil {
				return nil, err
			}
			param = &ast.Spread{Arg: target}
		} else {
			target, err := p.bindingTarget()
			if err != nil {
				return nil, err
			}
			param = target
			if p.eat("=") {
				def, err := p.assignment()
				if err != nil {
					return nil, err
				}
				param = &ast.Assign{Op: "=", Target: target, Value: def}
			}
		}
		out = append(out, param)
		if !p.is(")") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (p *parser) classDecl() (*ast.ClassDecl, error) {
	p.next() // class
	name := p.peek()
	if name.Kind != Ident {
		return nil, p.unexpected("class name")
	}
	p.next()
	c := &ast.ClassDecl{Name: name.Text, Members: []ast.ClassMember{}}
	if p.eat("extends") {
		sup, err := p.callOrMember()
		if err != nil {
			return nil, err
		}
		c.SuperClass = sup
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for !p.eat("}") {
		if p.atEnd() {
			return nil, p.unexpected(`"}"`)
		}
		if p.eat(";") {
			continue
		}
		m, err := p.classMember()
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, m)
	}
	return c, nil
}

// startsKey reports whether the token at offset n can begin a member key.
func (p *parser) startsKey(n int) bool {
	t := p.peekAt(n)
	return t.Kind == Ident || t.Kind == String || t.Kind == Number || (t.Kind == Punct && t.Text == "[")
}

func (p *parser) classMember() (ast.ClassMember, error) {
	static := false
	if p.is("static") && p.startsKey(1) {
		p.next()
		static = true
	}
	kind := ast.MethodPlain
	if (p.is("get") || p.is("set")) && p.startsKey(1) {
		kind = ast.MethodKind(p.next().Text)
	}

	key, computed, err := p.propertyKey()
	if err != nil {
		return nil, err
	}

	if p.is("(") {
		if kind == ast.MethodPlain && !static && !computed && ast.IsIdent(key, "constructor") {
			kind = ast.MethodConstructor
		}
		params, err := p.params()
		if err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.ClassMethod{Kind: kind, Static: static, Key: key, Computed: computed, Params: params, Body: body}, nil
	}
	if kind != ast.MethodPlain {
		return nil, p.unexpected(`"("`)
	}

	prop := &ast.ClassProperty{Static: static, Key: key, Computed: computed}
	if p.eat("=") {
		if prop.Value, err = p.assignment(); err != nil {
			return nil, err
		}
	}
	return prop, p.semicolon()
}

// propertyKey parses an identifier, string, number or computed `[expr]` key.
func (p *parser) propertyKey() (ast.Expr, bool, error) {
	t := p.peek()
	switch t.Kind {
	case Ident:
		p.next()
		return ast.ID(t.Text), false, nil
	case String:
		p.next()
		s, err := unquote(t)
		return s, false, err
	case Number:
		p.next()
		return ast.Num(t.Text), false, nil
	}
	if p.eat("[") {
		k, err := p.assignment()
		if err != nil {
			return nil, false, err
		}
		return k, true, p.expect("]")
	}
	return nil, false, p.unexpected("property name")
}

func (p *parser) returnStmt() (*ast.Return, error) {
	p.next()
	r := &ast.Return{}
	if p.is(";") || p.is("}") || p.atEnd() || p.peek().NewlineBefore {
		return r, p.semicolon()
	}
	arg, err := p.expression()
	if err != nil {
		return nil, err
	}
	r.Arg = arg
	return r, p.semicolon()
}

func (p *parser) ifStmt() (*ast.If, error) {
	p.next()
	test, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	cons, err := p.statement()
	if err != nil {
		return nil, err
	}
	s := &ast.If{Test: test, Cons: cons}
	if p.eat("else") {
		if s.Alt, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) parenExpr() (ast.Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	return e, p.expect(")")
}

func (p *parser) whileStmt() (*ast.While, error) {
	p.next()
	test, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Test: test, Body: body}, nil
}

func (p *parser) forStmt() (ast.Stmt, error) {
	p.next()
	if err := p.expect("("); err != nil {
		return nil, err
	}

	var init ast.Stmt
	p.noIn = true
	switch {
	case p.is(";"):
	case p.is("var"), p.is("let"), p.is("const"):
		d, err := p.varDecl()
		if err != nil {
			p.noIn = false
			return nil, err
		}
		init = d
	default:
		x, err := p.expression()
		if err != nil {
			p.noIn = false
			return nil, err
		}
		init = &ast.ExprStmt{X: x}
	}
	p.noIn = false

	if init != nil && (p.is("of") || p.is("in")) {
		of := p.next().Text == "of"
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		return &ast.ForIn{Left: init, Of: of, Right: right, Body: body}, nil
	}

	s := &ast.For{Init: init}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	var err error
	if !p.is(";") {
		if s.Test, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if !p.is(")") {
		if s.Update, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if s.Body, err = p.statement(); err != nil {
		return nil, err
	}
	return s, nil
}
