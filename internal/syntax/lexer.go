package syntax

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// TokenKind classifies scanned tokens.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Number
	String
	Template
	Punct
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Template:
		return "template"
	case Punct:
		return "punctuator"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a scanned lexeme with its position (1-based line and column).
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
	// NewlineBefore is set when a line break separates this token from the
	// previous one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// punctuators are matched literally. Longest match wins, so `===` beats `==`.
var punctuators = []string{
	"|>", "=>", "...", "??", "??=",
	"===", "!==", "==", "!=", "<=", ">=", "<", ">",
	"&&", "||", "&&=", "||=", "!", "~",
	"+", "-", "*", "/", "%", "**",
	"++", "--", "<<", ">>", ">>>",
	"&", "|", "^",
	"=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=", "&=", "|=", "^=",
	"(", ")", "[", "]", "{", "}",
	",", ";", ":", "?", ".",
}

var (
	lexerOnce sync.Once
	lexer     *lexmachine.Lexer
	lexerErr  error
)

// getLexer compiles the DFA once per process.
func getLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lx := lexmachine.NewLexer()
		lx.Add([]byte("( |\t|\n|\r)+"), skip)
		lx.Add([]byte("//[^\n]*"), skip)
		lx.Add([]byte(`/\*([^\*]|\*+[^\*/])*\*+/`), skip)
		lx.Add([]byte(`[a-zA-Z_\$][a-zA-Z0-9_\$]*`), token(Ident))
		lx.Add([]byte(`[0-9]+(\.[0-9]+)?([eE][\+\-]?[0-9]+)?`), token(Number))
		lx.Add([]byte(`\.[0-9]+([eE][\+\-]?[0-9]+)?`), token(Number))
		lx.Add([]byte(`0[xX][0-9a-fA-F]+`), token(Number))
		lx.Add([]byte("\"([^\"\\\\\n]|\\\\[^\n])*\""), token(String))
		lx.Add([]byte("'([^'\\\\\n]|\\\\[^\n])*'"), token(String))
		lx.Add([]byte("`([^`\\\\]|\\\\[^\n])*`"), token(Template))
		for _, p := range punctuators {
			lx.Add([]byte(`\`+strings.Join(strings.Split(p, ""), `\`)), token(Punct))
		}
		lexerErr = lx.Compile()
		lexer = lx
	})
	return lexer, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func token(kind TokenKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(kind), string(m.Bytes), m), nil
	}
}

// Tokenize scans src into tokens, ending with an EOF token.
func Tokenize(src string) ([]Token, error) {
	lx, err := getLexer()
	if err != nil {
		return nil, fmt.Errorf("compiling lexer: %w", err)
	}
	scanner, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	var toks []Token
	prevLine := 1
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if err != nil {
			var ui *machines.UnconsumedInput
			if errors.As(err, &ui) {
				return nil, &Error{
					Code:    CodeScan,
					Line:    ui.FailLine,
					Column:  ui.FailColumn,
					Message: fmt.Sprintf("unexpected character %q", excerpt(src, ui.FailTC)),
				}
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		toks = append(toks, Token{
			Kind:          TokenKind(t.Type),
			Text:          string(t.Lexeme),
			Line:          t.StartLine,
			Column:        t.StartColumn,
			NewlineBefore: len(toks) > 0 && t.StartLine > prevLine,
		})
		prevLine = t.EndLine
	}
	eofLine := prevLine
	if n := strings.Count(src, "\n"); n+1 > eofLine {
		eofLine = n + 1
	}
	toks = append(toks, Token{Kind: EOF, Line: eofLine, NewlineBefore: true})
	return toks, nil
}

func excerpt(src string, at int) string {
	if at < 0 || at >= len(src) {
		return ""
	}
	r := []rune(src[at:])
	return string(r[:1])
}
