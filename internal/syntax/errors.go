package syntax

import "fmt"

// Error codes (E100-E199).
const (
	CodeScan  = "E101" // input the lexer cannot tokenize
	CodeParse = "E102" // token sequence the parser does not accept
)

// Error is a scan or parse failure at a source position.
type Error struct {
	Code    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}
