package overload

import "strings"

// Operator is the normalized name of an overloadable binary operator.
type Operator string

const (
	OpPlus               Operator = "plus"
	OpMinus              Operator = "minus"
	OpMultiply           Operator = "multiply"
	OpDivide             Operator = "divide"
	OpModulo             Operator = "modulo"
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpLessThan           Operator = "lessThan"
	OpGreaterThan        Operator = "greaterThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
)

// MethodPrefix marks a static method as an operator overload:
// `static $operator_plus(a, b)`.
const MethodPrefix = "$operator_"

var bySymbol = map[string]Operator{
	"+":  OpPlus,
	"-":  OpMinus,
	"*":  OpMultiply,
	"/":  OpDivide,
	"%":  OpModulo,
	"==": OpEquals,
	"!=": OpNotEquals,
	"<":  OpLessThan,
	">":  OpGreaterThan,
	"<=": OpLessThanOrEqual,
	">=": OpGreaterThanOrEqual,
}

var symbols = func() map[Operator]string {
	m := make(map[Operator]string, len(bySymbol))
	for s, op := range bySymbol {
		m[op] = s
	}
	return m
}()

// FromSymbol maps a binary operator token to its overload name. Strict
// equality, logical and bitwise operators are not overloadable.
func FromSymbol(sym string) (Operator, bool) {
	op, ok := bySymbol[sym]
	return op, ok
}

// Symbol returns the operator token, e.g. "+" for OpPlus.
func (op Operator) Symbol() string {
	return symbols[op]
}

// Valid reports whether op is one of the eleven overloadable operators.
func (op Operator) Valid() bool {
	_, ok := symbols[op]
	return ok
}

// ParseMethodName extracts the operator from a `$operator_<tag>` method
// name. ok is false when the prefix is missing; valid is false when the tag
// names no overloadable operator.
func ParseMethodName(name string) (op Operator, ok, valid bool) {
	if !strings.HasPrefix(name, MethodPrefix) {
		return "", false, false
	}
	op = Operator(strings.TrimPrefix(name, MethodPrefix))
	return op, true, op.Valid()
}
