package queryir

import (
	"fmt"

	"github.com/roach88/cscript/internal/ast"
)

// Keywords of the token encoding. Lower case, as written in source.
const (
	kwFrom    = "from"
	kwIn      = "in"
	kwWhere   = "where"
	kwSelect  = "select"
	kwOrderBy = "orderby"
	kwGroupBy = "groupby"
)

// Keys of the object encoding.
var objectKeys = map[string]bool{
	"from":    true,
	"where":   true,
	"select":  true,
	"orderBy": true,
	"groupBy": true,
}

// MatchSequence reports whether a comma expression spells a query: it has
// at least three terms and contains the identifiers from, in and select.
func MatchSequence(seq *ast.Sequence) bool {
	if seq == nil || len(seq.Exprs) < 3 {
		return false
	}
	var from, in, sel bool
	for _, e := range seq.Exprs {
		id, ok := e.(*ast.Ident)
		if !ok {
			continue
		}
		switch id.Name {
		case kwFrom:
			from = true
		case kwIn:
			in = true
		case kwSelect:
			sel = true
		}
	}
	return from && in && sel
}

// FromSequence decodes the token encoding. Each keyword takes the term
// right after it as its operand; `from` takes three terms (binding, `in`,
// source). The returned errors include those of Validate.
func FromSequence(seq *ast.Sequence) (*Descriptor, []ValidationError) {
	d := &Descriptor{Encoding: EncodingSequence}
	var errs []ValidationError
	terms := seq.Exprs
	n := len(terms)
	seenFrom := false

	for i := 0; i < n; i++ {
		id, ok := terms[i].(*ast.Ident)
		if !ok {
			errs = append(errs, termError(i, "expression is not attached to a query keyword"))
			continue
		}
		switch id.Name {
		case kwFrom:
			if seenFrom {
				errs = append(errs, ValidationError{Field: kwFrom, Message: "duplicate from clause", Code: ErrDuplicateClause})
				// Skip the clause so its terms are not reported again; the
				// first source and binding stay.
				i = min(i+3, n)
				continue
			}
			seenFrom = true
			if i+3 >= n {
				// Too short; Validate reports the missing source.
				i = n
				continue
			}
			if bind, ok := terms[i+1].(*ast.Ident); ok && ast.IsIdent(terms[i+2], kwIn) {
				d.Binding = bind.Name
			}
			if isClauseKeyword(terms[i+3]) {
				// `from, x, in, select, ...`: the source is missing and the
				// keyword still starts its own clause.
				i += 2
				continue
			}
			d.Source = terms[i+3]
			i += 3
		case kwWhere, kwSelect, kwOrderBy, kwGroupBy:
			if i+1 >= n || isClauseKeyword(terms[i+1]) {
				errs = append(errs, ValidationError{
					Field:   id.Name,
					Message: fmt.Sprintf("%s has no operand", id.Name),
					Code:    ErrMissingOperand,
				})
				continue
			}
			if err := d.setClause(id.Name, operand(terms[i+1])); err != nil {
				errs = append(errs, *err)
			}
			i++
		default:
			errs = append(errs, termError(i, fmt.Sprintf("unexpected term %q", id.Name)))
		}
	}

	return d, append(errs, Validate(d)...)
}

func isClauseKeyword(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	if !ok {
		return false
	}
	switch id.Name {
	case kwWhere, kwSelect, kwOrderBy, kwGroupBy:
		return true
	}
	return false
}

func termError(i int, msg string) ValidationError {
	return ValidationError{
		Field:   fmt.Sprintf("term[%d]", i),
		Message: msg,
		Code:    ErrUnexpectedTerm,
	}
}

func (d *Descriptor) setClause(kw string, op Operand) *ValidationError {
	dup := func() *ValidationError {
		return &ValidationError{Field: kw, Message: fmt.Sprintf("duplicate %s clause", kw), Code: ErrDuplicateClause}
	}
	switch kw {
	case kwWhere:
		d.Where = append(d.Where, Where{Pred: op})
	case kwSelect:
		if d.Select != nil {
			return dup()
		}
		d.Select = &Select{Projection: op}
	case kwOrderBy, "orderBy":
		if d.OrderBy != nil {
			return dup()
		}
		d.OrderBy = &OrderBy{Key: op}
	case kwGroupBy, "groupBy":
		if d.GroupBy != nil {
			return dup()
		}
		d.GroupBy = &GroupBy{Key: op}
	}
	return nil
}

// MatchObject reports whether an object literal spells a query: it has
// `from` and `select` keys and no entries other than the five query keys.
// Spreads, methods and computed keys disqualify it.
func MatchObject(obj *ast.ObjectLit) bool {
	if obj == nil {
		return false
	}
	var from, sel bool
	for _, e := range obj.Entries {
		name, ok := ast.PropertyName(e)
		if !ok || !objectKeys[name] {
			return false
		}
		if p := e.(*ast.Property); p.Shorthand {
			return false
		}
		switch name {
		case "from":
			from = true
		case "select":
			sel = true
		}
	}
	return from && sel
}

// FromObject decodes the object encoding. An array value for `where` holds
// several predicates. The binding variable is the parameter of the first
// clause written as a one-parameter arrow; other clause values are wrapped
// with it.
func FromObject(obj *ast.ObjectLit) (*Descriptor, []ValidationError) {
	d := &Descriptor{Encoding: EncodingObject}
	var errs []ValidationError
	var lambdas []ast.Expr

	for _, e := range obj.Entries {
		name, _ := ast.PropertyName(e)
		value := e.(*ast.Property).Value
		switch name {
		case "from":
			if d.Source != nil {
				errs = append(errs, ValidationError{Field: name, Message: "duplicate from clause", Code: ErrDuplicateClause})
			}
			d.Source = value
		case "where":
			preds := []ast.Expr{value}
			if arr, ok := value.(*ast.ArrayLit); ok {
				preds = arr.Elems
			}
			for _, pred := range preds {
				if _, ok := pred.(*ast.Spread); ok {
					errs = append(errs, ValidationError{Field: name, Message: "spread is not allowed in where list", Code: ErrUnexpectedTerm})
					continue
				}
				d.Where = append(d.Where, Where{Pred: operand(pred)})
				lambdas = append(lambdas, pred)
			}
		default:
			if err := d.setClause(name, operand(value)); err != nil {
				errs = append(errs, *err)
			}
			lambdas = append(lambdas, value)
		}
	}

	for _, e := range lambdas {
		if param, ok := LambdaParam(e); ok {
			d.Binding = param
			break
		}
	}

	return d, append(errs, Validate(d)...)
}
