package queryir

import "fmt"

// Validation error codes.
const (
	ErrMissingSource     = "Q001" // no source collection
	ErrMissingBinding    = "Q002" // no binding variable
	ErrMissingProjection = "Q003" // no select clause
	ErrMissingOperand    = "Q004" // keyword at end of sequence
	ErrDuplicateClause   = "Q005" // clause given twice
	ErrUnexpectedTerm    = "Q006" // term not attached to a keyword
)

// ValidationError describes why a recognized query cannot be lowered.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the descriptor invariants: one source, one binding
// variable and a projection. A query without a projection is malformed
// rather than an identity select.
//
// Validate is a pure function; it returns every violation found.
func Validate(d *Descriptor) []ValidationError {
	v := &validator{}
	if d == nil {
		v.add("query", ErrMissingSource, "nil descriptor")
		return v.errs
	}
	if d.Source == nil {
		v.add("from", ErrMissingSource, "query has no source")
	}
	if d.Binding == "" {
		v.add("from", ErrMissingBinding, "query has no binding variable")
	}
	if d.Select == nil || d.Select.Projection.Expr == nil {
		v.add("select", ErrMissingProjection, "query has no projection")
	}
	for i, w := range d.Where {
		if w.Pred.Expr == nil {
			v.add(fmt.Sprintf("where[%d]", i), ErrMissingOperand, "empty predicate")
		}
	}
	return v.errs
}

// validator accumulates errors during checking.
type validator struct {
	errs []ValidationError
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}
