package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/cscript/internal/queryir"
)

// ErrMalformed is the sentinel every lowering error wraps.
var ErrMalformed = errors.New("malformed input")

// Lowering error codes (E200-E299).
const (
	CodeMatchArgument   = "E201" // .match() argument is not an object literal
	CodeMatchPattern    = "E202" // clause object holds a spread or method
	CodeUpdateArity     = "E203" // withUpdate() without exactly two arguments
	CodeQuerySource     = "E204" // query without a source
	CodeQueryBinding    = "E205" // query without a binding variable
	CodeQueryProjection = "E206" // query without select
	CodeQueryClause     = "E207" // stray, duplicate or empty query clause
)

// Error is a construct that was recognized but cannot be lowered. The
// transform stops at the first one; the partly rewritten tree must be
// discarded.
type Error struct {
	Code    string  `json:"code"`
	Feature Feature `json:"feature"`
	Message string  `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Feature, e.Message)
}

// Unwrap makes errors.Is(err, ErrMalformed) hold.
func (e *Error) Unwrap() error {
	return ErrMalformed
}

// IsMalformed reports whether err is a lowering error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func malformed(f Feature, code, format string, args ...any) *Error {
	return &Error{Code: code, Feature: f, Message: fmt.Sprintf(format, args...)}
}

// queryCodeOrder ranks validation codes: a missing source, binding or
// projection outranks a stray clause, whatever the order found.
var queryCodeOrder = []string{
	queryir.ErrMissingSource,
	queryir.ErrMissingBinding,
	queryir.ErrMissingProjection,
}

// queryError folds descriptor validation errors into one lowering error.
func queryError(errs []queryir.ValidationError) *Error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Field + ": " + e.Message
	}
	code := errs[0].Code
rank:
	for _, want := range queryCodeOrder {
		for _, e := range errs {
			if e.Code == want {
				code = want
				break rank
			}
		}
	}
	return malformed(FeatureQuery, queryCode(code), "%s", strings.Join(msgs, "; "))
}

func queryCode(code string) string {
	switch code {
	case queryir.ErrMissingSource:
		return CodeQuerySource
	case queryir.ErrMissingBinding:
		return CodeQueryBinding
	case queryir.ErrMissingProjection:
		return CodeQueryProjection
	default:
		return CodeQueryClause
	}
}
