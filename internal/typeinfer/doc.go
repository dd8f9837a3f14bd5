// Package typeinfer provides best-effort type guesses for operands of
// overloadable operators.
//
// Nothing here is sound. The Inferrer interface exists so that a real,
// scope-aware checker can replace the heuristics without touching the
// overload resolver.
package typeinfer
