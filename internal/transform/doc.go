// Package transform lowers CScript sugar to plain JavaScript syntax trees.
//
// A Transformer walks a parsed program once, children before parents, and
// offers every node to a fixed set of lowering rules:
//
//	x |> f                         → f(x)
//	v1 + v2                        → Vector.$operator_plus(v1, v2)
//	s.match({ 1: "one", _: "?" })  → ((t) => t === 1 ? "one" : true ? "?" : fail())(s)
//	withUpdate(p, { x: 1 })        → { ...p, x: 1 }
//	(from, x, in, xs, select, x)   → from(xs).select(x => x).toArray()
//	name = { get; set; }           → get name() / set name(value) over this._name
//
// Each rule can be switched off through Features; a disabled rule is never
// consulted. Rules report "not applicable" for shapes they do not own, and
// fail with an *Error wrapping ErrMalformed only when a recognized construct
// cannot be lowered.
//
// Lowered output contains none of the shapes the rules match, so running a
// Transformer over its own printed output changes nothing. The call a
// pipeline produces is offered to the call rules in the same step, so
// `p |> withUpdate` fails like `withUpdate(p)` does.
package transform
