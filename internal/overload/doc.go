// Package overload implements user-defined binary operators.
//
// A class opts in by declaring static methods named `$operator_<tag>`:
//
//	class Vector {
//	  static $operator_plus(a, b) { return new Vector(a.x + b.x, a.y + b.y); }
//	}
//
// Collect gathers these into a Registry before any rewriting happens. The
// Resolver then turns `v1 + v2` into `Vector.$operator_plus(v1, v2)` when
// the typeinfer heuristics say an operand is a Vector. Operands are tried
// left first, then right, so `2 * v` also resolves when Vector overloads
// multiply. Argument order is never swapped.
package overload
