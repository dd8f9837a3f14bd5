// Package queryir normalizes the two written forms of a CScript query into
// one Descriptor.
//
// A query can be spelled as a comma expression whose bare identifiers act
// as keywords:
//
//	(from, x, in, items, where, x > 0, orderby, x, select, x * 2)
//
// or as an object literal bound to a variable:
//
//	const q = { from: items, where: [x => x > 0, x => x < 10], select: x => x };
//
// Both decode to a Descriptor, which the querychain package turns into a
// method chain. Decoding never guesses: a recognized query that lacks a
// source, a binding variable or a projection yields ValidationErrors and is
// reported as malformed by the caller.
//
// Descriptor clauses form a sealed interface (Where, GroupBy, OrderBy,
// Select) so chain builders can switch over them exhaustively.
package queryir
