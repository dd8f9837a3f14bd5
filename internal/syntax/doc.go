// Package syntax turns CScript source text into an *ast.Program.
//
// Scanning is done by a lexmachine DFA compiled once per process. Parsing is
// a hand-written recursive descent parser with precedence climbing for
// binary operators. The accepted language is a JavaScript subset plus:
//
//   - the pipeline operator `|>`, binding looser than every other binary
//     operator;
//   - `in` in operand position, read as a plain identifier, so that
//     `from, x, in, items, select, x` parses as a comma expression;
//   - `;` as an object literal separator, so that `{ get; set; }` parses as
//     an object with two shorthand entries.
//
// Regular expression literals, optional chaining and template literal
// interpolation are not supported; template literals are kept verbatim.
package syntax
