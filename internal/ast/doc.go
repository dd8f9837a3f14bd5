// Package ast defines the syntax tree shared by the parser, the lowering
// passes and the printer.
//
// The tree models the JavaScript subset CScript is layered on: statements,
// class members and expressions, plus the pipeline operator `|>` carried as
// an ordinary *Binary. Sugar constructs have no dedicated node types; they
// are recognized by shape (a *Sequence that spells a query, a *Call to
// `.match`, a *ClassProperty whose value is `{ get; set; }`).
//
// Nodes are owned by their parent. Rewriters replace a node in its parent
// slot and never share one node between two parents.
package ast
