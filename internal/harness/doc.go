// Package harness runs CScript conformance cases.
//
// A case is a YAML file:
//
//	name: match_range
//	description: range keys lower to inclusive bounds
//	features:
//	  operatorOverloading: false
//	input: |
//	  const grade = score.match({ "90..100": "A", _: "F" });
//	contains:
//	  - "__matchValue >= 90 && __matchValue <= 100"
//	stats:
//	  matchExpressions: 1
//
// A case expects either an error (`error: {code: E203}`), an exact output
// (`expect`), or, when neither is given, output equal to its golden file.
// Every successful case is also transpiled a second time and must come
// back unchanged.
//
// `cscript test <dir>` runs a directory of cases; `--update` rewrites the
// golden files.
package harness
