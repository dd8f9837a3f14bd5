// Package printer renders an *ast.Program back to JavaScript source.
package printer
