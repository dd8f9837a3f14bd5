// Package version holds the release identifiers of the cscript tool.
package version

const (
	// Tool is the cscript release. csconfig `requires` constraints are
	// checked against it.
	Tool = "0.3.0"

	// Language is the CScript dialect revision the transformer accepts.
	Language = "1"
)
