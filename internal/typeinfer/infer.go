package typeinfer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/roach88/cscript/internal/ast"
)

// Inferrer guesses the declared type of an expression. It returns "" when
// it cannot tell.
type Inferrer interface {
	InferType(e ast.Expr) string
}

// Factory builds an Inferrer for one program. known lists the type names
// that declare operator overloads.
type Factory func(known []string, prog *ast.Program) Inferrer

// HeuristicFactory builds the naming-convention inferrer.
func HeuristicFactory(known []string, _ *ast.Program) Inferrer {
	return NewHeuristic(known)
}

// BindingFactory builds the binding-aware inferrer.
func BindingFactory(known []string, prog *ast.Program) Inferrer {
	return NewBindingInferrer(known, prog)
}

// Heuristic infers types from expression shape and identifier names only.
// It has no notion of scope and is wrong often enough that callers must
// treat a miss as "leave the expression alone".
//
// Rules:
//   - new T(...)          → T
//   - T.f(...)            → T, when T is a known type
//   - o.p, o[k]           → type of o
//   - identifier          → naming convention (see fromName)
//   - anything else       → unknown
type Heuristic struct {
	known []typeName
}

type typeName struct {
	name  string
	words []string
}

// NewHeuristic returns a Heuristic over the given known type names.
func NewHeuristic(known []string) *Heuristic {
	h := &Heuristic{}
	seen := map[string]bool{}
	for _, k := range known {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		h.known = append(h.known, typeName{name: k, words: words(k)})
	}
	sort.Slice(h.known, func(i, j int) bool { return h.known[i].name < h.known[j].name })
	return h
}

// InferType implements Inferrer.
func (h *Heuristic) InferType(e ast.Expr) string {
	return h.infer(e, h.fromName)
}

func (h *Heuristic) infer(e ast.Expr, ident func(string) string) string {
	switch x := e.(type) {
	case *ast.New:
		if id, ok := x.Callee.(*ast.Ident); ok {
			return id.Name
		}
	case *ast.Ident:
		return ident(x.Name)
	case *ast.Call:
		if m, ok := x.Callee.(*ast.Member); ok && !m.Computed {
			if id, ok := m.Object.(*ast.Ident); ok && h.isKnown(id.Name) {
				return id.Name
			}
		}
	case *ast.Member:
		return h.infer(x.Object, ident)
	}
	return ""
}

func (h *Heuristic) isKnown(name string) bool {
	for _, k := range h.known {
		if k.name == name {
			return true
		}
	}
	return false
}

// fromName applies the naming convention:
//
//   - the words of a known type name appear in the identifier, e.g.
//     `vector`, `velocityVector` or `vector_a` for Vector (camelCase and
//     snake_case words, trailing digits ignored);
//   - or the identifier is one letter plus optional digits, e.g. `v1`, and
//     exactly one known type starts with that letter.
//
// Identifiers starting with `__` are compiler temporaries and never match.
func (h *Heuristic) fromName(name string) string {
	if strings.HasPrefix(name, "__") || len(h.known) == 0 {
		return ""
	}

	idWords := words(name)
	best := ""
	bestLen := 0
	for _, k := range h.known {
		if len(k.words) > bestLen && containsRun(idWords, k.words) {
			best, bestLen = k.name, len(k.words)
		}
	}
	if best != "" {
		return best
	}

	if initial, ok := shortName(name); ok {
		match := ""
		for _, k := range h.known {
			if unicode.ToLower(rune(k.name[0])) == initial {
				if match != "" {
					return ""
				}
				match = k.name
			}
		}
		return match
	}
	return ""
}

// shortName reports whether name is a lower-case letter followed only by
// digits, returning the letter.
func shortName(name string) (rune, bool) {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return 0, false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	return rune(name[0]), true
}

// words splits an identifier into lower-case words at camelCase humps and
// underscores, dropping trailing digits from each word.
func words(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		w := strings.TrimRightFunc(string(cur), unicode.IsDigit)
		if w != "" {
			out = append(out, strings.ToLower(w))
		}
		cur = cur[:0]
	}
	var prev rune
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// containsRun reports whether needle occurs as a contiguous run in hay.
func containsRun(hay, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(hay) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j := range needle {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
