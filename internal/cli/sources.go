package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// findSources returns the source files of the project in lexical order:
// every file under the root matching an include pattern and no exclude
// pattern, plus the explicit files list. Patterns are slash-separated and
// relative to the root; `**` matches any number of directories.
func (p *project) findSources() ([]string, error) {
	set := treeset.NewWithStringComparator()

	err := filepath.WalkDir(p.root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.root, file)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (strings.HasPrefix(d.Name(), ".") || p.excludedDir(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(p.cfg.Include, rel) && !matchAny(p.cfg.Exclude, rel) {
			set.Add(file)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.root, err)
	}

	for _, f := range p.cfg.Files {
		file := p.resolve(f)
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("files: %w", err)
		}
		set.Add(file)
	}

	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out, nil
}

// excludedDir reports whether an exclude pattern of the form `dir/**`
// covers rel, so the walk can skip it.
func (p *project) excludedDir(rel string) bool {
	for _, ex := range p.cfg.Exclude {
		if prefix, ok := strings.CutSuffix(ex, "/**"); ok && matchGlob(prefix, rel) {
			return true
		}
	}
	return false
}

// outputPath maps a source file to its file under outDir. With
// preserveStructure the path relative to the root is kept, otherwise
// only the base name.
func (p *project) outputPath(src string) string {
	rel, err := filepath.Rel(p.root, src)
	if err != nil || strings.HasPrefix(rel, "..") || !p.cfg.Output.PreserveStructure {
		rel = filepath.Base(src)
	}
	ext := p.cfg.Output.Extension
	if ext == "" {
		ext = ".js"
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(p.resolve(p.cfg.CompilerOptions.OutDir), rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matchGlob(pat, rel) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated path against a pattern whose
// segments follow path.Match, with `**` standing for zero or more
// segments. A malformed segment never matches.
func matchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			for i := 0; i <= len(name); i++ {
				if matchSegments(pat[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(pat[0], name[0])
		if err != nil || !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}
