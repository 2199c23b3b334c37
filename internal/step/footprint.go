package step

import (
	"path/filepath"
	"sort"
	"strings"
)

// Footprint is the set of filesystem resources a step touches. Each slice is
// cleaned, de-duplicated and sorted.
type Footprint struct {
	CreatesFiles []string
	CreatesDirs  []string
	ReadsFiles   []string
	RequiresDirs []string
}

// footprintRule derives the type-specific part of a footprint. Rules must
// tolerate missing arguments; validation reports those separately.
type footprintRule func(s Step) Footprint

var footprintRules = map[Type]footprintRule{
	Mkdir: func(s Step) Footprint {
		return Footprint{CreatesDirs: nonEmpty(s.Arg(0))}
	},
	Touch: func(s Step) Footprint {
		return Footprint{
			CreatesFiles: nonEmpty(s.Arg(0)),
			RequiresDirs: parents(s.Arg(0)),
		}
	},
	Copy:     transferRule,
	Move:     transferRule,
	CopyTree: treeRule,
	MoveTree: treeRule,
	Remove: func(s Step) Footprint {
		return Footprint{ReadsFiles: nonEmpty(s.Arg(0))}
	},
	RmTree: func(s Step) Footprint {
		return Footprint{ReadsFiles: nonEmpty(s.Arg(0))}
	},
}

func transferRule(s Step) Footprint {
	return Footprint{
		ReadsFiles:   nonEmpty(s.Arg(0)),
		CreatesFiles: nonEmpty(s.Arg(1)),
		RequiresDirs: parents(s.Arg(1)),
	}
}

func treeRule(s Step) Footprint {
	return Footprint{
		ReadsFiles:  nonEmpty(s.Arg(0)),
		CreatesDirs: nonEmpty(s.Arg(1)),
	}
}

// FootprintOf computes the resource footprint of s from the fixed rule table.
// Any step with a working directory additionally requires that directory.
func FootprintOf(s Step) Footprint {
	var fp Footprint
	if rule, ok := footprintRules[s.Type]; ok {
		fp = rule(s)
	}
	if s.Cwd != "" {
		fp.RequiresDirs = append(fp.RequiresDirs, s.Cwd)
	}
	return Footprint{
		CreatesFiles: normalize(fp.CreatesFiles),
		CreatesDirs:  normalize(fp.CreatesDirs),
		ReadsFiles:   normalize(fp.ReadsFiles),
		RequiresDirs: normalize(fp.RequiresDirs),
	}
}

// IsEmpty reports whether the footprint touches no resource at all.
func (f Footprint) IsEmpty() bool {
	return len(f.CreatesFiles) == 0 && len(f.CreatesDirs) == 0 && len(f.ReadsFiles) == 0 && len(f.RequiresDirs) == 0
}

// Resources returns every distinct path mentioned by the footprint.
func (f Footprint) Resources() []string {
	all := make([]string, 0, len(f.CreatesFiles)+len(f.CreatesDirs)+len(f.ReadsFiles)+len(f.RequiresDirs))
	all = append(all, f.CreatesFiles...)
	all = append(all, f.CreatesDirs...)
	all = append(all, f.ReadsFiles...)
	all = append(all, f.RequiresDirs...)
	return normalize(all)
}

// CleanPath normalizes a path the same way footprints do.
func CleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// ParentDir returns the parent directory of p. The second result is false
// when the parent is the current directory or the filesystem root, which
// are always assumed to exist.
func ParentDir(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	parent := filepath.Dir(filepath.Clean(p))
	if parent == "." || parent == string(filepath.Separator) {
		return "", false
	}
	return parent, true
}

// IsAncestor reports whether dir is a strict path-ancestor of path. Both are
// resolved to absolute paths first; if that fails the check falls back to a
// string prefix match with a trailing separator.
func IsAncestor(dir, path string) bool {
	absDir, errDir := filepath.Abs(dir)
	absPath, errPath := filepath.Abs(path)
	if errDir == nil && errPath == nil {
		rel, err := filepath.Rel(absDir, absPath)
		if err == nil {
			return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
		}
	}
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	return strings.HasPrefix(path, prefix)
}

// Intersect returns the sorted common elements of two sorted footprint sets.
func Intersect(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func nonEmpty(p string) []string {
	if p == "" {
		return nil
	}
	return []string{p}
}

func parents(p string) []string {
	if parent, ok := ParentDir(p); ok {
		return []string{parent}
	}
	return nil
}

func normalize(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = CleanPath(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
