package resolver

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/vk/contestflow/internal/step"
)

// tracker is the running set of directories known to exist at a given point
// of the step sequence.
type tracker struct {
	dirs mapset.Set[string]
}

func newTracker(existing []string) *tracker {
	t := &tracker{dirs: mapset.NewThreadUnsafeSet[string]()}
	for _, d := range existing {
		t.establish(d)
	}
	return t
}

// has reports whether dir is established. The current directory and the
// filesystem root always exist.
func (t *tracker) has(dir string) bool {
	dir = step.CleanPath(dir)
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return true
	}
	return t.dirs.Contains(dir)
}

// establish marks dir and all of its ancestors as existing, mirroring
// `mkdir -p`.
func (t *tracker) establish(dir string) {
	dir = step.CleanPath(dir)
	for dir != "" && dir != "." && dir != string(filepath.Separator) {
		t.dirs.Add(dir)
		parent, ok := step.ParentDir(dir)
		if !ok {
			return
		}
		dir = parent
	}
}

// forget drops dir from the set. With recursive it also drops every
// descendant.
func (t *tracker) forget(dir string, recursive bool) {
	dir = step.CleanPath(dir)
	t.dirs.Remove(dir)
	if !recursive {
		return
	}
	prefix := dir + string(filepath.Separator)
	for _, d := range t.dirs.ToSlice() {
		if strings.HasPrefix(d, prefix) {
			t.dirs.Remove(d)
		}
	}
}

// apply updates the set with the effects of s.
func (t *tracker) apply(s step.Step) {
	fp := step.FootprintOf(s)
	switch s.Type {
	case step.Remove:
		for _, p := range fp.ReadsFiles {
			t.forget(p, false)
		}
		return
	case step.RmTree:
		for _, p := range fp.ReadsFiles {
			t.forget(p, true)
		}
		return
	}
	for _, d := range fp.CreatesDirs {
		t.establish(d)
	}
	for _, f := range fp.CreatesFiles {
		if parent, ok := step.ParentDir(f); ok {
			t.establish(parent)
		}
	}
}
