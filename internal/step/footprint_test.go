package step

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFootprintOf(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		step Step
		want Footprint
	}{
		{
			name: "mkdir creates its directory",
			step: Step{Type: Mkdir, Args: []string{"work/a/"}},
			want: Footprint{CreatesDirs: []string{"work/a"}},
		},
		{
			name: "touch requires the parent directory",
			step: Step{Type: Touch, Args: []string{"work/a/main.py"}},
			want: Footprint{CreatesFiles: []string{"work/a/main.py"}, RequiresDirs: []string{"work/a"}},
		},
		{
			name: "touch in the current directory requires nothing",
			step: Step{Type: Touch, Args: []string{"main.py"}},
			want: Footprint{CreatesFiles: []string{"main.py"}},
		},
		{
			name: "touch under root requires nothing",
			step: Step{Type: Touch, Args: []string{"/main.py"}},
			want: Footprint{CreatesFiles: []string{"/main.py"}},
		},
		{
			name: "copy reads source and creates destination",
			step: Step{Type: Copy, Args: []string{"tpl/main.py", "work/main.py"}},
			want: Footprint{
				CreatesFiles: []string{"work/main.py"},
				ReadsFiles:   []string{"tpl/main.py"},
				RequiresDirs: []string{"work"},
			},
		},
		{
			name: "copytree creates a directory",
			step: Step{Type: CopyTree, Args: []string{"tpl", "work/tpl"}},
			want: Footprint{CreatesDirs: []string{"work/tpl"}, ReadsFiles: []string{"tpl"}},
		},
		{
			name: "rmtree reads its target",
			step: Step{Type: RmTree, Args: []string{"./work//a"}},
			want: Footprint{ReadsFiles: []string{"work/a"}},
		},
		{
			name: "cwd is required for any step",
			step: Step{Type: Shell, Args: []string{"make"}, Cwd: "work/a"},
			want: Footprint{RequiresDirs: []string{"work/a"}},
		},
		{
			name: "cwd and parent are deduplicated",
			step: Step{Type: Touch, Args: []string{"work/a/x"}, Cwd: "work/a/"},
			want: Footprint{CreatesFiles: []string{"work/a/x"}, RequiresDirs: []string{"work/a"}},
		},
		{
			name: "missing arguments yield an empty footprint",
			step: Step{Type: Copy},
			want: Footprint{},
		},
		{
			name: "unknown type has no footprint",
			step: Step{Type: "teleport", Args: []string{"x"}},
			want: Footprint{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := FootprintOf(tc.step)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("FootprintOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFootprint_Resources(t *testing.T) {
	fp := Footprint{
		CreatesFiles: []string{"b/f"},
		CreatesDirs:  []string{"a"},
		ReadsFiles:   []string{"b/f"},
		RequiresDirs: []string{"b"},
	}
	assert.Equal(t, []string{"a", "b", "b/f"}, fp.Resources())
	assert.False(t, fp.IsEmpty())
	assert.True(t, Footprint{}.IsEmpty())
}

func TestParentDir(t *testing.T) {
	parent, ok := ParentDir("a/b/c.txt")
	assert.True(t, ok)
	assert.Equal(t, "a/b", parent)

	_, ok = ParentDir("c.txt")
	assert.False(t, ok)

	_, ok = ParentDir("/c.txt")
	assert.False(t, ok)

	_, ok = ParentDir("")
	assert.False(t, ok)
}

func TestIsAncestor(t *testing.T) {
	assert.True(t, IsAncestor("work", "work/a/main.py"))
	assert.True(t, IsAncestor("/tmp/x", "/tmp/x/y"))
	assert.False(t, IsAncestor("work", "work"))
	assert.False(t, IsAncestor("work", "workspace/main.py"))
	assert.False(t, IsAncestor("work/a", "work"))
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"b", "d"}, Intersect([]string{"a", "b", "d"}, []string{"b", "c", "d"}))
	assert.Empty(t, Intersect([]string{"a"}, []string{"b"}))
	assert.Empty(t, Intersect(nil, []string{"b"}))
}
