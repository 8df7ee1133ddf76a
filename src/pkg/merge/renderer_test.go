package merge

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/gh-nvat/notesync/src/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		remote   string
		expected string
	}{
		{
			name:     "one line replaced",
			local:    "line1\nline2\nline3",
			remote:   "line1\nlineX\nline3",
			expected: "line1\n<<<<<<< HEAD\nline2\n=======\nlineX\n>>>>>>>\nline3",
		},
		{
			name:     "empty local",
			local:    "",
			remote:   "hello",
			expected: "<<<<<<< HEAD\n=======\nhello\n>>>>>>>",
		},
		{
			name:     "empty remote",
			local:    "bye\n",
			remote:   "",
			expected: "<<<<<<< HEAD\nbye\n=======\n>>>>>>>",
		},
		{
			name:     "identical",
			local:    "unchanged only",
			remote:   "unchanged only",
			expected: "unchanged only",
		},
		{
			name:     "both empty",
			local:    "",
			remote:   "",
			expected: "",
		},
		{
			name:     "trailing deletion is flushed after the loop",
			local:    "a\nb\nc\n",
			remote:   "a\nb\n",
			expected: "a\nb\n<<<<<<< HEAD\nc\n=======\n>>>>>>>",
		},
		{
			name:     "trailing addition is flushed after the loop",
			local:    "a\n",
			remote:   "a\nb\nc\n",
			expected: "a\n<<<<<<< HEAD\n=======\nb\nc\n>>>>>>>",
		},
		{
			name:     "two separate conflicts",
			local:    "h\nx1\nm\nx2\nt\n",
			remote:   "h\ny1\nm\ny2\nt\n",
			expected: "h\n<<<<<<< HEAD\nx1\n=======\ny1\n>>>>>>>\nm\n<<<<<<< HEAD\nx2\n=======\ny2\n>>>>>>>\nt",
		},
		{
			name:     "blank lines survive",
			local:    "a\n\nb\n",
			remote:   "a\n\nc\n",
			expected: "a\n\n<<<<<<< HEAD\nb\n=======\nc\n>>>>>>>",
		},
		{
			name:     "missing final newline is a divergence",
			local:    "a\nb",
			remote:   "a\nb\n",
			expected: "a\n<<<<<<< HEAD\nb\n=======\nb\n>>>>>>>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.local, tt.remote))
		})
	}
}

func TestRenderHunks(t *testing.T) {
	tests := []struct {
		name     string
		hunks    []diff.Hunk
		expected string
	}{
		{
			name:     "no hunks",
			hunks:    nil,
			expected: "",
		},
		{
			name: "interleaved removals and additions collapse into one block",
			hunks: []diff.Hunk{
				{Kind: diff.Removed, Text: "r1\n"},
				{Kind: diff.Added, Text: "a1\n"},
				{Kind: diff.Removed, Text: "r2\n"},
				{Kind: diff.Added, Text: "a2\n"},
				{Kind: diff.Unchanged, Text: "u"},
			},
			expected: "<<<<<<< HEAD\nr1\nr2\n=======\na1\na2\n>>>>>>>\nu",
		},
		{
			name: "empty divergent hunks emit no block",
			hunks: []diff.Hunk{
				{Kind: diff.Removed, Text: ""},
				{Kind: diff.Added, Text: ""},
				{Kind: diff.Unchanged, Text: "x\n"},
			},
			expected: "x",
		},
		{
			name: "empty unchanged hunk adds no blank line",
			hunks: []diff.Hunk{
				{Kind: diff.Unchanged, Text: "a\n"},
				{Kind: diff.Unchanged, Text: ""},
				{Kind: diff.Unchanged, Text: "b\n"},
			},
			expected: "a\nb",
		},
		{
			name: "only one trailing terminator is stripped",
			hunks: []diff.Hunk{
				{Kind: diff.Unchanged, Text: "a\n\n"},
				{Kind: diff.Added, Text: "b\n"},
			},
			expected: "a\n\n<<<<<<< HEAD\n=======\nb\n>>>>>>>",
		},
		{
			name: "removal only at end of stream",
			hunks: []diff.Hunk{
				{Kind: diff.Unchanged, Text: "keep\n"},
				{Kind: diff.Removed, Text: "gone"},
			},
			expected: "keep\n<<<<<<< HEAD\ngone\n=======\n>>>>>>>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderHunks(tt.hunks))
		})
	}
}

// stubDiffer returns canned hunks and records what it was asked to compare
type stubDiffer struct {
	hunks      []diff.Hunk
	base, head string
}

func (s *stubDiffer) Lines(base, head string) []diff.Hunk {
	s.base, s.head = base, head
	return s.hunks
}

func TestRenderer_UsesDifferWithLocalAsBaseline(t *testing.T) {
	stub := &stubDiffer{hunks: []diff.Hunk{{Kind: diff.Added, Text: "theirs\n"}}}
	r := NewRenderer(stub)

	out := r.Render("mine", "theirs")

	assert.Equal(t, "mine", stub.base)
	assert.Equal(t, "theirs", stub.head)
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>", out)
}

func TestRender_IdenticalInputsHaveNoMarkers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		doc := randomDoc(rng)
		out := Render(doc, doc)
		assert.Equal(t, strings.TrimSuffix(doc, "\n"), out, "doc %q", doc)
		assert.False(t, HasConflicts(out), "doc %q", doc)
	}
}

func TestRender_DisjointInputsFormOneBlock(t *testing.T) {
	local := "a1\na2\na3\n"
	remote := "b1\nb2"

	out := Render(local, remote)

	scan := Scan(out)
	require.Len(t, scan.Conflicts, 1)
	assert.Empty(t, scan.Malformed)
	assert.Equal(t, []string{"a1", "a2", "a3"}, scan.Conflicts[0].Original)
	assert.Equal(t, []string{"b1", "b2"}, scan.Conflicts[0].Modified)
	assert.Equal(t, 1, scan.Conflicts[0].StartLine)
	assert.Equal(t, len(strings.Split(out, "\n")), scan.Conflicts[0].EndLine)
}

// TestRender_Properties checks marker well-formedness, non-empty blocks and
// that picking either side of every block gives back that input
func TestRender_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		local := randomDoc(rng)
		remote := mutate(rng, local)

		out := Render(local, remote)

		scan := Scan(out)
		require.Empty(t, scan.Malformed, "local %q remote %q out %q", local, remote, out)
		assert.Equal(t, strings.Count(out, MarkerStart), len(scan.Conflicts))
		for _, c := range scan.Conflicts {
			assert.False(t, len(c.Original) == 0 && len(c.Modified) == 0, "empty block in %q", out)
		}

		assert.Equal(t, strings.TrimSuffix(local, "\n"), resolve(out, true), "local %q remote %q", local, remote)
		assert.Equal(t, strings.TrimSuffix(remote, "\n"), resolve(out, false), "local %q remote %q", local, remote)
	}
}

func TestRender_ManyDistinctLines(t *testing.T) {
	// more distinct lines than runes below the UTF-16 surrogate range
	var sb strings.Builder
	for i := 0; i < 60000; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	doc := sb.String()

	out := Render(doc, doc)
	require.Equal(t, strings.TrimSuffix(doc, "\n"), out)

	remote := strings.Replace(doc, "line 59000\n", "edited\n", 1)
	out = Render(doc, remote)
	scan := Scan(out)
	require.Len(t, scan.Conflicts, 1)
	assert.Equal(t, []string{"line 59000"}, scan.Conflicts[0].Original)
	assert.Equal(t, []string{"edited"}, scan.Conflicts[0].Modified)
	assert.Equal(t, strings.TrimSuffix(doc, "\n"), resolve(out, true))
	assert.Equal(t, strings.TrimSuffix(remote, "\n"), resolve(out, false))
}

func TestRender_Deterministic(t *testing.T) {
	local := "# notes\n\n- one\n- two\n- three\n"
	remote := "# notes\n\n- one\n- 2\n- three\n- four\n"

	first := Render(local, remote)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Render(local, remote))
	}
}

func TestRender_ConcurrentUse(t *testing.T) {
	local := "a\nb\nc\n"
	remote := "a\nB\nc\n"
	want := Render(local, remote)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Render(local, remote))
		}()
	}
	wg.Wait()
}

// resolve strips the markers of a rendered document, keeping one side
func resolve(out string, takeOriginal bool) string {
	const (
		outside = iota
		original
		modified
	)
	state := outside
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case line == MarkerStart:
			state = original
		case line == MarkerSeparator && state == original:
			state = modified
		case line == MarkerEnd && state == modified:
			state = outside
		case state == outside,
			state == original && takeOriginal,
			state == modified && !takeOriginal:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

var docLines = []string{"alpha", "beta", "gamma", "delta", "", "# heading", "- item", "epsilon"}

func randomDoc(rng *rand.Rand) string {
	n := rng.Intn(8)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = docLines[rng.Intn(len(docLines))]
	}
	doc := strings.Join(lines, "\n")
	if n > 0 && rng.Intn(2) == 0 {
		doc += "\n"
	}
	return doc
}

// mutate deletes, inserts and replaces random lines of doc
func mutate(rng *rand.Rand, doc string) string {
	var lines []string
	if doc != "" {
		lines = strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
	}
	var out []string
	for _, l := range lines {
		switch rng.Intn(5) {
		case 0:
		case 1:
			out = append(out, docLines[rng.Intn(len(docLines))])
		case 2:
			out = append(out, l, docLines[rng.Intn(len(docLines))])
		default:
			out = append(out, l)
		}
	}
	if rng.Intn(3) == 0 {
		out = append(out, docLines[rng.Intn(len(docLines))])
	}
	res := strings.Join(out, "\n")
	if len(out) > 0 && rng.Intn(2) == 0 {
		res += "\n"
	}
	return res
}
