package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name              string
		text              string
		expectedConflicts []Conflict
		expectedMalformed []Malformed
	}{
		{
			name: "empty document",
			text: "",
		},
		{
			name: "no markers",
			text: "just\nsome\ntext",
		},
		{
			name: "setext heading is not a separator",
			text: "Title\n=======\n\nbody",
		},
		{
			name: "one block",
			text: "a\n<<<<<<< HEAD\nmine\n=======\ntheirs\n>>>>>>>\nb",
			expectedConflicts: []Conflict{
				{StartLine: 2, EndLine: 6, Original: []string{"mine"}, Modified: []string{"theirs"}},
			},
		},
		{
			name: "labeled markers from git",
			text: "<<<<<<< ours\nx\n=======\ny\n>>>>>>> theirs",
			expectedConflicts: []Conflict{
				{StartLine: 1, EndLine: 5, Original: []string{"x"}, Modified: []string{"y"}},
			},
		},
		{
			name: "empty sides",
			text: "<<<<<<< HEAD\n=======\nnew\n>>>>>>>\n<<<<<<< HEAD\nold\n=======\n>>>>>>>",
			expectedConflicts: []Conflict{
				{StartLine: 1, EndLine: 4, Modified: []string{"new"}},
				{StartLine: 5, EndLine: 8, Original: []string{"old"}},
			},
		},
		{
			name: "slash-prefixed markers from older releases",
			text: "/<<<<<<< HEAD\nmine\n/=======\ntheirs\n/>>>>>>>",
			expectedConflicts: []Conflict{
				{StartLine: 1, EndLine: 5, Original: []string{"mine"}, Modified: []string{"theirs"}, Legacy: true},
			},
		},
		{
			name: "unterminated block",
			text: "<<<<<<< HEAD\nmine\n=======\ntheirs",
			expectedMalformed: []Malformed{
				{Line: 1, Reason: "start marker without end marker"},
			},
		},
		{
			name: "nested start marker",
			text: "<<<<<<< HEAD\na\n<<<<<<< HEAD\nb\n=======\nc\n>>>>>>>",
			expectedConflicts: []Conflict{
				{StartLine: 3, EndLine: 7, Original: []string{"b"}, Modified: []string{"c"}},
			},
			expectedMalformed: []Malformed{
				{Line: 1, Reason: "start marker without end marker"},
			},
		},
		{
			name: "stray end marker",
			text: "a\n>>>>>>>\nb",
			expectedMalformed: []Malformed{
				{Line: 2, Reason: "end marker without start marker"},
			},
		},
		{
			name: "block without separator",
			text: "<<<<<<< HEAD\na\n>>>>>>>",
			expectedMalformed: []Malformed{
				{Line: 1, Reason: "conflict without separator"},
			},
		},
		{
			name: "second separator is content",
			text: "<<<<<<< HEAD\na\n=======\nb\n=======\n>>>>>>>",
			expectedConflicts: []Conflict{
				{StartLine: 1, EndLine: 6, Original: []string{"a"}, Modified: []string{"b", "======="}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Scan(tt.text)
			assert.Equal(t, tt.expectedConflicts, result.Conflicts)
			assert.Equal(t, tt.expectedMalformed, result.Malformed)
			assert.Equal(t, len(tt.expectedConflicts)+len(tt.expectedMalformed) > 0, result.Unresolved())
		})
	}
}

func TestHasConflicts(t *testing.T) {
	assert.False(t, HasConflicts(""))
	assert.False(t, HasConflicts("Heading\n=======\n"))
	assert.True(t, HasConflicts(Render("a\nb\n", "a\nc\n")))
	assert.True(t, HasConflicts("<<<<<<< HEAD\nonly a start"))
}

func TestScan_RenderedOutputRoundTrip(t *testing.T) {
	out := Render("one\ntwo\nthree\nfour\n", "one\n2\nthree\n4\nfive\n")

	result := Scan(out)
	require.Empty(t, result.Malformed)
	require.Len(t, result.Conflicts, 2)
	assert.Equal(t, []string{"two"}, result.Conflicts[0].Original)
	assert.Equal(t, []string{"2"}, result.Conflicts[0].Modified)
	assert.Equal(t, []string{"four"}, result.Conflicts[1].Original)
	assert.Equal(t, []string{"4", "five"}, result.Conflicts[1].Modified)
}
