package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectedHeader string
		expectedBody   string
	}{
		{
			name:           "no front matter",
			content:        "# title\nbody",
			expectedHeader: "",
			expectedBody:   "# title\nbody",
		},
		{
			name:           "front matter and body",
			content:        "---\nhackmd-id-owner: abc\n---\n# title\nbody",
			expectedHeader: "---\nhackmd-id-owner: abc\n---\n",
			expectedBody:   "# title\nbody",
		},
		{
			name:           "empty front matter",
			content:        "---\n\n---\nbody",
			expectedHeader: "---\n\n---\n",
			expectedBody:   "body",
		},
		{
			name:           "header with no lines",
			content:        "---\n---\nbody",
			expectedHeader: "---\n---\n",
			expectedBody:   "body",
		},
		{
			name:           "header with no lines keeps later rules in the body",
			content:        "---\n---\ntext\n---\nmore\n",
			expectedHeader: "---\n---\n",
			expectedBody:   "text\n---\nmore\n",
		},
		{
			name:           "front matter without trailing newline",
			content:        "---\na: 1\n---",
			expectedHeader: "---\na: 1\n---\n",
			expectedBody:   "",
		},
		{
			name:           "only the first block is front matter",
			content:        "---\na: 1\n---\ntext\n---\nb: 2\n---\n",
			expectedHeader: "---\na: 1\n---\n",
			expectedBody:   "text\n---\nb: 2\n---\n",
		},
		{
			name:           "block not at the start",
			content:        "intro\n---\na: 1\n---\n",
			expectedHeader: "",
			expectedBody:   "intro\n---\na: 1\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := Split(tt.content)
			assert.Equal(t, tt.expectedHeader, header)
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	for _, content := range []string{
		"plain",
		"---\nk: v\n---\nbody\n",
		"---\nk: v\n---\n\nbody after blank line\n",
	} {
		header, body := Split(content)
		assert.Equal(t, content, Join(header, body))
	}
}

func TestUpdateKeepsBody(t *testing.T) {
	for _, content := range []string{"", "body\n", "\nleading blank\n", "---\nk: v\n---\nbody\n"} {
		updated, err := Update(content, map[string]string{"hackmd-id-owner": "abc"})
		require.NoError(t, err)
		_, wantBody := Split(content)
		_, gotBody := Split(updated)
		assert.Equal(t, wantBody, gotBody, "content %q", content)
	}
}

func TestParse(t *testing.T) {
	fields, err := Parse("---\nhackmd-id-owner: abc\ncount: 3\ntags:\n  - a\n---\nbody")
	require.NoError(t, err)
	assert.Equal(t, "abc", fields["hackmd-id-owner"])
	assert.Equal(t, 3, fields["count"])
	assert.Equal(t, []any{"a"}, fields["tags"])

	fields, err = Parse("no header")
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = Parse("---\n\n---\n")
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = Parse("---\n: : bad\n  - [\n---\n")
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	content := "---\nhackmd-id-owner: abc\nnum: 42\nempty:\n---\n"

	v, ok := Get(content, "hackmd-id-owner")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = Get(content, "num")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = Get(content, "empty")
	assert.False(t, ok)

	_, ok = Get(content, "missing")
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		updates  map[string]string
		expected string
	}{
		{
			name:     "no front matter creates one",
			content:  "# title\nbody",
			updates:  map[string]string{"hackmd-link-owner": "https://hackmd.io/abc", "hackmd-id-owner": "abc"},
			expected: "---\nhackmd-id-owner: abc\nhackmd-link-owner: https://hackmd.io/abc\n---\n# title\nbody",
		},
		{
			name:     "existing keys keep their position",
			content:  "---\ntitle: notes\nhackmd-id-owner: old\ntags: [a, b]\n---\nbody",
			updates:  map[string]string{"hackmd-id-owner": "new"},
			expected: "---\ntitle: notes\nhackmd-id-owner: new\ntags: [a, b]\n---\nbody",
		},
		{
			name:     "new keys are appended sorted",
			content:  "---\ntitle: notes\n---\nbody",
			updates:  map[string]string{"pull_time": "2024-01-02 03.04.05.678Z", "remote_permission": "guest"},
			expected: "---\ntitle: notes\npull_time: 2024-01-02 03.04.05.678Z\nremote_permission: guest\n---\nbody",
		},
		{
			name:     "numeric looking ids stay strings",
			content:  "---\ntitle: notes\n---\n",
			updates:  map[string]string{"hackmd-id-guest": "12345"},
			expected: "---\ntitle: notes\nhackmd-id-guest: \"12345\"\n---\n",
		},
		{
			name:     "empty front matter",
			content:  "---\n\n---\nbody",
			updates:  map[string]string{"k": "v"},
			expected: "---\nk: v\n---\nbody",
		},
		{
			name:     "header with no lines is filled, not duplicated",
			content:  "---\n---\nbody",
			updates:  map[string]string{"hackmd-id-owner": "abc"},
			expected: "---\nhackmd-id-owner: abc\n---\nbody",
		},
		{
			name:     "comments are kept",
			content:  "---\n# managed by notesync\ntitle: notes # the title\n---\nbody",
			updates:  map[string]string{"title": "renamed"},
			expected: "---\n# managed by notesync\ntitle: renamed # the title\n---\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Update(tt.content, tt.updates)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUpdate_Errors(t *testing.T) {
	_, err := Update("---\n- a\n- b\n---\nbody", map[string]string{"k": "v"})
	assert.Error(t, err)

	_, err = Update("---\n: : bad\n  - [\n---\n", map[string]string{"k": "v"})
	assert.Error(t, err)
}

func TestUpdate_RoundTripsThroughParse(t *testing.T) {
	content, err := Update("body", map[string]string{"hackmd-id-owner": "abc"})
	require.NoError(t, err)

	v, ok := Get(content, "hackmd-id-owner")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, body := Split(content)
	assert.Equal(t, "body", body)
}
