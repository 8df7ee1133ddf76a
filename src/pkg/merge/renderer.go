// Package merge renders a local and a remote version of a note into a single
// text. Unchanged regions are kept verbatim and every contiguous run of
// divergent lines is wrapped in Git-style conflict markers, so the result can
// be resolved by hand in any text editor.
package merge

import (
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/diff"
)

// Conflict marker literals. They must stay stable: a rendered document is
// edited by hand and then becomes the local side of the next merge.
const (
	MarkerStart     = "<<<<<<< HEAD"
	MarkerSeparator = "======="
	MarkerEnd       = ">>>>>>>"
)

// Renderer merges two texts using the hunks of a line differ
type Renderer struct {
	differ diff.LineDiffer
}

// NewRenderer creates a renderer backed by the given line differ.
// A nil differ selects the default diff-match-patch differ.
func NewRenderer(differ diff.LineDiffer) *Renderer {
	if differ == nil {
		differ = diff.NewDiffer()
	}
	return &Renderer{differ: differ}
}

var defaultRenderer = NewRenderer(nil)

// Render merges localText and remoteText with the default differ
func Render(localText, remoteText string) string {
	return defaultRenderer.Render(localText, remoteText)
}

// Render diffs localText (baseline) against remoteText (candidate) and
// returns the merged document
func (r *Renderer) Render(localText, remoteText string) string {
	return RenderHunks(r.differ.Lines(localText, remoteText))
}

// conflictBlock accumulates the lines of one run of Added/Removed hunks
type conflictBlock struct {
	original []string
	modified []string
}

func (b *conflictBlock) empty() bool {
	return len(b.original) == 0 && len(b.modified) == 0
}

func (b *conflictBlock) appendTo(out []string) []string {
	out = append(out, MarkerStart)
	out = append(out, b.original...)
	out = append(out, MarkerSeparator)
	out = append(out, b.modified...)
	return append(out, MarkerEnd)
}

// RenderHunks turns an ordered hunk sequence into the merged document.
// Removed lines go to the original side of the current block and Added lines
// to the modified side, each in first-seen order.
func RenderHunks(hunks []diff.Hunk) string {
	var out []string
	var block conflictBlock
	inConflict := false

	for _, h := range hunks {
		lines := splitLines(h.Text)

		switch h.Kind {
		case diff.Removed:
			inConflict = true
			block.original = append(block.original, lines...)
		case diff.Added:
			inConflict = true
			block.modified = append(block.modified, lines...)
		default:
			if inConflict {
				if !block.empty() {
					out = block.appendTo(out)
				}
				block = conflictBlock{}
				inConflict = false
			}
			out = append(out, lines...)
		}
	}

	// stream ended mid-conflict
	if inConflict && !block.empty() {
		out = block.appendTo(out)
	}

	return strings.Join(out, "\n")
}

// splitLines strips one trailing "\n" and splits on the rest. Empty text has
// no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
