package diff

import "strings"

// CalcLineChangesFromDiffContent calculates the number of added and deleted lines from a diff content
// returns: addedLines, deletedLines, totalLines
// the leading "---"/"+++" file headers are not counted
func CalcLineChangesFromDiffContent(diffContent string) (int, int, int) {
	addedLines := 0
	deletedLines := 0
	inHeader := true
	for _, line := range strings.Split(diffContent, "\n") {
		if inHeader && (strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ")) {
			continue
		}
		inHeader = false
		switch {
		case strings.HasPrefix(line, "+"):
			addedLines++
		case strings.HasPrefix(line, "-"):
			deletedLines++
		}
	}
	return addedLines, deletedLines, addedLines + deletedLines
}
