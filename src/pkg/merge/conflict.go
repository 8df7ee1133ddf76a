package merge

import (
	"strings"
)

// legacyPrefix is written before every marker by older releases
const legacyPrefix = "/"

// Conflict is one block of conflict markers found in a document
type Conflict struct {
	// StartLine and EndLine are the 1-based lines of the start and end markers
	StartLine int
	EndLine   int
	Original  []string
	Modified  []string
	// Legacy is set when the block uses the slash-prefixed markers
	Legacy bool
}

// Malformed is a marker that is not part of a complete block
type Malformed struct {
	Line   int
	Reason string
}

// ScanResult is the outcome of scanning a document for conflict markers
type ScanResult struct {
	Conflicts []Conflict
	Malformed []Malformed
}

// Unresolved reports whether the document still holds any marker
func (r ScanResult) Unresolved() bool {
	return len(r.Conflicts) > 0 || len(r.Malformed) > 0
}

type markerKind int

const (
	notMarker markerKind = iota
	startMarker
	separatorMarker
	endMarker
)

// classify recognizes the bare markers and their slash-prefixed variant.
// Start and end markers may carry a label after the marker run.
func classify(line string) (markerKind, bool) {
	legacy := false
	if strings.HasPrefix(line, legacyPrefix+"<<<<<<<") ||
		line == legacyPrefix+MarkerSeparator ||
		strings.HasPrefix(line, legacyPrefix+">>>>>>>") {
		legacy = true
		line = strings.TrimPrefix(line, legacyPrefix)
	}

	switch {
	case isLabeled(line, "<<<<<<<"):
		return startMarker, legacy
	case line == MarkerSeparator:
		return separatorMarker, legacy
	case isLabeled(line, MarkerEnd):
		return endMarker, legacy
	}
	return notMarker, false
}

// isLabeled matches run exactly or run followed by a space and a label
func isLabeled(line, run string) bool {
	return line == run || strings.HasPrefix(line, run+" ")
}

// Scan walks text line by line and reports every conflict block and every
// marker that is out of place. It never modifies text.
func Scan(text string) ScanResult {
	var result ScanResult
	if text == "" {
		return result
	}

	var current *Conflict
	inModified := false

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		kind, legacy := classify(line)

		switch kind {
		case startMarker:
			if current != nil {
				result.Malformed = append(result.Malformed, Malformed{Line: current.StartLine, Reason: "start marker without end marker"})
			}
			current = &Conflict{StartLine: lineNo, Legacy: legacy}
			inModified = false
		case separatorMarker:
			// a bare "=======" outside a block is a setext heading underline
			switch {
			case current == nil:
			case inModified:
				current.Modified = append(current.Modified, line)
			default:
				inModified = true
			}
		case endMarker:
			switch {
			case current == nil:
				result.Malformed = append(result.Malformed, Malformed{Line: lineNo, Reason: "end marker without start marker"})
			case !inModified:
				result.Malformed = append(result.Malformed, Malformed{Line: current.StartLine, Reason: "conflict without separator"})
				current = nil
			default:
				current.EndLine = lineNo
				result.Conflicts = append(result.Conflicts, *current)
				current = nil
				inModified = false
			}
		default:
			if current == nil {
				continue
			}
			if inModified {
				current.Modified = append(current.Modified, line)
			} else {
				current.Original = append(current.Original, line)
			}
		}
	}

	if current != nil {
		result.Malformed = append(result.Malformed, Malformed{Line: current.StartLine, Reason: "start marker without end marker"})
	}

	return result
}

// HasConflicts reports whether text contains unresolved conflict markers
func HasConflicts(text string) bool {
	return Scan(text).Unresolved()
}
