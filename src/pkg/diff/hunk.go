package diff

// Kind classifies a hunk produced by a LineDiffer
type Kind int

const (
	// Unchanged lines are present in both texts
	Unchanged Kind = iota
	// Added lines are present only in the head (remote) text
	Added
	// Removed lines are present only in the base (local) text
	Removed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Hunk is one contiguous span of lines from a line diff.
// Text holds the lines with their "\n" terminators; the last line of a text
// may lack one.
type Hunk struct {
	Kind Kind
	Text string
}

// LineDiffer defines the line differ contract: the hunk texts, partitioned by
// kind and concatenated in order, reconstruct base (Unchanged+Removed) and
// head (Unchanged+Added).
type LineDiffer interface {
	// Lines compares base against head line by line
	Lines(base, head string) []Hunk
}
