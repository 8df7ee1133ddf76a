package diff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "diff")

const (
	LocalLabel  = "local"
	RemoteLabel = "remote"
)

// NoteDiffer defines the interface for comparing note bodies
type NoteDiffer interface {
	LineDiffer
	// Diff compares two note bodies and returns a unified diff
	Diff(base, head []byte) (string, error)
	// HasChanges reports whether the two note bodies differ
	HasChanges(base, head []byte) bool
}

// Differ handles note diffing
type Differ struct {
	// diffPath is the system diff binary used for previews, resolved lazily
	diffPath string
}

// Ensure Differ implements NoteDiffer
var _ NoteDiffer = (*Differ)(nil)

// NewDiffer creates a new differ
func NewDiffer() *Differ {
	return &Differ{diffPath: "diff"}
}

// Lines diffs base against head on line boundaries using diff-match-patch in
// line mode. Consecutive removed or added lines are grouped into one hunk.
func (d *Differ) Lines(base, head string) []Hunk {
	dmp := diffmatchpatch.New()
	// no deadline: a timed-out diff is not minimal and depends on machine speed
	dmp.DiffTimeout = 0

	rBase, rHead, lineArray := dmp.DiffLinesToRunes(base, head)
	diffs := dmp.DiffMainRunes(rBase, rHead, false)
	diffs = dmp.DiffCleanupMerge(diffs)
	// line indices are encoded around the surrogate range, let the library decode them
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	hunks := make([]Hunk, 0, len(diffs))
	for _, df := range diffs {
		text := df.Text
		if text == "" {
			continue
		}
		var kind Kind
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			kind = Unchanged
		case diffmatchpatch.DiffDelete:
			kind = Removed
		case diffmatchpatch.DiffInsert:
			kind = Added
		}
		hunks = append(hunks, Hunk{Kind: kind, Text: text})
	}
	return hunks
}

// HasChanges reports whether the two note bodies differ
func (d *Differ) HasChanges(base, head []byte) bool {
	return !bytes.Equal(base, head)
}

// Diff compares two note bodies and returns a unified diff.
// The system diff -u is preferred for proper context; when it is not
// installed the diff is built from Lines.
func (d *Differ) Diff(base, head []byte) (string, error) {
	if bytes.Equal(base, head) {
		return "", nil
	}

	out, err := d.unifiedDiff(base, head)
	if errors.Is(err, exec.ErrNotFound) {
		logger.WithField("binary", d.diffPath).Debug("diff binary not found, using built-in diff")
		return d.simpleDiff(string(base), string(head)), nil
	}
	return out, err
}

// unifiedDiff uses system diff -u command for proper unified diff with context
func (d *Differ) unifiedDiff(base, head []byte) (string, error) {
	diffPath, err := exec.LookPath(d.diffPath)
	if err != nil {
		return "", err
	}

	baseFile, err := os.CreateTemp("", "local-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(baseFile.Name())
	}()

	headFile, err := os.CreateTemp("", "remote-*.md")
	if err != nil {
		_ = baseFile.Close()
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(headFile.Name())
	}()

	if _, err := baseFile.Write(base); err != nil {
		_ = baseFile.Close()
		_ = headFile.Close()
		return "", fmt.Errorf("failed to write local note: %w", err)
	}
	if err := baseFile.Close(); err != nil {
		_ = headFile.Close()
		return "", fmt.Errorf("failed to close local file: %w", err)
	}

	if _, err := headFile.Write(head); err != nil {
		_ = headFile.Close()
		return "", fmt.Errorf("failed to write remote note: %w", err)
	}
	if err := headFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close remote file: %w", err)
	}

	cmd := exec.Command(diffPath, "-u", baseFile.Name(), headFile.Name())
	output, err := cmd.CombinedOutput()

	// diff returns exit code 1 when files differ (not an error)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return "", fmt.Errorf("diff command failed: %w", err)
		}
	}

	diffOutput := string(output)
	diffOutput = strings.ReplaceAll(diffOutput, baseFile.Name(), LocalLabel)
	diffOutput = strings.ReplaceAll(diffOutput, headFile.Name(), RemoteLabel)

	return diffOutput, nil
}

// simpleDiff creates a unified-style diff without hunk headers from Lines
func (d *Differ) simpleDiff(base, head string) string {
	var result strings.Builder
	result.WriteString("--- " + LocalLabel + "\n")
	result.WriteString("+++ " + RemoteLabel + "\n")

	for _, h := range d.Lines(base, head) {
		prefix := " "
		switch h.Kind {
		case Added:
			prefix = "+"
		case Removed:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(h.Text, "\n"), "\n") {
			result.WriteString(prefix + line + "\n")
		}
	}

	return result.String()
}
