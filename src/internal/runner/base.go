package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gh-nvat/notesync/src/pkg/config"
	"github.com/gh-nvat/notesync/src/pkg/diff"
	"github.com/gh-nvat/notesync/src/pkg/frontmatter"
	"github.com/gh-nvat/notesync/src/pkg/merge"
	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/gh-nvat/notesync/src/pkg/notestore"
	"github.com/gh-nvat/notesync/src/pkg/policy"
	"github.com/gh-nvat/notesync/src/pkg/template"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{
	"package": "runner",
})

var (
	// ErrNotPushed is returned when the note has no id for the version
	ErrNotPushed = errors.New("no online version")
	// ErrPushBlocked is returned when a push policy refuses the document
	ErrPushBlocked = errors.New("push blocked by checks")
)

// pullTimeLayout formats pull_time, e.g. "2024-05-01 10.00.00.000Z"
const pullTimeLayout = "2006-01-02 15.04.05.000Z"

type Runner struct {
	Context  context.Context
	Options  *Options
	Settings *config.Settings

	Store     notestore.Store
	Differ    diff.NoteDiffer
	Merger    *merge.Renderer
	Evaluator policy.PolicyEvaluator
	Renderer  *template.Renderer

	// Clipboard receives the link of a newly created note
	Clipboard func(text string) error
	// Now stamps pull_time
	Now func() time.Time
}

// make Runner implement RunnerInterface
var _ RunnerInterface = (*Runner)(nil)

func NewRunner(
	ctx context.Context,
	options *Options,
	settings *config.Settings,
	store notestore.Store,
	differ diff.NoteDiffer,
	evaluator policy.PolicyEvaluator,
	renderer *template.Renderer,
) (*Runner, error) {
	runner := &Runner{
		Context:   ctx,
		Options:   options,
		Settings:  settings,
		Store:     store,
		Differ:    differ,
		Merger:    merge.NewRenderer(differ),
		Evaluator: evaluator,
		Renderer:  renderer,
		Clipboard: clipboard.WriteAll,
		Now:       time.Now,
	}
	if err := runner.Initialize(); err != nil {
		return nil, err
	}
	return runner, nil
}

func (r *Runner) Initialize() error {
	if r.Options == nil || r.Settings == nil {
		return fmt.Errorf("options and settings are required")
	}
	if r.Store == nil || r.Differ == nil || r.Merger == nil || r.Evaluator == nil || r.Renderer == nil {
		return fmt.Errorf("store, differ, merger, evaluator, and renderer are required")
	}
	if r.Options.File == "" {
		return fmt.Errorf("a note file is required")
	}
	if !models.IsVersion(r.Options.version()) {
		return fmt.Errorf("unknown version %q (must be one of %v)", r.Options.Version, models.Versions)
	}
	return nil
}

func (r *Runner) Process(action string) (*models.SyncResult, error) {
	logger.WithField("action", action).WithField("file", r.Options.File).Info("Process: starting...")

	var (
		result *models.SyncResult
		err    error
	)
	switch action {
	case models.ActionPush:
		result, err = r.Push()
	case models.ActionPull:
		result, err = r.Pull()
	case models.ActionPullForce:
		result, err = r.PullForce()
	case models.ActionPullNewFile:
		result, err = r.PullNewFile()
	case models.ActionDiff:
		result, err = r.Diff()
	case models.ActionStatus:
		result, err = r.Status()
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		logger.WithField("action", action).WithError(err).Debug("Process: failed")
		return nil, err
	}

	logger.WithField("action", action).Info("Process: done.")
	return result, nil
}

func (r *Runner) newResult(action string) *models.SyncResult {
	return &models.SyncResult{
		Action:    action,
		Version:   r.Options.version(),
		File:      r.Options.File,
		Timestamp: r.Now().UTC(),
	}
}

// readNote reads the local file
func (r *Runner) readNote() (string, error) {
	data, err := os.ReadFile(r.Options.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", r.Options.File, err)
	}
	return string(data), nil
}

// writeNote replaces the content of path, keeping its permissions
func writeNote(path, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.WithField("path", path).WithField("bytes", len(content)).Debug("Wrote note")
	return nil
}

// noteID returns the remote id linked for the selected version
func (r *Runner) noteID(content string) (string, error) {
	version := r.Options.version()
	id, ok := frontmatter.Get(content, models.IDKey(version))
	if !ok || id == "" {
		return "", fmt.Errorf("%w of %s for %s, push it first", ErrNotPushed, r.Options.File, version)
	}
	return id, nil
}

// fetchBody fetches the remote note and strips the title heading push adds
func (r *Runner) fetchBody(ctx context.Context, id string) (*models.Note, string, error) {
	note, err := r.Store.Fetch(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return note, stripTitle(note.Content, r.title()), nil
}

// title is the file name without its extension
func (r *Runner) title() string {
	base := filepath.Base(r.Options.File)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stripTitle removes a leading "# title" line
func stripTitle(content, title string) string {
	heading := "# " + title
	if content == heading {
		return ""
	}
	return strings.TrimPrefix(content, heading+"\n")
}

// ensureNewline terminates non-empty text with a newline so a missing final
// newline on one side is not reported as a changed line
func ensureNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
