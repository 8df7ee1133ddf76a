package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/frontmatter"
	"github.com/gh-nvat/notesync/src/pkg/merge"
	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/gh-nvat/notesync/src/pkg/policy"
	"github.com/gh-nvat/notesync/src/pkg/template"
	"github.com/gh-nvat/notesync/src/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// Push uploads the local body. The first push of a version creates the note
// and links it in the front matter; later pushes update it.
func (r *Runner) Push() (*models.SyncResult, error) {
	version := r.Options.version()
	ctx, span := trace.StartSpan(r.Context, "runner.push", attribute.String("version", version))
	defer span.End()

	content, err := r.readNote()
	if err != nil {
		return nil, err
	}
	// a broken header must fail before anything is created remotely
	fields, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read front matter of %s: %w", r.Options.File, err)
	}
	_, body := frontmatter.Split(content)
	result := r.newResult(models.ActionPush)

	if err := r.checkPush(ctx, fields, body, result); err != nil {
		return nil, err
	}

	pushContent, err := r.Renderer.RenderPush(template.PushData{Title: r.title(), Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to render note: %w", err)
	}

	if id, ok := frontmatter.Get(content, models.IDKey(version)); ok && id != "" {
		if err := r.Store.Update(ctx, id, pushContent); err != nil {
			return nil, err
		}
		result.NoteID = id
		result.Link, _ = frontmatter.Get(content, models.LinkKey(version))
		logger.WithField("id", id).WithField("version", version).Info("Push: updated note")
		return result, nil
	}

	note, err := r.Store.Create(ctx, pushContent, models.Permissions{
		Read:    r.Settings.ReadPermission,
		Write:   version,
		Comment: r.Settings.CommentPermission,
	})
	if err != nil {
		return nil, err
	}

	updated, err := frontmatter.Update(content, map[string]string{
		models.IDKey(version):   note.ID,
		models.LinkKey(version): note.Link,
	})
	if err == nil {
		err = writeNote(r.Options.File, updated)
	}
	if err != nil {
		return nil, fmt.Errorf("note %s was created at %s but %s could not be linked: %w",
			note.ID, note.Link, r.Options.File, err)
	}

	result.Created = true
	result.NoteID = note.ID
	result.Link = note.Link
	result.Written = r.Options.File
	result.Copied = r.copyLink(note.Link)

	logger.WithField("id", note.ID).WithField("version", version).Info("Push: created note")
	return result, nil
}

// checkPush runs the push policies and fails when they block the document
func (r *Runner) checkPush(ctx context.Context, fields map[string]any, body string, result *models.SyncResult) error {
	if r.Options.SkipChecks {
		result.PolicySummary = "skipped"
		logger.Warn("Push checks skipped")
		return nil
	}

	ctx, span := trace.StartSpan(ctx, "runner.push.checks")
	defer span.End()

	scan := merge.Scan(body)

	eval, err := r.Evaluator.Evaluate(ctx, policy.Input{
		Body:        body,
		FrontMatter: fields,
		Version:     r.Options.version(),
		Conflicts: policy.ConflictCounts{
			Count:     len(scan.Conflicts),
			Malformed: len(scan.Malformed),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate push checks: %w", err)
	}

	enforcement := r.Evaluator.Enforce(eval)
	report := policy.NewReporter().GenerateReport(eval)
	if enforcement.ShouldBlock {
		return fmt.Errorf("%w: %s\n  %s (use --skip-checks to push anyway)",
			ErrPushBlocked, enforcement.Summary, strings.Join(report.Messages, "\n  "))
	}

	result.PolicySummary = enforcement.Summary
	result.PolicyMessages = report.Messages
	return nil
}

// copyLink puts the link on the clipboard. Failure only logs a warning.
func (r *Runner) copyLink(link string) bool {
	if r.Options.NoCopy || link == "" || r.Clipboard == nil {
		return false
	}
	if err := r.Clipboard(link); err != nil {
		logger.WithError(err).Warn("Failed to copy link to clipboard")
		return false
	}
	return true
}
