package runner

import (
	"context"
	"errors"
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/diff"
	"github.com/gh-nvat/notesync/src/pkg/frontmatter"
	"github.com/gh-nvat/notesync/src/pkg/merge"
	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/gh-nvat/notesync/src/pkg/notestore"
	"github.com/gh-nvat/notesync/src/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Diff previews the local body against the remote note as a unified diff
func (r *Runner) Diff() (*models.SyncResult, error) {
	ctx, span := trace.StartSpan(r.Context, "runner.diff", attribute.String("version", r.Options.version()))
	defer span.End()

	content, err := r.readNote()
	if err != nil {
		return nil, err
	}
	id, err := r.noteID(content)
	if err != nil {
		return nil, err
	}
	_, remote, err := r.fetchBody(ctx, id)
	if err != nil {
		return nil, err
	}

	_, body := frontmatter.Split(content)
	local, remoteBytes := []byte(ensureNewline(body)), []byte(ensureNewline(remote))

	result := r.newResult(models.ActionDiff)
	result.NoteID = id
	if !r.Differ.HasChanges(local, remoteBytes) {
		return result, nil
	}

	diffText, err := r.Differ.Diff(local, remoteBytes)
	if err != nil {
		return nil, err
	}
	result.Diff = diffText
	result.AddedLineCount, result.DeletedLineCount, _ = diff.CalcLineChangesFromDiffContent(diffText)
	return result, nil
}

// Status fetches every linked version concurrently and compares each with
// the local body. Only an authorization failure aborts the whole report.
func (r *Runner) Status() (*models.SyncResult, error) {
	ctx, span := trace.StartSpan(r.Context, "runner.status")
	defer span.End()

	content, err := r.readNote()
	if err != nil {
		return nil, err
	}
	_, body := frontmatter.Split(content)
	local := ensureNewline(body)

	result := r.newResult(models.ActionStatus)
	result.Version = ""
	scan := merge.Scan(body)
	result.LocalConflicts = len(scan.Conflicts)
	result.LocalMalformed = len(scan.Malformed)

	statuses := make([]models.VersionStatus, len(models.Versions))
	g, gctx := errgroup.WithContext(ctx)
	for i, version := range models.Versions {
		statuses[i] = models.VersionStatus{Version: version}
		id, ok := frontmatter.Get(content, models.IDKey(version))
		if !ok || id == "" {
			continue
		}
		statuses[i].Linked = true
		statuses[i].NoteID = id

		i := i
		g.Go(func() error {
			return r.versionStatus(gctx, &statuses[i], local)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Versions = statuses
	return result, nil
}

// versionStatus fills one status entry; each goroutine owns its entry
func (r *Runner) versionStatus(ctx context.Context, st *models.VersionStatus, local string) error {
	ctx, span := trace.StartSpan(ctx, "runner.status.fetch", attribute.String("version", st.Version))
	defer span.End()

	note, remote, err := r.fetchBody(ctx, st.NoteID)
	if errors.Is(err, notestore.ErrUnauthorized) {
		return err
	}
	if err != nil {
		st.Error = rootCause(err)
		logger.WithField("version", st.Version).WithError(err).Warn("Status: failed to fetch note")
		return nil
	}

	st.RemoteAt = note.LastChangedAt
	remote = ensureNewline(remote)
	if remote == local {
		st.InSync = true
		return nil
	}
	for _, h := range r.Differ.Lines(local, remote) {
		n := strings.Count(h.Text, "\n")
		if !strings.HasSuffix(h.Text, "\n") && h.Text != "" {
			n++
		}
		switch h.Kind {
		case diff.Added:
			st.Added += n
		case diff.Removed:
			st.Deleted += n
		}
	}
	return nil
}

// rootCause returns the sentinel message for known store errors
func rootCause(err error) string {
	if errors.Is(err, notestore.ErrNotFound) {
		return notestore.ErrNotFound.Error()
	}
	return err.Error()
}
