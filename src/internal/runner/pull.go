package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/frontmatter"
	"github.com/gh-nvat/notesync/src/pkg/merge"
	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/gh-nvat/notesync/src/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// Pull merges the remote note into the local body. Diverging lines are
// wrapped in conflict markers for the user to resolve.
func (r *Runner) Pull() (*models.SyncResult, error) {
	ctx, span := trace.StartSpan(r.Context, "runner.pull", attribute.String("version", r.Options.version()))
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

	header, body := frontmatter.Split(content)

	_, mergeSpan := trace.StartSpan(ctx, "runner.pull.merge")
	merged := r.Merger.Render(ensureNewline(body), ensureNewline(remote))
	mergeSpan.End()

	if err := writeNote(r.Options.File, header+ensureNewline(merged)); err != nil {
		return nil, err
	}

	result := r.newResult(models.ActionPull)
	result.NoteID = id
	result.Written = r.Options.File
	result.Conflicts = len(merge.Scan(merged).Conflicts)

	logger.WithField("id", id).WithField("conflicts", result.Conflicts).Info("Pull: merged note")
	return result, nil
}

// PullForce replaces the local body with the remote note, keeping the
// local front matter
func (r *Runner) PullForce() (*models.SyncResult, error) {
	ctx, span := trace.StartSpan(r.Context, "runner.pull_force", attribute.String("version", r.Options.version()))
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

	header, _ := frontmatter.Split(content)
	if err := writeNote(r.Options.File, header+remote); err != nil {
		return nil, err
	}

	result := r.newResult(models.ActionPullForce)
	result.NoteID = id
	result.Written = r.Options.File

	logger.WithField("id", id).Info("PullForce: replaced local body")
	return result, nil
}

// PullNewFile writes the remote note to "<name>-<version><ext>" beside the
// local file, stamped with remote_permission and pull_time. An existing file
// is never overwritten.
func (r *Runner) PullNewFile() (*models.SyncResult, error) {
	version := r.Options.version()
	ctx, span := trace.StartSpan(r.Context, "runner.pull_new_file", attribute.String("version", version))
	defer span.End()

	content, err := r.readNote()
	if err != nil {
		return nil, err
	}
	id, err := r.noteID(content)
	if err != nil {
		return nil, err
	}

	target := newFilePath(r.Options.File, version)
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("%s already exists", target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to check %s: %w", target, err)
	}

	_, remote, err := r.fetchBody(ctx, id)
	if err != nil {
		return nil, err
	}

	header, _ := frontmatter.Split(content)
	out, err := frontmatter.Update(header+remote, map[string]string{
		models.FrontMatterRemotePermission: version,
		models.FrontMatterPullTime:         r.Now().UTC().Format(pullTimeLayout),
	})
	if err != nil {
		return nil, err
	}
	if err := writeNote(target, out); err != nil {
		return nil, err
	}

	result := r.newResult(models.ActionPullNewFile)
	result.NoteID = id
	result.Written = target

	logger.WithField("id", id).WithField("path", target).Info("PullNewFile: wrote note")
	return result, nil
}

// newFilePath returns "dir/name-version.ext" for "dir/name.ext"
func newFilePath(path, version string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + version + ext
}
