package template

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gh-nvat/notesync/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "template")

// Template names; a custom template is read from "<name>.md.tmpl"
const (
	PushTemplate    = "push"
	SummaryTemplate = "summary"
)

const templateExt = ".md.tmpl"

// PushData is the data of the push template
type PushData struct {
	Title string
	Body  string
}

// Renderer handles template rendering
type Renderer struct {
	funcMap     template.FuncMap
	templateDir string
}

// NewRenderer creates a new template renderer. Templates found in
// templateDir override the defaults; templateDir may be empty.
func NewRenderer(templateDir string) *Renderer {
	return &Renderer{
		funcMap: template.FuncMap{
			"gt":    func(a, b int) bool { return a > b },
			"chomp": func(s string) string { return strings.TrimRight(s, "\n") },
		},
		templateDir: templateDir,
	}
}

// RenderPush renders the content sent to the remote note
func (r *Renderer) RenderPush(data PushData) (string, error) {
	text, err := r.load(PushTemplate, DefaultPushTemplate)
	if err != nil {
		return "", err
	}
	return r.RenderString(text, data)
}

// RenderSummary renders the notice printed after an action
func (r *Renderer) RenderSummary(result *models.SyncResult) (string, error) {
	text, err := r.load(SummaryTemplate, DefaultSummaryTemplate)
	if err != nil {
		return "", err
	}
	out, err := r.RenderString(text, result)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// load returns the custom template when present, otherwise fallback
func (r *Renderer) load(name, fallback string) (string, error) {
	if r.templateDir == "" {
		return fallback, nil
	}

	path := filepath.Join(r.templateDir, name+templateExt)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s template: %w", name, err)
	}

	logger.WithField("path", path).Debug("Using custom template")
	return string(content), nil
}

// Render renders a template file with the provided data
func (r *Renderer) Render(templatePath string, data interface{}) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	return r.RenderString(string(content), data)
}

// RenderString renders a template string with the provided data
func (r *Renderer) RenderString(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("template").Funcs(r.funcMap).Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// DefaultPushTemplate prefixes the note body with its title heading
const DefaultPushTemplate = "# {{.Title}}\n{{.Body}}"

// DefaultSummaryTemplate is rendered with a models.SyncResult
const DefaultSummaryTemplate = `
{{- if eq .Action "push" -}}
Pushed {{.File}} to the {{.Version}} note {{.NoteID}}{{if .Created}} (created){{end}}
{{- if .Link}}
Link: {{.Link}}{{if .Copied}} (copied to clipboard){{end}}
{{- end}}
{{- else if eq .Action "pull" -}}
Merged the {{.Version}} note {{.NoteID}} into {{.Written}}
{{- if gt .Conflicts 0}}
{{.Conflicts}} conflict(s) to resolve
{{- end}}
{{- else if eq .Action "pull-force" -}}
Replaced {{.Written}} with the {{.Version}} note {{.NoteID}}
{{- else if eq .Action "pull-new-file" -}}
Wrote the {{.Version}} note {{.NoteID}} to {{.Written}}
{{- else if eq .Action "diff" -}}
{{- if .Diff -}}
{{chomp .Diff}}
{{.AddedLineCount}} line(s) added, {{.DeletedLineCount}} line(s) removed
{{- else -}}
{{.File}} matches the {{.Version}} note {{.NoteID}}
{{- end}}
{{- else if eq .Action "status" -}}
{{.File}}
{{- range .Versions}}
  {{.Version}}: {{if not .Linked}}not pushed{{else if .Error}}error: {{.Error}}{{else if .InSync}}in sync ({{.NoteID}}){{else}}differs ({{.NoteID}}, +{{.Added}} -{{.Deleted}}){{end}}
{{- end}}
{{- if or (gt .LocalConflicts 0) (gt .LocalMalformed 0)}}
  local: {{.LocalConflicts}} unresolved conflict(s), {{.LocalMalformed}} malformed marker(s)
{{- end}}
{{- end}}
{{- if .PolicySummary}}
Push checks: {{.PolicySummary}}
{{- end}}
{{- range .PolicyMessages}}
  - {{.}}
{{- end}}
`
