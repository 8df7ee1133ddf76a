// Package notestore talks to the remote service a note is shared on.
package notestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/config"
	"github.com/gh-nvat/notesync/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "notestore")

var (
	// ErrNotFound is returned when the remote note does not exist
	ErrNotFound = errors.New("note not found")
	// ErrUnauthorized is returned when the API token is missing or rejected
	ErrUnauthorized = errors.New("unauthorized")
)

// Store defines the interface for remote note operations
type Store interface {
	// Fetch retrieves a note by id
	Fetch(ctx context.Context, id string) (*models.Note, error)
	// Create creates a new note and returns it with its id and link
	Create(ctx context.Context, content string, perms models.Permissions) (*models.Note, error)
	// Update replaces the content of an existing note
	Update(ctx context.Context, id, content string) error
}

// New creates the store selected by settings
func New(settings *config.Settings) (Store, error) {
	if settings.APIToken == "" {
		return nil, fmt.Errorf("%w: API token not set, run `notesync config set apiToken <token>` or set %s",
			ErrUnauthorized, config.EnvAPIToken)
	}

	logger.WithField("backend", settings.Backend).WithField("url", settings.Endpoint()).Debug("Creating note store")

	switch settings.Backend {
	case config.BackendHackMD:
		return NewHackMDClient(settings.Endpoint(), settings.APIToken), nil
	case config.BackendGist:
		return NewGistClient(settings.Endpoint(), settings.APIToken)
	default:
		return nil, fmt.Errorf("unsupported backend %q", settings.Backend)
	}
}

// titleFromContent returns the text of a leading "# " heading
func titleFromContent(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	title, ok := strings.CutPrefix(first, "# ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(title)
}
