package notestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gh-nvat/notesync/src/pkg/models"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	gistExt         = ".md"
	defaultGistName = "note"
)

// GistClient stores notes as single-file GitHub gists using go-github
type GistClient struct {
	client *github.Client
}

// Ensure GistClient implements Store
var _ Store = (*GistClient)(nil)

// NewGistClient creates a gist store. baseURL points at the GitHub REST API.
func NewGistClient(baseURL, token string) (*GistClient, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse API URL: %w", err)
		}
		client.BaseURL = u
	}

	return &GistClient{client: client}, nil
}

// Fetch retrieves the note stored in a gist
func (c *GistClient) Fetch(ctx context.Context, id string) (*models.Note, error) {
	gist, _, err := c.client.Gists.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gist %s: %w", id, mapGitHubError(err))
	}

	name, file, ok := noteFile(gist)
	if !ok {
		return nil, fmt.Errorf("failed to fetch gist %s: %w", id, ErrNotFound)
	}

	read := "owner"
	if gist.GetPublic() {
		read = "guest"
	}

	logger.WithField("id", id).WithField("file", name).Debug("Fetched gist")
	return &models.Note{
		ID:             gist.GetID(),
		Title:          strings.TrimSuffix(name, gistExt),
		Content:        file.GetContent(),
		Link:           gist.GetHTMLURL(),
		ReadPermission: read,
		LastChangedAt:  gist.GetUpdatedAt().Time,
	}, nil
}

// Create creates a gist holding the note. Guest read access makes it public.
func (c *GistClient) Create(ctx context.Context, content string, perms models.Permissions) (*models.Note, error) {
	title := titleFromContent(content)
	name := title
	if name == "" {
		name = defaultGistName
	}
	name += gistExt

	gist := &github.Gist{
		Description: github.String(title),
		Public:      github.Bool(perms.Read == "guest"),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(name): {Content: github.String(content)},
		},
	}

	created, _, err := c.client.Gists.Create(ctx, gist)
	if err != nil {
		return nil, fmt.Errorf("failed to create gist: %w", mapGitHubError(err))
	}

	logger.WithField("id", created.GetID()).WithField("link", created.GetHTMLURL()).Info("Created gist")
	return &models.Note{
		ID:                created.GetID(),
		Title:             title,
		Content:           content,
		Link:              created.GetHTMLURL(),
		ReadPermission:    perms.Read,
		WritePermission:   perms.Write,
		CommentPermission: perms.Comment,
	}, nil
}

// Update replaces the content of the gist's note file
func (c *GistClient) Update(ctx context.Context, id, content string) error {
	gist, _, err := c.client.Gists.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch gist %s: %w", id, mapGitHubError(err))
	}
	name, _, ok := noteFile(gist)
	if !ok {
		name = defaultGistName + gistExt
	}

	edit := &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(name): {Content: github.String(content)},
		},
	}
	if _, _, err := c.client.Gists.Edit(ctx, id, edit); err != nil {
		return fmt.Errorf("failed to update gist %s: %w", id, mapGitHubError(err))
	}

	logger.WithField("id", id).WithField("file", name).Info("Updated gist")
	return nil
}

// noteFile picks the note file of a gist: the first markdown file by name,
// otherwise the first file.
func noteFile(gist *github.Gist) (string, github.GistFile, bool) {
	names := make([]string, 0, len(gist.Files))
	for name := range gist.Files {
		names = append(names, string(name))
	}
	if len(names) == 0 {
		return "", github.GistFile{}, false
	}
	sort.Strings(names)

	pick := names[0]
	for _, name := range names {
		if strings.HasSuffix(name, gistExt) {
			pick = name
			break
		}
	}
	return pick, gist.Files[github.GistFilename(pick)], true
}

func mapGitHubError(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return err
}
