package notestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gh-nvat/notesync/src/pkg/models"
	"golang.org/x/oauth2"
)

// HackMDClient handles HackMD API interactions
type HackMDClient struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure HackMDClient implements Store
var _ Store = (*HackMDClient)(nil)

// NewHackMDClient creates a HackMD client authenticating with a bearer token
func NewHackMDClient(baseURL, token string) *HackMDClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &HackMDClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: oauth2.NewClient(context.Background(), ts),
	}
}

type hackmdNote struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	PublishLink       string `json:"publishLink"`
	ReadPermission    string `json:"readPermission"`
	WritePermission   string `json:"writePermission"`
	CommentPermission string `json:"commentPermission"`
	LastChangedAt     int64  `json:"lastChangedAt"` // unix millis
}

func (n *hackmdNote) toModel() *models.Note {
	note := &models.Note{
		ID:                n.ID,
		Title:             n.Title,
		Content:           n.Content,
		Link:              n.PublishLink,
		ReadPermission:    n.ReadPermission,
		WritePermission:   n.WritePermission,
		CommentPermission: n.CommentPermission,
	}
	if n.LastChangedAt > 0 {
		note.LastChangedAt = time.UnixMilli(n.LastChangedAt).UTC()
	}
	return note
}

// Fetch retrieves a note by id
func (c *HackMDClient) Fetch(ctx context.Context, id string) (*models.Note, error) {
	var note hackmdNote
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, fmt.Errorf("failed to fetch note %s: %w", id, err)
	}
	logger.WithField("id", id).WithField("bytes", len(note.Content)).Debug("Fetched note")
	return note.toModel(), nil
}

// Create creates a new note
func (c *HackMDClient) Create(ctx context.Context, content string, perms models.Permissions) (*models.Note, error) {
	payload := map[string]string{
		"content":           content,
		"readPermission":    perms.Read,
		"writePermission":   perms.Write,
		"commentPermission": perms.Comment,
	}

	var note hackmdNote
	if err := c.do(ctx, http.MethodPost, "/notes", payload, &note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	if note.ID == "" {
		return nil, fmt.Errorf("failed to create note: response has no id")
	}

	logger.WithField("id", note.ID).WithField("link", note.PublishLink).Info("Created note")
	return note.toModel(), nil
}

// Update replaces the content of a note
func (c *HackMDClient) Update(ctx context.Context, id, content string) error {
	payload := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPatch, "/notes/"+url.PathEscape(id), payload, nil); err != nil {
		return fmt.Errorf("failed to update note %s: %w", id, err)
	}
	logger.WithField("id", id).Info("Updated note")
	return nil
}

// do sends one request and decodes the JSON response into out when non-nil
func (c *HackMDClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HackMD API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
