package config

// Backends of the remote note store
const (
	BackendHackMD = "hackmd"
	BackendGist   = "gist"
)

// Default API endpoints per backend
const (
	DefaultHackMDURL = "https://api.hackmd.io/v1"
	DefaultGistURL   = "https://api.github.com/"
)

const (
	DefaultReadPermission    = "guest"
	DefaultCommentPermission = "guest"
)

var (
	// ReadPermissions are the accepted values of readPermission
	ReadPermissions = []string{"owner", "signed_in", "guest"}
	// CommentPermissions are the accepted values of commentPermission
	CommentPermissions = []string{"disabled", "forbidden", "owner", "signed_in", "guest"}
	// Backends are the accepted values of backend
	Backends = []string{BackendHackMD, BackendGist}
)

// Settings represents the persisted notesync settings
type Settings struct {
	Backend           string `yaml:"backend"`
	APIToken          string `yaml:"apiToken,omitempty"`
	APIURL            string `yaml:"apiURL,omitempty"`
	ReadPermission    string `yaml:"readPermission"`
	CommentPermission string `yaml:"commentPermission"`
	PoliciesPath      string `yaml:"policiesPath,omitempty"`
	TemplatesPath     string `yaml:"templatesPath,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists
func DefaultSettings() *Settings {
	return &Settings{
		Backend:           BackendHackMD,
		ReadPermission:    DefaultReadPermission,
		CommentPermission: DefaultCommentPermission,
	}
}

// Endpoint returns the configured API URL or the backend default
func (s *Settings) Endpoint() string {
	if s.APIURL != "" {
		return s.APIURL
	}
	if s.Backend == BackendGist {
		return DefaultGistURL
	}
	return DefaultHackMDURL
}

// Redacted returns a copy safe to print
func (s *Settings) Redacted() *Settings {
	c := *s
	if c.APIToken != "" {
		c.APIToken = "********"
	}
	return &c
}
