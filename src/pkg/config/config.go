package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var logger = log.WithField("package", "config")

// Environment variables read by Load
const (
	EnvAPIToken    = "NOTESYNC_API_TOKEN"
	EnvBackend     = "NOTESYNC_BACKEND"
	EnvHackMDToken = "HACKMD_API_TOKEN"
	EnvGHToken     = "GH_TOKEN"
	EnvGitHubToken = "GITHUB_TOKEN"
)

const configFileName = "config.yaml"

// SettingsLoader defines the interface for loading and saving settings
type SettingsLoader interface {
	// Load reads the settings file and applies .env and environment overrides
	Load(path string) (*Settings, error)
	// LoadFile reads the settings file only
	LoadFile(path string) (*Settings, error)
	// Save writes the settings file
	Save(path string, settings *Settings) error
	// Validate validates the settings
	Validate(settings *Settings) error
}

// Loader handles loading configuration files
type Loader struct{}

// Ensure Loader implements SettingsLoader
var _ SettingsLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// DefaultPath returns the settings file under the user config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "notesync", configFileName), nil
}

// LoadFile reads the settings file. A missing file gives the defaults.
func (l *Loader) LoadFile(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", path).Debug("No settings file, using defaults")
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return settings, nil
}

// Load reads the settings file, then .env and the environment.
// NOTESYNC_API_TOKEN always wins; backend specific tokens only fill an empty
// token.
func (l *Loader) Load(path string) (*Settings, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML settings
	settings, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}

	// 3. Override with environment variables if present
	if backend := os.Getenv(EnvBackend); backend != "" {
		settings.Backend = backend
	}
	if token := os.Getenv(EnvAPIToken); token != "" {
		settings.APIToken = token
	}
	if settings.APIToken == "" {
		switch settings.Backend {
		case BackendHackMD:
			settings.APIToken = os.Getenv(EnvHackMDToken)
		case BackendGist:
			settings.APIToken = os.Getenv(EnvGHToken)
			if settings.APIToken == "" {
				settings.APIToken = os.Getenv(EnvGitHubToken)
			}
		}
	}

	if err := l.Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes the settings file, creating its directory
func (l *Loader) Save(path string, settings *Settings) error {
	if err := l.Validate(settings); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	// settings may hold an API token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	logger.WithField("path", path).Info("Saved settings")
	return nil
}

// Validate validates the settings
func (l *Loader) Validate(settings *Settings) error {
	if !slices.Contains(Backends, settings.Backend) {
		return fmt.Errorf("unsupported backend %q (must be one of %v)", settings.Backend, Backends)
	}
	if !slices.Contains(ReadPermissions, settings.ReadPermission) {
		return fmt.Errorf("invalid readPermission %q (must be one of %v)", settings.ReadPermission, ReadPermissions)
	}
	if !slices.Contains(CommentPermissions, settings.CommentPermission) {
		return fmt.Errorf("invalid commentPermission %q (must be one of %v)", settings.CommentPermission, CommentPermissions)
	}
	return nil
}

// Set updates one setting by its YAML key
func Set(settings *Settings, key, value string) error {
	switch key {
	case "backend":
		settings.Backend = value
	case "apiToken":
		settings.APIToken = value
	case "apiURL":
		settings.APIURL = value
	case "readPermission":
		settings.ReadPermission = value
	case "commentPermission":
		settings.CommentPermission = value
	case "policiesPath":
		settings.PoliciesPath = value
	case "templatesPath":
		settings.TemplatesPath = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
