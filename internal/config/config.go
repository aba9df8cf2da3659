// Package config loads mudra settings.
//
// Settings live in a YAML file under os.UserConfigDir():
//
//	~/Library/Application Support/mudra/config.yaml   (macOS)
//	~/.config/mudra/config.yaml                       (Linux)
//	%AppData%/mudra/config.yaml                       (Windows)
//
// Spotify credentials may instead come from the environment or a dotenv
// file (secrets.env by default), which take precedence over the YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/detector"
)

const (
	appDir   = "mudra"
	fileName = "config.yaml"
	dataDir  = ".mudra"
	dbName   = "mudra.db"

	// DefaultSecretsFile is the dotenv file read for Spotify credentials.
	DefaultSecretsFile = "secrets.env"
)

// Environment variables for Spotify credentials. The SPOTIPY_ spellings
// are accepted as fallbacks.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

var envFallbacks = map[string]string{
	EnvClientID:     "SPOTIPY_CLIENT_ID",
	EnvClientSecret: "SPOTIPY_CLIENT_SECRET",
	EnvRedirectURI:  "SPOTIPY_REDIRECT_URI",
}

// Duration is a time.Duration written as a Go duration string ("2s").
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Spotify holds Web API credentials and endpoints.
type Spotify struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`

	// APIBase, AuthURL and TokenURL override the public endpoints.
	APIBase  string `yaml:"api_base,omitempty"`
	AuthURL  string `yaml:"auth_url,omitempty"`
	TokenURL string `yaml:"token_url,omitempty"`
}

// Server configures the local status server.
type Server struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`

	// StaticDir is served at / when set.
	StaticDir string `yaml:"static_dir,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	CameraID int  `yaml:"camera_id"`
	Mirror   bool `yaml:"mirror"`
	Display  bool `yaml:"display"`
	Tray     bool `yaml:"tray"`

	Cooldown   Duration `yaml:"cooldown"`
	APITimeout Duration `yaml:"api_timeout"`

	// DBPath is the SQLite database. Empty means ~/.mudra/mudra.db.
	DBPath      string `yaml:"db_path,omitempty"`
	SecretsFile string `yaml:"secrets_file"`

	Detector detector.Config `yaml:"detector"`
	Spotify  Spotify         `yaml:"spotify"`
	Server   Server          `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CameraID:    0,
		Mirror:      true,
		Display:     true,
		Cooldown:    Duration(2 * time.Second),
		APITimeout:  Duration(3 * time.Second),
		SecretsFile: DefaultSecretsFile,
		Detector:    detector.DefaultConfig(),
		Spotify: Spotify{
			RedirectURI: "http://127.0.0.1:8888/callback",
		},
		Server: Server{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
	}
}

// DefaultPath returns the config file location under os.UserConfigDir().
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the YAML file at path over the defaults, then applies
// credentials from the secrets file and the environment. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.loadSecrets(); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadSecrets reads the dotenv file into the process environment without
// overriding variables that are already set.
func (c *Config) loadSecrets() error {
	if c.SecretsFile == "" {
		return nil
	}
	err := godotenv.Load(c.SecretsFile)
	if err == nil {
		slog.Debug("loaded secrets", "path", c.SecretsFile)
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load secrets %s: %w", c.SecretsFile, err)
}

func (c *Config) applyEnv(getenv func(string) string) {
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return getenv(envFallbacks[key])
	}

	if v := lookup(EnvClientID); v != "" {
		c.Spotify.ClientID = v
	}
	if v := lookup(EnvClientSecret); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := lookup(EnvRedirectURI); v != "" {
		c.Spotify.RedirectURI = v
	}
}

// Validate checks value ranges. Credentials are checked separately by
// RequireCredentials so commands that never reach Spotify still run.
func (c *Config) Validate() error {
	var errs []error
	if c.CameraID < 0 {
		errs = append(errs, fmt.Errorf("camera_id must be >= 0, got %d", c.CameraID))
	}
	if c.Cooldown <= 0 {
		errs = append(errs, fmt.Errorf("cooldown must be positive, got %s", c.Cooldown.Std()))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("api_timeout must be positive, got %s", c.APITimeout.Std()))
	}
	if c.Detector.MaxHands != 1 {
		errs = append(errs, fmt.Errorf("detector.max_hands must be 1, got %d", c.Detector.MaxHands))
	}
	if !inUnit(c.Detector.MinConfidence) {
		errs = append(errs, fmt.Errorf("detector.min_confidence must be in [0,1], got %g", c.Detector.MinConfidence))
	}
	if !inUnit(c.Detector.MinTrackingConf) {
		errs = append(errs, fmt.Errorf("detector.min_tracking_confidence must be in [0,1], got %g", c.Detector.MinTrackingConf))
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required when the server is enabled"))
	}
	return errors.Join(errs...)
}

// RequireCredentials reports missing Spotify credentials.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Spotify.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if c.Spotify.RedirectURI == "" {
		missing = append(missing, EnvRedirectURI)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing spotify credentials: set %v in the environment, %s, or the spotify section of the config file",
			missing, c.SecretsFile)
	}
	return nil
}

// ResolveDBPath returns DBPath, defaulting to ~/.mudra/mudra.db, and
// creates its directory.
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, dataDir, dbName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return path, nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Spotify.ClientSecret != "" {
		out.Spotify.ClientSecret = "********"
	}
	return &out
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
