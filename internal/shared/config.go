package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file,
// with secrets overridable from the environment (see [Config.ApplyEnv]).
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Google  GoogleConfig  `toml:"google"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	PlaylistID   string `toml:"playlist_id"`
}

// GoogleConfig contains OAuth credentials for the YouTube and Gmail APIs.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// AuthConfig contains login and handshake secrets. The PEM fields accept
// semicolon-joined single-line values because the deployment environment
// cannot store literal newlines in one configuration value.
type AuthConfig struct {
	CookieKey     string `toml:"cookie_key"`     // 32-byte hex key for cookie encryption
	AdminPassword string `toml:"admin_password"` // compared during the handshake
	UserPassword  string `toml:"user_password"`  // simple password for the admin maintenance login
	AdminPubKey   string `toml:"admin_pub_key"`  // RSA public key, PEM
	SenderAddress string `toml:"sender_address"` // From address for magic-link mail
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"` // "production" or "development"
	CORSOrigin  string `toml:"cors_origin"`
}

// Production reports whether the server runs in production mode. Development
// mode relaxes key provisioning (see the session model's fallback key).
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the configuration. Environment
// values win over file values so deployments can keep secrets out of the file.
// PEM-valued variables are stored semicolon-joined and are rejoined here.
func (c *Config) ApplyEnv() {
	set := func(target *string, name string) {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(&c.Credentials.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	set(&c.Credentials.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	set(&c.Credentials.Spotify.PlaylistID, "SPOTIFY_PLAYLIST_ID")
	set(&c.Credentials.Google.ClientID, "CLIENT_ID")
	set(&c.Credentials.Google.ClientSecret, "CLIENT_SECRET")
	set(&c.Credentials.Google.RedirectURL, "REDIRECT_URL")
	set(&c.Auth.CookieKey, "COOKIE_KEY")
	set(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	set(&c.Auth.UserPassword, "USER_PASSWORD")
	set(&c.Auth.SenderAddress, "SENDER_ADDRESS")
	set(&c.Server.Environment, "APP_ENV")
	set(&c.Server.CORSOrigin, "CORS")

	if pem, ok := ParseMultilineRSAKey(os.Getenv("ADMIN_PUB_KEY")); ok {
		c.Auth.AdminPubKey = pem
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks that every setting the authentication core depends on is
// present. Missing settings are fatal; the caller aborts startup.
func (c *Config) Validate() error {
	required := []struct {
		value string
		name  string
	}{
		{c.Credentials.Google.ClientID, "google client_id"},
		{c.Credentials.Google.ClientSecret, "google client_secret"},
		{c.Credentials.Google.RedirectURL, "google redirect_url"},
		{c.Auth.CookieKey, "cookie_key"},
		{c.Auth.AdminPassword, "admin_password"},
		{c.Auth.UserPassword, "user_password"},
		{c.Auth.AdminPubKey, "admin_pub_key"},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingConfig, r.name)
		}
	}

	if len(c.Auth.CookieKey) != 64 {
		return fmt.Errorf("%w: cookie_key must be a 32-byte hex string", ErrInvalidConfig)
	}

	return nil
}
