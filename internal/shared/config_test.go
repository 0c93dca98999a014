package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCookieKey = "c648004afc22e25698391a0addc7c3939863f280dcf338b76acf4ae04ca8f228"

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./youtubefy.db" {
			t.Errorf("expected database path ./youtubefy.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Production() {
			t.Error("default config should be development mode")
		}

		if config.Auth.SenderAddress == "" {
			t.Error("expected a default sender address")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
environment = "production"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
playlist_id = "37i9dQZF1DZ06evO0VDZny"

[credentials.google]
client_id = "google_id"
client_secret = "google_secret"
redirect_url = "http://localhost:8080/youtube-oauth2-callback"

[auth]
cookie_key = "` + testCookieKey + `"
admin_password = "hunter2"
user_password = "hunter3"
admin_pub_key = "-----BEGIN PUBLIC KEY-----\naaa\n-----END PUBLIC KEY-----"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if !config.Production() {
			t.Error("expected production mode")
		}

		if config.Auth.AdminPassword != "hunter2" {
			t.Errorf("expected admin password hunter2, got %s", config.Auth.AdminPassword)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("config should validate: %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("COOKIE_KEY", testCookieKey)
		t.Setenv("ADMIN_PASSWORD", "from-env")
		t.Setenv("ADMIN_PUB_KEY", "-----BEGIN PUBLIC KEY-----;aaa;-----END PUBLIC KEY-----")
		t.Setenv("PORT", "9999")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Auth.CookieKey != testCookieKey {
			t.Error("cookie key should come from environment")
		}

		if config.Auth.AdminPassword != "from-env" {
			t.Error("admin password should come from environment")
		}

		if !strings.Contains(config.Auth.AdminPubKey, "\n") {
			t.Error("admin public key should be rejoined into multiline PEM")
		}

		if config.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", config.Server.Port)
		}
	})

	t.Run("ValidateMissingSecret", func(t *testing.T) {
		config := DefaultConfig()

		err := config.Validate()
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("ValidateBadCookieKey", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Google.ClientID = "id"
		config.Credentials.Google.ClientSecret = "secret"
		config.Credentials.Google.RedirectURL = "http://localhost/cb"
		config.Auth.CookieKey = "short"
		config.Auth.AdminPassword = "a"
		config.Auth.UserPassword = "b"
		config.Auth.AdminPubKey = "pem"

		err := config.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
