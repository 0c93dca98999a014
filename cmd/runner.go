package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/services"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the
// TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, mirrorCommand, tuiCommand, migrateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file when present, overlays environment values,
// and remembers the path for the rest of the command.
func (r *Runner) loadConfig(path string) *shared.Config {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loaded, err := shared.LoadConfig(path); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	config.ApplyEnv()
	r.config = config
	r.configPath = path
	return config
}

func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// googleEndpoint is Google's OAuth2 authorization and token endpoint pair.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// googleScopes cover the playlist writes the mirror issues and the magic-link
// mail sent through Gmail.
var googleScopes = []string{
	"https://www.googleapis.com/auth/youtube",
	"https://www.googleapis.com/auth/gmail.send",
}

func googleOAuth(config *shared.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.Credentials.Google.ClientID,
		ClientSecret: config.Credentials.Google.ClientSecret,
		RedirectURL:  config.Credentials.Google.RedirectURL,
		Scopes:       googleScopes,
		Endpoint:     googleEndpoint,
	}
}

// mirrorDeps bundles everything a one-shot mirror run needs.
type mirrorDeps struct {
	db     *sql.DB
	source *services.SpotifyService
	engine *tasks.MirrorEngine
}

// buildMirror wires the mirror engine against the stored admin credential.
// Fails when the admin consent flow has not run yet.
func (r *Runner) buildMirror(ctx context.Context, config *shared.Config) (*mirrorDeps, error) {
	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}

	gate := auth.NewAdminGate(repositories.NewAdminRepository(db), r.logger)
	ts, _, err := gate.UseAsAuth(googleOAuth(config))
	if err != nil {
		db.Close()
		if auth.IsNotSetUpErr(err) {
			return nil, fmt.Errorf("%w: run 'youtubefy setup --consent' first", err)
		}
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	source := services.NewSpotifyService(ctx, config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret, r.logger)
	catalog := services.NewYouTubeService(client, r.logger)
	engine := tasks.NewMirrorEngine(source, catalog, repositories.NewPlaylistCacheRepository(db), r.logger)

	return &mirrorDeps{db: db, source: source, engine: engine}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
