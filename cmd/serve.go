package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/server"
	"github.com/desertthunder/youtubefy/internal/services"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/tasks"
	"github.com/desertthunder/youtubefy/internal/web"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Serve wires the full application and runs the HTTP server until the context
// is cancelled.
//
// The YouTube and Gmail clients share a token source that defers the admin
// credential lookup, so the server comes up before the consent flow has run;
// the setup gate keeps user-facing routes closed until it has.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pages, err := web.NewPages()
	if err != nil {
		return err
	}

	sessions, err := auth.NewSessionModel(repositories.NewSessionRepository(db), config.Production(), r.logger)
	if err != nil {
		return err
	}

	gate := auth.NewAdminGate(repositories.NewAdminRepository(db), r.logger)
	handshake, err := auth.NewHandshake(config.Auth.AdminPubKey, config.Auth.AdminPassword, r.logger)
	if err != nil {
		return err
	}

	google := googleOAuth(config)
	client := oauth2.NewClient(ctx, gate.TokenSource(google))
	catalog := services.NewYouTubeService(client, r.logger)
	mailer := services.NewGmailService(client, config.Auth.SenderAddress, r.logger)

	source := services.NewSpotifyService(ctx, config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret, r.logger)
	engine := tasks.NewMirrorEngine(source, catalog, repositories.NewPlaylistCacheRepository(db), r.logger)

	app := server.NewApp(config, pages, repositories.NewUserRepository(db), sessions, gate, handshake, mailer, engine, google, r.logger)

	r.logger.Info("starting server", "host", config.Server.Host, "port", config.Server.Port)
	return app.Serve(ctx)
}
