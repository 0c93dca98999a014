package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/server"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Setup initializes the database, runs migrations, and optionally walks the
// Google consent flow to provision the admin credential.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		}
	}

	config := r.loadConfig(configPath)

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	if !cmd.Bool("consent") {
		return nil
	}

	return r.runConsent(ctx, cmd, config, db)
}

// runConsent captures the admin's Google refresh token through a local
// callback server and stores it behind the admin gate.
func (r *Runner) runConsent(ctx context.Context, cmd *cli.Command, config *shared.Config, db *sql.DB) error {
	gate := auth.NewAdminGate(repositories.NewAdminRepository(db), r.logger)
	if isSetUp, err := gate.IsSetUp(); err != nil {
		return err
	} else if isSetUp {
		return fmt.Errorf("%w: remove the stored credential before re-running consent", shared.ErrAdminExists)
	}

	port := cmd.Int("port")
	google := googleOAuth(config)
	google.RedirectURL = fmt.Sprintf("http://localhost:%d/youtube-oauth2-callback", port)

	state, err := shared.RandomHex(16)
	if err != nil {
		return err
	}

	handler := server.NewConsentHandler(google, state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	consentURL := google.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	r.writePlainln("Open the consent page to authorize YouTube and Gmail access:")
	r.writePlain("%s\n", consentURL)
	if err := shared.OpenBrowser(consentURL); err != nil {
		r.logger.Debug("could not open browser", "error", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return err
		}
		if result.Token.RefreshToken == "" {
			return fmt.Errorf("%w: consent response carried no refresh token", shared.ErrNoRefreshToken)
		}

		cred := models.AdminCredential{
			Email:        config.Auth.SenderAddress,
			RefreshToken: result.Token.RefreshToken,
		}
		if err := gate.Save(cred); err != nil {
			return err
		}

		r.writePlainln("Admin credential stored. The mirror can now reach YouTube and Gmail.")
		return nil
	}
}
