package server

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/cache"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/outcome"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/services"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/tasks"
	"github.com/desertthunder/youtubefy/internal/web"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	sessionCookie = "yt_session"
	adminCookie   = "yt_admin"

	// magicLinkWindow is how long an emailed login code stays redeemable.
	magicLinkWindow = 3 * time.Minute
)

// trustedProviders are the mail domains login links are sent to. Anything
// else is rejected before a code is ever generated.
var trustedProviders = []string{
	"gmail.com",
	"googlemail.com",
	"outlook.com",
	"hotmail.com",
	"yahoo.com",
	"icloud.com",
	"protonmail.com",
	"proton.me",
}

// loginCode is a pending magic-link entry. The cache key is the random code
// carried in the link; the value remembers who asked and when.
type loginCode struct {
	Email    string
	IssuedAt time.Time
}

// App is the web application. It implements [Handler]; every route it serves
// dispatches through ServeHTTP.
type App struct {
	config    *shared.Config
	logger    *log.Logger
	pages     *web.Pages
	users     *repositories.UserRepository
	sessions  *auth.SessionModel
	gate      *auth.AdminGate
	handshake *auth.Handshake
	mailer    services.Mailer
	engine    *tasks.MirrorEngine
	google    *oauth2.Config

	// pending login codes, keyed by the code string itself
	codes        *cache.Cache[loginCode]
	linkLimiter  *rate.Limiter
	loginLimiter *rate.Limiter

	mu           sync.Mutex
	consentState string
	lastResult   *tasks.MirrorResult

	now func() time.Time
}

// NewApp wires the application. The google config must carry the YouTube,
// Gmail send, and userinfo scopes the mirror needs.
func NewApp(
	config *shared.Config,
	pages *web.Pages,
	users *repositories.UserRepository,
	sessions *auth.SessionModel,
	gate *auth.AdminGate,
	handshake *auth.Handshake,
	mailer services.Mailer,
	engine *tasks.MirrorEngine,
	google *oauth2.Config,
	logger *log.Logger,
) *App {
	return &App{
		config:       config,
		logger:       logger,
		pages:        pages,
		users:        users,
		sessions:     sessions,
		gate:         gate,
		handshake:    handshake,
		mailer:       mailer,
		engine:       engine,
		google:       google,
		codes:        cache.New[loginCode](nil, cache.Options{PreventRewrites: true}),
		linkLimiter:  PerHour(3),
		loginLimiter: PerHour(15),
		now:          time.Now,
	}
}

// Routes returns every path the app serves.
func (a *App) Routes() []string {
	return []string{
		"/",
		"/login",
		"/logout",
		"/app",
		"/handshake",
		"/adm-login",
		"/adm-logout",
		"/youtube-oauth2-callback",
		"/run",
	}
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		a.handleIndex(w, r)
	case "/login":
		if r.Method == http.MethodPost {
			a.handleLoginRequest(w, r)
			return
		}
		a.handleLoginPage(w, r)
	case "/logout":
		a.handleLogout(w, r)
	case "/app":
		a.handleApp(w, r)
	case "/handshake":
		a.handleHandshake(w, r)
	case "/adm-login":
		a.handleAdminLogin(w, r)
	case "/adm-logout":
		a.handleAdminLogout(w, r)
	case "/youtube-oauth2-callback":
		a.handleConsentCallback(w, r)
	case "/run":
		a.handleRun(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Router builds the app's router with the middleware stack applied.
func (a *App) Router() *BasicRouter {
	router := NewBasicRouter()
	router.Use(
		LoggingMiddleware(a.logger),
		SetupGateMiddleware(a.gate, a.pages, a.logger),
		RateLimitMiddleware(a.loginLimiter, "/login"),
	)
	router.Handler(a)
	return router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: a.Router()}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) render(w http.ResponseWriter, name string, data any) {
	if err := a.pages.Render(w, name, data); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
	}
}

// publicOrigin is the origin login links point back at. The CORS wildcard is
// not an origin and falls through to the host/port pair.
func (a *App) publicOrigin() string {
	if origin := a.config.Server.CORSOrigin; origin != "" && origin != "*" {
		return strings.TrimSuffix(origin, "/")
	}
	return fmt.Sprintf("http://%s:%d", a.config.Server.Host, a.config.Server.Port)
}

// session cookie plumbing

func (a *App) writeSessionCookie(w http.ResponseWriter, envelope *models.SessionEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func (a *App) sessionFromRequest(r *http.Request) (*models.SessionEnvelope, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, err
	}

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session cookie", shared.ErrUnauthorized)
	}

	var envelope models.SessionEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: bad session cookie", shared.ErrUnauthorized)
	}
	return &envelope, nil
}

func (a *App) signedIn(r *http.Request) bool {
	envelope, err := a.sessionFromRequest(r)
	if err != nil {
		return false
	}

	ok, err := a.sessions.Verify(*envelope)
	return err == nil && ok
}

func (a *App) adminAuthorized(r *http.Request) bool {
	cookie, err := r.Cookie(adminCookie)
	if err != nil {
		return false
	}
	return a.handshake.Matches(cookie.Value)
}

// handlers

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.render(w, "index", web.IndexData{
		PlaylistName: a.lastPlaylistName(),
		SignedIn:     a.signedIn(r),
	})
}

func (a *App) lastPlaylistName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastResult != nil && a.lastResult.Source != nil {
		return a.lastResult.Source.Playlist.Name
	}
	return ""
}

// handleLoginRequest takes an email address and mails a one-time login link.
// The response is the same whether or not a mail went out; an attacker learns
// nothing about addresses or pending codes.
func (a *App) handleLoginRequest(w http.ResponseWriter, r *http.Request) {
	if !a.linkLimiter.Allow() {
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		a.render(w, "login", web.LoginData{Error: "That didn't work. Try again."})
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.PostFormValue("email")))
	if !validLoginEmail(email) {
		a.render(w, "login", web.LoginData{Error: "Enter an address from a supported mail provider."})
		return
	}

	code, err := shared.RandomHex(32)
	if err != nil {
		a.logger.Error("failed to generate login code", "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	// every request mints its own code; earlier ones stay redeemable until
	// they expire. A collision on 32 random bytes means the generator is
	// broken, so treat it as a hard failure.
	if _, err := a.codes.Set(code, loginCode{Email: email, IssuedAt: a.now()}); err != nil {
		a.logger.Error("failed to store login code", "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	link := fmt.Sprintf("%s/login?code=%s&email=%s", a.publicOrigin(), code, url.QueryEscape(email))
	if err := a.mailer.SendMagicLink(r.Context(), email, link); err != nil {
		a.logger.Error("failed to send magic link", "error", err)
	}

	a.render(w, "login", web.LoginData{Sent: true})
}

// handleLoginPage renders the form, or redeems a magic-link code when the
// query carries one. Redemption failures all look alike.
func (a *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	email := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))

	if code == "" || email == "" {
		a.render(w, "login", web.LoginData{})
		return
	}

	if !a.redeemCode(email, code) {
		a.render(w, "login", web.LoginData{Error: "That link didn't work. Request a new one."})
		return
	}

	user, err := a.findOrCreateUser(r, email)
	if err != nil {
		a.logger.Error("failed to resolve user", "error", err)
		a.render(w, "login", web.LoginData{Error: "That link didn't work. Request a new one."})
		return
	}

	envelope, err := a.sessions.Create(user)
	if err != nil {
		a.logger.Error("failed to create session", "error", err)
		a.render(w, "login", web.LoginData{Error: "That link didn't work. Request a new one."})
		return
	}

	if err := a.writeSessionCookie(w, envelope); err != nil {
		a.logger.Error("failed to write session cookie", "error", err)
		a.render(w, "login", web.LoginData{Error: "That link didn't work. Request a new one."})
		return
	}

	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

// redeemCode consumes the pending entry stored under code. The entry is
// evicted before the window check; a stale or mismatched code cannot be
// retried.
func (a *App) redeemCode(email, code string) bool {
	entry, err := a.codes.Get(code)
	if err != nil {
		return false
	}

	a.codes.Unset(code)

	if entry.Email != email {
		return false
	}
	return a.now().Sub(entry.IssuedAt) < magicLinkWindow
}

func (a *App) findOrCreateUser(r *http.Request, email string) (*models.User, error) {
	user, err := a.users.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	info, _ := json.Marshal(map[string]string{
		"user_agent":  r.UserAgent(),
		"remote_addr": r.RemoteAddr,
	})
	return a.users.Create(email, string(info))
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if envelope, err := a.sessionFromRequest(r); err == nil {
		if _, err := a.sessions.Delete(*envelope); err != nil {
			a.logger.Warn("failed to delete session", "error", err)
		}
	}

	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleApp(w http.ResponseWriter, r *http.Request) {
	if !a.signedIn(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := web.AppData{PlaylistName: "Your playlist"}

	a.mu.Lock()
	if a.lastResult != nil {
		if a.lastResult.Source != nil {
			data.PlaylistName = a.lastResult.Source.Playlist.Name
			data.TrackCount = len(a.lastResult.Source.Tracks)
		}
		data.PlaylistURL = a.lastResult.PlaylistURL
	}
	a.mu.Unlock()

	a.render(w, "app", data)
}

// admin routes

// handleHandshake hands out the sealed one-time key. Initiation is guarded
// by the maintenance password so strangers cannot churn the pending key.
func (a *App) handleHandshake(w http.ResponseWriter, r *http.Request) {
	supplied := r.URL.Query().Get("auth")
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(a.config.Auth.UserPassword)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sealed, err := a.handshake.Initiate()
	if err != nil {
		a.logger.Error("failed to initiate handshake", "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, sealed)
}

// handleAdminLogin completes the handshake. On success the admin id cookie is
// set and the Google consent URL is returned so setup can continue; every
// failure is a bare 401.
func (a *App) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	password := r.URL.Query().Get("password")

	id, err := a.handshake.Complete(password)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := shared.RandomHex(16)
	if err != nil {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	a.mu.Lock()
	a.consentState = state
	a.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"consent_url": a.google.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")),
	})
}

func (a *App) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	a.handshake.Reset()
	clearCookie(w, adminCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleConsentCallback finishes the Google consent flow: the code is
// exchanged and the refresh token becomes the stored admin credential.
func (a *App) handleConsentCallback(w http.ResponseWriter, r *http.Request) {
	if !a.adminAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	a.mu.Lock()
	state := a.consentState
	a.consentState = ""
	a.mu.Unlock()

	if state == "" || r.URL.Query().Get("state") != state {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := a.google.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	if token.RefreshToken == "" {
		a.logger.Error("consent produced no refresh token")
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	cred := models.AdminCredential{
		Email:        a.config.Auth.SenderAddress,
		RefreshToken: token.RefreshToken,
	}
	if err := a.gate.Save(cred); err != nil {
		a.logger.Error("failed to save admin credential", "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRun triggers a mirror run. Admin only.
func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	if !a.adminAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	run := outcome.Guard(func() (*tasks.MirrorResult, error) {
		return a.engine.Run(r.Context(), nil, a.config.Credentials.Spotify.PlaylistID)
	})
	result, err := run.Unwrap()
	if result != nil {
		a.mu.Lock()
		a.lastResult = result
		a.mu.Unlock()
	}
	if err != nil {
		a.logger.Error("mirror run failed", "error", err)
		http.Error(w, "Mirror run failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"playlist_url": result.PlaylistURL,
		"inserted":     result.Inserted,
		"skipped":      result.Skipped,
		"unmatched":    result.Unmatched,
		"failed":       result.Failed,
		"from_cache":   result.FromCache,
	})
}

// validLoginEmail accepts well-formed addresses on the trusted providers.
func validLoginEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	for _, provider := range trustedProviders {
		if domain == provider {
			return true
		}
	}
	return false
}
