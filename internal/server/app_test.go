package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/cookies"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/tasks"
	mocks "github.com/desertthunder/youtubefy/internal/testing"
	"github.com/desertthunder/youtubefy/internal/web"
	"golang.org/x/oauth2"
)

const (
	testAdminPassword = "hunter2-but-longer"
	testUserPassword  = "maintenance-pass"
)

type testApp struct {
	app     *App
	mailer  *mocks.MockMailer
	catalog *mocks.MockCatalog
	gate    *auth.AdminGate
	priv    *rsa.PrivateKey
}

func setupApp(t *testing.T, adminProvisioned bool) *testApp {
	t.Helper()

	logger := shared.NewLogger(io.Discard)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pages, err := web.NewPages()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	sessions, err := auth.NewSessionModel(repositories.NewSessionRepository(db), false, logger)
	if err != nil {
		t.Fatalf("failed to create session model: %v", err)
	}

	gate := auth.NewAdminGate(repositories.NewAdminRepository(db), logger)
	if adminProvisioned {
		cred := models.AdminCredential{Email: "admin@example.com", RefreshToken: "refresh-1"}
		if err := gate.Save(cred); err != nil {
			t.Fatalf("failed to provision admin: %v", err)
		}
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	handshake, err := auth.NewHandshake(string(pubPEM), testAdminPassword, logger)
	if err != nil {
		t.Fatalf("failed to construct handshake: %v", err)
	}

	mailer := &mocks.MockMailer{}
	catalog := mocks.NewMockCatalog()
	catalog.Videos["Kool-Aid|Bring Me The Horizon"] = "v1"

	source := &mocks.MockSource{Export: &models.PlaylistExport{
		Playlist: models.Playlist{ID: "src-1", Name: "Roadtrip"},
		Tracks:   []models.Track{{ID: "t1", Title: "Kool-Aid", Artist: "Bring Me The Horizon"}},
	}}
	engine := tasks.NewMirrorEngine(source, catalog, nil, logger)

	config := &shared.Config{}
	config.Credentials.Spotify.PlaylistID = "src-1"
	config.Auth.UserPassword = testUserPassword
	config.Auth.SenderAddress = "noreply@example.com"
	config.Server.Host = "localhost"
	config.Server.Port = 3000

	google := &oauth2.Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:3000/youtube-oauth2-callback",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.google.com/o/oauth2/auth"},
	}

	app := NewApp(config, pages, repositories.NewUserRepository(db), sessions, gate, handshake, mailer, engine, google, logger)

	return &testApp{app: app, mailer: mailer, catalog: catalog, gate: gate, priv: priv}
}

func (ta *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(w, req)
	return w
}

func (ta *testApp) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(w, req)
	return w
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

// adminLogin performs the full handshake as the operator and returns the
// admin cookie.
func adminLogin(t *testing.T, ta *testApp) *http.Cookie {
	t.Helper()

	w := ta.get(t, "/handshake?auth="+testUserPassword)
	if w.Code != http.StatusOK {
		t.Fatalf("handshake failed with status %d", w.Code)
	}

	sealed, err := base64.StdEncoding.DecodeString(w.Body.String())
	if err != nil {
		t.Fatalf("sealed key should be base64: %v", err)
	}
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, ta.priv, sealed, nil)
	if err != nil {
		t.Fatalf("failed to unseal handshake key: %v", err)
	}

	crypt, err := cookies.NewFromBytes(key)
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}
	cipherPassword, err := crypt.Encrypt(testAdminPassword, cookies.Raw, cookies.Base64)
	if err != nil {
		t.Fatalf("failed to encrypt password: %v", err)
	}

	w = ta.get(t, "/adm-login?password="+url.QueryEscape(cipherPassword))
	if w.Code != http.StatusOK {
		t.Fatalf("admin login failed with status %d", w.Code)
	}

	var body struct {
		ConsentURL string `json:"consent_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("admin login response should be JSON: %v", err)
	}
	if !strings.Contains(body.ConsentURL, "accounts.google.com") {
		t.Errorf("consent url should point at Google, got %s", body.ConsentURL)
	}

	return findCookie(t, w, adminCookie)
}

func TestSetupGate(t *testing.T) {
	t.Run("PublicRoutesClosedUntilProvisioned", func(t *testing.T) {
		ta := setupApp(t, false)

		for _, path := range []string{"/", "/login", "/app"} {
			w := ta.get(t, path)
			if w.Code != http.StatusServiceUnavailable {
				t.Errorf("%s should be closed before setup, got %d", path, w.Code)
			}
			if !strings.Contains(w.Body.String(), "Not quite ready") {
				t.Errorf("%s should render the not-ready page", path)
			}
		}
	})

	t.Run("AdminRoutesStayReachable", func(t *testing.T) {
		ta := setupApp(t, false)

		w := ta.get(t, "/handshake?auth="+testUserPassword)
		if w.Code != http.StatusOK {
			t.Errorf("handshake should bypass the gate, got %d", w.Code)
		}
	})

	t.Run("OpenAfterProvisioning", func(t *testing.T) {
		ta := setupApp(t, true)

		w := ta.get(t, "/")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200 after setup, got %d", w.Code)
		}
	})
}

func TestLoginFlow(t *testing.T) {
	requestLink := func(t *testing.T, ta *testApp, email string) string {
		t.Helper()
		w := ta.postForm(t, "/login", url.Values{"email": {email}})
		if w.Code != http.StatusOK {
			t.Fatalf("link request failed with status %d", w.Code)
		}
		if len(ta.mailer.Sent) == 0 {
			t.Fatal("no mail was sent")
		}
		return ta.mailer.Sent[len(ta.mailer.Sent)-1].Link
	}

	t.Run("EndToEnd", func(t *testing.T) {
		ta := setupApp(t, true)

		link := requestLink(t, ta, "user@gmail.com")
		parsed, err := url.Parse(link)
		if err != nil {
			t.Fatalf("bad magic link: %v", err)
		}

		w := ta.get(t, "/login?"+parsed.RawQuery)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect after redemption, got %d", w.Code)
		}
		session := findCookie(t, w, sessionCookie)

		w = ta.get(t, "/app", session)
		if w.Code != http.StatusOK {
			t.Errorf("session cookie should open /app, got %d", w.Code)
		}

		w = ta.get(t, "/logout", session)
		if w.Code != http.StatusSeeOther {
			t.Errorf("logout should redirect, got %d", w.Code)
		}

		w = ta.get(t, "/app", session)
		if w.Code != http.StatusSeeOther {
			t.Errorf("revoked session should bounce to login, got %d", w.Code)
		}
	})

	t.Run("CodeIsSingleUse", func(t *testing.T) {
		ta := setupApp(t, true)

		link := requestLink(t, ta, "user@gmail.com")
		parsed, _ := url.Parse(link)

		if w := ta.get(t, "/login?"+parsed.RawQuery); w.Code != http.StatusSeeOther {
			t.Fatalf("first redemption should succeed, got %d", w.Code)
		}

		w := ta.get(t, "/login?"+parsed.RawQuery)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "didn't work") {
			t.Error("second redemption should fail opaquely")
		}
	})

	t.Run("CodeExpires", func(t *testing.T) {
		ta := setupApp(t, true)

		link := requestLink(t, ta, "user@gmail.com")
		parsed, _ := url.Parse(link)

		ta.app.now = func() time.Time { return time.Now().Add(magicLinkWindow + time.Second) }

		w := ta.get(t, "/login?"+parsed.RawQuery)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "didn't work") {
			t.Error("stale code should fail opaquely")
		}
	})

	t.Run("WrongCodeRejected", func(t *testing.T) {
		ta := setupApp(t, true)

		requestLink(t, ta, "user@gmail.com")

		w := ta.get(t, "/login?code=deadbeef&email=user%40gmail.com")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "didn't work") {
			t.Error("wrong code should fail opaquely")
		}
	})

	t.Run("UntrustedProviderRejected", func(t *testing.T) {
		ta := setupApp(t, true)

		w := ta.postForm(t, "/login", url.Values{"email": {"user@evil.example"}})
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", w.Code)
		}
		if len(ta.mailer.Sent) != 0 {
			t.Error("no mail should go to untrusted providers")
		}
	})

	t.Run("RepeatRequestsMintFreshCodes", func(t *testing.T) {
		ta := setupApp(t, true)

		first := requestLink(t, ta, "user@gmail.com")
		second := requestLink(t, ta, "user@gmail.com")

		if len(ta.mailer.Sent) != 2 {
			t.Fatalf("each request should send its own mail, got %d", len(ta.mailer.Sent))
		}
		if first == second {
			t.Fatal("repeat requests should carry distinct codes")
		}

		parsed, _ := url.Parse(first)
		if w := ta.get(t, "/login?"+parsed.RawQuery); w.Code != http.StatusSeeOther {
			t.Errorf("earlier link should stay redeemable, got %d", w.Code)
		}
	})

	t.Run("CodeBoundToRequestingEmail", func(t *testing.T) {
		ta := setupApp(t, true)

		link := requestLink(t, ta, "user@gmail.com")
		parsed, _ := url.Parse(link)
		code := parsed.Query().Get("code")

		w := ta.get(t, "/login?code="+code+"&email=other%40gmail.com")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "didn't work") {
			t.Error("a code presented with another address should fail opaquely")
		}
	})

	t.Run("LinkRateLimited", func(t *testing.T) {
		ta := setupApp(t, true)

		for i := 0; i < 3; i++ {
			ta.postForm(t, "/login", url.Values{"email": {"user@evil.example"}})
		}

		w := ta.postForm(t, "/login", url.Values{"email": {"user@gmail.com"}})
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("fourth link request should be limited, got %d", w.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("BrowsingIsNotThrottled", func(t *testing.T) {
		ta := setupApp(t, true)

		for i := 0; i < 20; i++ {
			if w := ta.get(t, "/"); w.Code != http.StatusOK {
				t.Fatalf("request %d to / should pass untouched, got %d", i+1, w.Code)
			}
		}
	})

	t.Run("LoginBudgetUnaffectedByBrowsing", func(t *testing.T) {
		ta := setupApp(t, true)

		for i := 0; i < 30; i++ {
			ta.get(t, "/")
		}

		for i := 0; i < 15; i++ {
			if w := ta.get(t, "/login"); w.Code != http.StatusOK {
				t.Fatalf("login request %d should be within budget, got %d", i+1, w.Code)
			}
		}
		if w := ta.get(t, "/login"); w.Code != http.StatusTooManyRequests {
			t.Errorf("login request over budget should be limited, got %d", w.Code)
		}
	})
}

func TestAdminFlow(t *testing.T) {
	t.Run("HandshakeRequiresMaintenancePassword", func(t *testing.T) {
		ta := setupApp(t, true)

		w := ta.get(t, "/handshake?auth=wrong")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("WrongPasswordIsOpaque", func(t *testing.T) {
		ta := setupApp(t, true)

		ta.get(t, "/handshake?auth="+testUserPassword)
		w := ta.get(t, "/adm-login?password=bm90IGEgcmVhbCBjaXBoZXJ0ZXh0")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected bare 401, got %d", w.Code)
		}
		if strings.TrimSpace(w.Body.String()) != "Unauthorized" {
			t.Errorf("failure body should not explain itself, got %q", w.Body.String())
		}
	})

	t.Run("RunRequiresAdmin", func(t *testing.T) {
		ta := setupApp(t, true)

		w := ta.get(t, "/run")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without admin cookie, got %d", w.Code)
		}
	})

	t.Run("RunMirrorsPlaylist", func(t *testing.T) {
		ta := setupApp(t, true)
		admin := adminLogin(t, ta)

		w := ta.get(t, "/run", admin)
		if w.Code != http.StatusOK {
			t.Fatalf("run failed with status %d: %s", w.Code, w.Body.String())
		}

		var result struct {
			Inserted    int    `json:"inserted"`
			PlaylistURL string `json:"playlist_url"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("run response should be JSON: %v", err)
		}
		if result.Inserted != 1 {
			t.Errorf("expected 1 inserted video, got %d", result.Inserted)
		}
		if len(ta.catalog.Created) != 1 {
			t.Errorf("expected the destination playlist to be created, got %v", ta.catalog.Created)
		}
	})

	t.Run("AdminLogoutRevokesId", func(t *testing.T) {
		ta := setupApp(t, true)
		admin := adminLogin(t, ta)

		if w := ta.get(t, "/adm-logout", admin); w.Code != http.StatusSeeOther {
			t.Fatalf("adm-logout should redirect, got %d", w.Code)
		}

		w := ta.get(t, "/run", admin)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("stale admin cookie should be rejected, got %d", w.Code)
		}
	})
}
