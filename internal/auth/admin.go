package auth

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/cache"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/shared"
	"golang.org/x/oauth2"
)

// setupCacheKey is the single cache key under which the setup flag lives.
const setupCacheKey = "isSetUp"

// AdminGate answers whether the admin identity has been provisioned and
// installs it as an OAuth credential once it has. A definite yes or no is
// cached; an inconsistent table (more than one row) is never cached so the
// next call re-checks after an operator intervenes.
type AdminGate struct {
	repo   *repositories.AdminRepository
	cache  *cache.Cache[bool]
	logger *log.Logger
}

func NewAdminGate(repo *repositories.AdminRepository, logger *log.Logger) *AdminGate {
	return &AdminGate{
		repo:   repo,
		cache:  cache.New[bool](nil),
		logger: logger,
	}
}

// IsSetUp reports whether exactly one admin credential exists. Zero rows is a
// definite no, one row a definite yes, and both are cached. Two or more rows
// fail with [shared.ErrTooManyAdmins].
func (g *AdminGate) IsSetUp() (bool, error) {
	if cached, err := g.cache.Get(setupCacheKey); err == nil {
		return cached, nil
	}

	total, err := g.repo.Count()
	if err != nil {
		return false, err
	}

	if total > 1 {
		g.logger.Error("admin table holds more than one credential", "count", total)
		return false, shared.ErrTooManyAdmins
	}

	isSetUp := total == 1
	g.cache.Set(setupCacheKey, isSetUp)
	return isSetUp, nil
}

// Save persists the admin credential and flips the cached setup flag, so a
// gate that previously answered no answers yes without another count.
func (g *AdminGate) Save(cred models.AdminCredential) error {
	if err := g.repo.Insert(cred); err != nil {
		return err
	}
	g.cache.Set(setupCacheKey, true)
	g.logger.Info("admin credential saved", "email", cred.Email)
	return nil
}

// UseAsAuth loads the stored credential and returns a token source that
// refreshes access tokens from the admin's long-lived refresh token. The gate
// must answer yes before this can succeed.
func (g *AdminGate) UseAsAuth(conf *oauth2.Config) (oauth2.TokenSource, *models.AdminCredential, error) {
	isSetUp, err := g.IsSetUp()
	if err != nil {
		return nil, nil, err
	}
	if !isSetUp {
		return nil, nil, shared.ErrSetupIncomplete
	}

	cred, err := g.repo.Get()
	if err != nil {
		return nil, nil, err
	}

	source := conf.TokenSource(nil, &oauth2.Token{RefreshToken: cred.RefreshToken})
	return source, cred, nil
}

// TokenSource returns a token source that defers the credential lookup until
// the first token request, so callers can be wired before the consent flow has
// run. Lookup failures surface as token errors.
func (g *AdminGate) TokenSource(conf *oauth2.Config) oauth2.TokenSource {
	return &lazyTokenSource{gate: g, conf: conf}
}

type lazyTokenSource struct {
	gate *AdminGate
	conf *oauth2.Config

	mu sync.Mutex
	ts oauth2.TokenSource
}

func (s *lazyTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ts == nil {
		ts, _, err := s.gate.UseAsAuth(s.conf)
		if err != nil {
			return nil, err
		}
		s.ts = ts
	}

	return s.ts.Token()
}

// IsNotSetUpErr reports whether err means the admin has not been provisioned
// yet, as opposed to a storage failure.
func IsNotSetUpErr(err error) bool {
	return errors.Is(err, shared.ErrSetupIncomplete)
}
