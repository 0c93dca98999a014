package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/cache"
	"github.com/desertthunder/youtubefy/internal/cookies"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// SessionLifetime is how long a session stays valid after creation. The
// cached envelope expiry and the persisted expires_at column are both derived
// from this one offset so the cache fast path and the store fallback agree.
const SessionLifetime = 24 * time.Hour

// devFallbackKey is the well-known development cookie key, used instead of a
// random key outside production so local runs need no key provisioning.
const devFallbackKey = "c648004afc22e25698391a0addc7c3939863f280dcf338b76acf4ae04ca8f228"

// SessionModel issues, verifies, and revokes login sessions. It holds a
// private cache and a private cookie cipher keyed with fresh random material;
// losing the process loses the key, which invalidates outstanding envelopes
// but never the persisted rows.
type SessionModel struct {
	repo   *repositories.SessionRepository
	cache  *cache.Cache[models.SessionEnvelope]
	crypt  *cookies.Crypt
	logger *log.Logger
	now    func() time.Time
}

// NewSessionModel constructs a [SessionModel]. In production mode the
// internal key is 32 fresh random bytes; otherwise the well-known development
// key is used and announced in the log. Construction fails if key material
// cannot be generated, in which case the caller must abort startup.
func NewSessionModel(repo *repositories.SessionRepository, production bool, logger *log.Logger) (*SessionModel, error) {
	key := devFallbackKey
	if production {
		generated, err := shared.RandomHex(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
		key = generated
	} else {
		logger.Warn("using predefined development cookie key")
	}

	crypt, err := cookies.New(key)
	if err != nil {
		return nil, err
	}

	return &SessionModel{
		repo:   repo,
		cache:  cache.New[models.SessionEnvelope](nil),
		crypt:  crypt,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Create issues a session for user: a 32-byte random raw token is persisted
// alongside the user's uuid, and the returned envelope carries the token
// encrypted under the model's private key. Random generation, encryption, and
// persistence failures each surface distinctly.
func (m *SessionModel) Create(user *models.User) (*models.SessionEnvelope, error) {
	rawToken, err := shared.RandomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	encrypted, err := m.crypt.Encrypt(rawToken, cookies.Hex, cookies.Base64)
	if err != nil {
		return nil, err
	}

	now := m.now()
	expiresAt := now.Add(SessionLifetime)

	row := models.SessionRow{
		UUID:         shared.GenerateID(),
		UserUUID:     user.UUID,
		SessionToken: rawToken,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}
	if err := m.repo.Insert(row); err != nil {
		return nil, err
	}

	envelope := models.SessionEnvelope{
		Token:     encrypted,
		UserUUID:  user.UUID,
		ExpiresAt: expiresAt.UnixMilli(),
	}
	m.cache.Set(rawToken, envelope)

	return &envelope, nil
}

// Verify decrypts the envelope's token and checks the session. The cache is
// consulted first; expired cache entries are evicted and the persistent store
// decides. A missing row fails as not-found, a present-but-expired row fails
// with [shared.ErrSessionExpired].
func (m *SessionModel) Verify(envelope models.SessionEnvelope) (bool, error) {
	rawToken, err := m.crypt.Decrypt(envelope.Token, cookies.Base64, cookies.Hex)
	if err != nil {
		return false, err
	}

	if cached, err := m.cache.Get(rawToken); err == nil && cached.UserUUID == envelope.UserUUID {
		if !cached.Expired(m.now()) {
			return true, nil
		}
		m.cache.Unset(rawToken)
	}

	row, err := m.repo.GetByTokenAndUser(rawToken, envelope.UserUUID)
	if err != nil {
		return false, err
	}

	if row.ExpiresAt.Before(m.now()) {
		m.cache.Unset(rawToken)
		return false, shared.ErrSessionExpired
	}

	m.cache.Set(rawToken, models.SessionEnvelope{
		Token:     envelope.Token,
		UserUUID:  row.UserUUID,
		ExpiresAt: row.ExpiresAt.UnixMilli(),
	})

	return true, nil
}

// Delete removes the persisted session and evicts the cache entry. Deleting
// an already-deleted session is success: logout must not fail just because
// nothing was left to remove.
func (m *SessionModel) Delete(envelope models.SessionEnvelope) (bool, error) {
	rawToken, err := m.crypt.Decrypt(envelope.Token, cookies.Base64, cookies.Hex)
	if err != nil {
		return false, err
	}

	rows, err := m.repo.DeleteByTokenAndUser(rawToken, envelope.UserUUID)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		m.logger.Debug("delete found no session row", "user", envelope.UserUUID)
	}

	m.cache.Unset(rawToken)
	return true, nil
}

// IsExpiredErr reports whether err is the distinct expired-session failure.
func IsExpiredErr(err error) bool {
	return errors.Is(err, shared.ErrSessionExpired)
}
