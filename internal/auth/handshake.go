package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/cookies"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// Handshake runs the short-lived admin bootstrap: Initiate hands out a fresh
// symmetric key sealed under the admin's RSA public key, and Complete consumes
// that key for exactly one attempt at proving knowledge of the admin password.
// A successful attempt mints the process-wide admin id.
type Handshake struct {
	mu         sync.Mutex
	pendingKey []byte
	adminID    string
	pubKey     *rsa.PublicKey
	password   string
	logger     *log.Logger
}

// NewHandshake parses the admin's PEM-encoded RSA public key and remembers
// the expected password. The key is the operator's; its private half never
// touches this process.
func NewHandshake(pubKeyPEM, password string, logger *log.Logger) (*Handshake, error) {
	block, _ := pem.Decode([]byte(pubKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: admin public key is not PEM", shared.ErrInvalidConfig)
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: admin public key is not RSA", shared.ErrInvalidConfig)
	}

	return &Handshake{pubKey: rsaKey, password: password, logger: logger}, nil
}

// Initiate generates a fresh 32-byte symmetric key, stores it as the pending
// key, and returns it base64-encoded and sealed under the admin's public key.
// A repeat call before Complete replaces the pending key, so only the latest
// handshake can succeed.
func (h *Handshake) Initiate() (string, error) {
	key, err := shared.RandomBytes(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate handshake key: %w", err)
	}

	sealed, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, h.pubKey, key, nil)
	if err != nil {
		return "", fmt.Errorf("failed to seal handshake key: %w", err)
	}

	h.mu.Lock()
	h.pendingKey = key
	h.mu.Unlock()

	h.logger.Debug("handshake initiated")
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Complete consumes the pending key to decrypt cipherPassword (base64) and
// compares the result against the configured admin password in constant time.
// The pending key is discarded before the attempt is judged, so failure costs
// the caller a fresh Initiate. Success returns the new process-wide admin id.
// Every failure mode past the missing-handshake check reads the same to the
// caller.
func (h *Handshake) Complete(cipherPassword string) (string, error) {
	h.mu.Lock()
	key := h.pendingKey
	h.pendingKey = nil
	h.mu.Unlock()

	if key == nil {
		return "", shared.ErrHandshakeNotInitiated
	}

	crypt, err := cookies.NewFromBytes(key)
	if err != nil {
		return "", shared.ErrWrongPassword
	}

	plaintext, err := crypt.Decrypt(cipherPassword, cookies.Base64, cookies.Raw)
	if err != nil {
		return "", shared.ErrWrongPassword
	}

	if subtle.ConstantTimeCompare([]byte(plaintext), []byte(h.password)) != 1 {
		return "", shared.ErrWrongPassword
	}

	id, err := shared.RandomHex(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate admin id: %w", err)
	}

	h.mu.Lock()
	h.adminID = id
	h.mu.Unlock()

	h.logger.Info("admin handshake completed")
	return id, nil
}

// AdminID returns the current process-wide admin id, if one has been minted.
func (h *Handshake) AdminID() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adminID, h.adminID != ""
}

// Matches reports whether id is the current admin id, compared in constant
// time. An empty current id matches nothing.
func (h *Handshake) Matches(id string) bool {
	h.mu.Lock()
	current := h.adminID
	h.mu.Unlock()

	if current == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(id)) == 1
}

// Reset discards the admin id, forcing a fresh handshake for the next admin
// action.
func (h *Handshake) Reset() {
	h.mu.Lock()
	h.adminID = ""
	h.mu.Unlock()
}
