package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors; fatal at startup
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Cryptography errors, surfaced per call and mapped to authentication
	// failures by the HTTP layer
	ErrCipherInit    = fmt.Errorf("cipher construction failed")
	ErrCipherInput   = fmt.Errorf("invalid cipher input")
	ErrDecryptFailed = fmt.Errorf("decryption failed")

	// Persistence errors; callers distinguish "nothing found" from
	// "found but malformed" from "store unreachable"
	ErrNotFound     = fmt.Errorf("record not found")
	ErrMalformedRow = fmt.Errorf("record is malformed")
	ErrQueryFailed  = fmt.Errorf("query failed")

	// Authentication errors
	ErrUnauthorized          = fmt.Errorf("unauthorized")
	ErrWrongPassword         = fmt.Errorf("wrong password")
	ErrSessionExpired        = fmt.Errorf("session token expired")
	ErrHandshakeNotInitiated = fmt.Errorf("handshake not initiated")
	ErrNoRefreshToken        = fmt.Errorf("no refresh token available")

	// Invariant violations; the process refuses to serve admin routes
	ErrTooManyAdmins   = fmt.Errorf("too many admin users")
	ErrAdminExists     = fmt.Errorf("admin user already exists")
	ErrSetupIncomplete = fmt.Errorf("setup incomplete")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")
)
