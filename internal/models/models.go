// package models defines the data model for the playlist mirroring web service
package models

import (
	"time"
)

// User is a magic-link account. ClientInfo holds a JSON blob with the IP and
// user agent seen at signup.
type User struct {
	UUID       string `json:"uuid"`
	Email      string `json:"email"`
	ClientInfo string `json:"client_info,omitempty"`
}

// SessionRow is the persisted form of a login session. The session token
// column stores the raw (unencrypted) random token; the encrypted form only
// ever travels to the client.
type SessionRow struct {
	UUID         string
	UserUUID     string
	SessionToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// SessionEnvelope is the client-visible session artifact. Token is the raw
// session token encrypted under the session model's private key; the raw
// token never leaves the server.
type SessionEnvelope struct {
	Token     string `json:"token"`
	UserUUID  string `json:"userUUID"`
	ExpiresAt int64  `json:"expiresAt_ms"` // epoch milliseconds
}

// Expired reports whether the envelope's expiry has passed at time now.
func (s SessionEnvelope) Expired(now time.Time) bool {
	return s.ExpiresAt < now.UnixMilli()
}

// AdminCredential is the single admin identity: the Google account email and
// the OAuth refresh token captured during the consent flow.
type AdminCredential struct {
	Email        string
	RefreshToken string
}

// Playlist represents a music playlist from any service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	URL         string
}

// Track represents a music track from any service.
type Track struct {
	ID     string // service-specific id (Spotify track id, YouTube video id)
	Title  string
	Artist string
}

// PlaylistExport represents a playlist with all its tracks for mirroring.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}
