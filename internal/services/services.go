// Package services wraps the external collaborators: the Spotify Web API as
// the playlist source, the YouTube Data API as the mirror destination, and
// the Gmail API for outbound mail. Each service owns an authenticated HTTP
// client and translates wire responses into the internal models.
package services

import (
	"context"

	"github.com/desertthunder/youtubefy/internal/models"
)

// PlaylistSource yields the playlist being mirrored.
type PlaylistSource interface {
	// ExportPlaylist fetches the playlist and every track on it.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)
}

// VideoCatalog is the write side of a mirror run: look up videos, manage
// playlists, and append items.
type VideoCatalog interface {
	// SearchVideo returns the best-match video id for a track, or
	// [shared.ErrTrackNotFound] when nothing matches.
	SearchVideo(ctx context.Context, title, artist string) (string, error)

	// FindPlaylistByTitle scans the authenticated account's playlists for an
	// exact title match.
	FindPlaylistByTitle(ctx context.Context, title string) (string, bool, error)

	// CreatePlaylist creates a private playlist and returns its id.
	CreatePlaylist(ctx context.Context, title, description string) (string, error)

	// PlaylistVideoIDs lists the video ids already on a playlist.
	PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error)

	// AddVideo appends a video to a playlist.
	AddVideo(ctx context.Context, playlistID, videoID string) error
}

// Mailer sends login mail on behalf of the configured sender.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string) error
}
