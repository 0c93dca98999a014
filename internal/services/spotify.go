// Spotify Web API implementation of [PlaylistSource]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	Track SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents one page of a playlist's tracks.
type SpotifyPaginatedTracks struct {
	Items []SpotifyPlaylistTrack `json:"items"`
	Total int                    `json:"total"`
	Next  *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Public      bool                   `json:"public"`
	Tracks      SpotifyPaginatedTracks `json:"tracks"`
	ExternalURL struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// SpotifyService implements [PlaylistSource] against the Spotify Web API,
// authenticated with the client-credentials grant. Playlist fetches are
// serialized through a FIFO gate so concurrent mirror runs hit the source one
// at a time, in arrival order.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	gate       *shared.FIFOMutex
	logger     *log.Logger
}

// NewSpotifyService builds a service whose HTTP client fetches and refreshes
// app tokens via the client-credentials flow. The public playlist read
// endpoints need no user consent.
func NewSpotifyService(ctx context.Context, clientID, clientSecret string, logger *log.Logger) *SpotifyService {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: conf.Client(ctx),
		gate:       &shared.FIFOMutex{},
		logger:     logger,
	}
}

func (s *SpotifyService) Name() string { return "Spotify" }

// get performs an authenticated GET against the API, decoding the response
// into result. Absolute URLs (pagination links) are used as-is.
func (s *SpotifyService) get(ctx context.Context, endpoint string, result any) error {
	apiURL := endpoint
	if len(endpoint) == 0 || endpoint[0] == '/' {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrPlaylistNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Playlist retrieves a playlist by ID, first page of tracks included.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	if err := s.get(ctx, fmt.Sprintf("/playlists/%s", playlistID), &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ExportPlaylist fetches the playlist and walks the track pagination to the
// end. The whole fetch holds the FIFO gate, so two exports never interleave
// their page requests.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := collectTracks(nil, sp.Tracks.Items)
	next := sp.Tracks.Next
	for next != nil {
		var page SpotifyPaginatedTracks
		if err := s.get(ctx, *next, &page); err != nil {
			return nil, err
		}
		tracks = collectTracks(tracks, page.Items)
		next = page.Next
	}

	s.logger.Debug("exported source playlist", "playlist", sp.Name, "tracks", len(tracks))

	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			TrackCount:  len(tracks),
			Public:      sp.Public,
			URL:         sp.ExternalURL.Spotify,
		},
		Tracks: tracks,
	}, nil
}

// collectTracks appends the page's playable tracks. Items with no track id
// (removed or region-blocked entries) are skipped.
func collectTracks(tracks []models.Track, items []SpotifyPlaylistTrack) []models.Track {
	for _, item := range items {
		if item.Track.ID == "" {
			continue
		}

		track := models.Track{
			ID:    item.Track.ID,
			Title: item.Track.Name,
		}
		if len(item.Track.Artists) > 0 {
			track.Artist = item.Track.Artists[0].Name
		}
		tracks = append(tracks, track)
	}
	return tracks
}
