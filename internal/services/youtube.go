// YouTube Data API v3 implementation of [VideoCatalog]
//
// Reference: https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/shared"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeSnippet is the snippet part shared by search results, playlists,
// and playlist items.
type YouTubeSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
}

type youtubePage struct {
	NextPageToken string `json:"nextPageToken"`
}

// YouTubeService implements [VideoCatalog] against the YouTube Data API. The
// HTTP client must already carry the admin's OAuth credential; the service
// never authenticates on its own.
type YouTubeService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewYouTubeService(client *http.Client, logger *log.Logger) *YouTubeService {
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTubeService{
		baseURL:    youtubeBaseURL,
		httpClient: client,
		logger:     logger,
	}
}

func (y *YouTubeService) Name() string { return "YouTube" }

// doRequest performs an API call. A non-nil body is sent as JSON; a non-nil
// result receives the decoded response.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: youtube status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: youtube status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SearchVideo returns the top video result for "title artist", or
// [shared.ErrTrackNotFound] when the search comes back empty.
func (y *YouTubeService) SearchVideo(ctx context.Context, title, artist string) (string, error) {
	query := url.QueryEscape(fmt.Sprintf("%s %s", title, artist))
	endpoint := fmt.Sprintf("/search?part=snippet&type=video&maxResults=1&q=%s", query)

	var response struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet YouTubeSnippet `json:"snippet"`
		} `json:"items"`
	}
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return "", err
	}

	if len(response.Items) == 0 || response.Items[0].ID.VideoID == "" {
		return "", fmt.Errorf("%w: %q by %q", shared.ErrTrackNotFound, title, artist)
	}

	return response.Items[0].ID.VideoID, nil
}

// FindPlaylistByTitle walks the authenticated account's playlists looking
// for an exact title match.
func (y *YouTubeService) FindPlaylistByTitle(ctx context.Context, title string) (string, bool, error) {
	pageToken := ""
	for {
		endpoint := "/playlists?part=snippet&mine=true&maxResults=50"
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var response struct {
			youtubePage
			Items []struct {
				ID      string         `json:"id"`
				Snippet YouTubeSnippet `json:"snippet"`
			} `json:"items"`
		}
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return "", false, err
		}

		for _, item := range response.Items {
			if item.Snippet.Title == title {
				return item.ID, true, nil
			}
		}

		if response.NextPageToken == "" {
			return "", false, nil
		}
		pageToken = response.NextPageToken
	}
}

// CreatePlaylist creates a private playlist and returns its id.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	body := map[string]any{
		"snippet": map[string]string{
			"title":       title,
			"description": description,
		},
		"status": map[string]string{
			"privacyStatus": "private",
		},
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/playlists?part=snippet,status", body, &response); err != nil {
		return "", err
	}

	y.logger.Info("created destination playlist", "title", title, "id", response.ID)
	return response.ID, nil
}

// PlaylistVideoIDs lists every video id on a playlist, following pagination.
func (y *YouTubeService) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string

	pageToken := ""
	for {
		endpoint := fmt.Sprintf("/playlistItems?part=contentDetails&maxResults=50&playlistId=%s", url.QueryEscape(playlistID))
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var response struct {
			youtubePage
			Items []struct {
				ContentDetails struct {
					VideoID string `json:"videoId"`
				} `json:"contentDetails"`
			} `json:"items"`
		}
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			ids = append(ids, item.ContentDetails.VideoID)
		}

		if response.NextPageToken == "" {
			return ids, nil
		}
		pageToken = response.NextPageToken
	}
}

// AddVideo appends a video to the end of a playlist.
func (y *YouTubeService) AddVideo(ctx context.Context, playlistID, videoID string) error {
	body := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"resourceId": map[string]string{
				"kind":    "youtube#video",
				"videoId": videoID,
			},
		},
	}

	return y.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}
