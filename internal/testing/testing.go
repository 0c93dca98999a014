// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// MockSource is a test double for [services.PlaylistSource].
type MockSource struct {
	Export *models.PlaylistExport
	Err    error
	Calls  int
}

func (m *MockSource) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Export, nil
}

// MockCatalog is a test double for [services.VideoCatalog]. Videos maps
// "title|artist" to a video id; Playlists maps titles to playlist ids.
type MockCatalog struct {
	Videos    map[string]string
	Playlists map[string]string
	Existing  map[string][]string
	Added     map[string][]string
	Created   []string
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Videos:    map[string]string{},
		Playlists: map[string]string{},
		Existing:  map[string][]string{},
		Added:     map[string][]string{},
	}
}

func (m *MockCatalog) SearchVideo(ctx context.Context, title, artist string) (string, error) {
	id, ok := m.Videos[title+"|"+artist]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrTrackNotFound, title)
	}
	return id, nil
}

func (m *MockCatalog) FindPlaylistByTitle(ctx context.Context, title string) (string, bool, error) {
	id, ok := m.Playlists[title]
	return id, ok, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	id := fmt.Sprintf("created-%d", len(m.Created))
	m.Created = append(m.Created, title)
	m.Playlists[title] = id
	return id, nil
}

func (m *MockCatalog) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	return m.Existing[playlistID], nil
}

func (m *MockCatalog) AddVideo(ctx context.Context, playlistID, videoID string) error {
	m.Added[playlistID] = append(m.Added[playlistID], videoID)
	return nil
}

// MockMailer is a test double for [services.Mailer] that records sent links.
type MockMailer struct {
	Sent []SentMail
	Err  error
}

type SentMail struct {
	To   string
	Link string
}

func (m *MockMailer) SendMagicLink(ctx context.Context, to, link string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Link: link})
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
