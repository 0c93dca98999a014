// package formatter renders playlist exports to portable formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// Format names accepted by [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "text"
)

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{track.ID, track.Title, track.Artist}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Playlist.Name))

	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", export.Playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(export.Tracks)))
	if export.Playlist.URL != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", export.Playlist.URL))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// WriteExport renders the export in the named format and writes it to path.
//
// An empty path defaults to {playlist.ID}_tracks.{ext}. Returns the path
// written.
func WriteExport(export *models.PlaylistExport, format, path string) (string, error) {
	var data []byte
	var ext string
	var err error

	switch format {
	case FormatCSV:
		data, err = ExportToCSV(export)
		ext = "csv"
	case FormatMarkdown:
		data, err = ExportToMarkdown(export)
		ext = "md"
	case FormatText:
		data, err = ExportToText(export)
		ext = "txt"
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to render export: %w", err)
	}

	if path == "" {
		path = fmt.Sprintf("%s_tracks.%s", export.Playlist.ID, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
