package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// PlaylistCacheRepository caches playlist exports locally so a mirror run can
// reuse a previously fetched source instead of hitting Spotify again.
type PlaylistCacheRepository struct {
	db *sql.DB
}

// NewPlaylistCacheRepository creates a new [PlaylistCacheRepository] with the given database connection.
func NewPlaylistCacheRepository(db *sql.DB) *PlaylistCacheRepository {
	return &PlaylistCacheRepository{db: db}
}

// Save stores an export under its source playlist id, replacing any previous
// snapshot of the same playlist.
func (r *PlaylistCacheRepository) Save(sourceID string, export *models.PlaylistExport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("%w: failed to clear cached tracks: %v", shared.ErrQueryFailed, err)
	}
	if _, err := tx.Exec("DELETE FROM playlists WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("%w: failed to clear cached playlist: %v", shared.ErrQueryFailed, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO playlists (source_id, name, description) VALUES (?, ?, ?)",
		sourceID, export.Playlist.Name, export.Playlist.Description,
	); err != nil {
		return fmt.Errorf("%w: failed to cache playlist: %v", shared.ErrQueryFailed, err)
	}

	for i, track := range export.Tracks {
		if _, err := tx.Exec(
			"INSERT INTO playlist_tracks (source_id, position, track_id, title, artist) VALUES (?, ?, ?, ?, ?)",
			sourceID, i, track.ID, track.Title, track.Artist,
		); err != nil {
			return fmt.Errorf("%w: failed to cache track: %v", shared.ErrQueryFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit playlist cache: %v", shared.ErrQueryFailed, err)
	}

	return nil
}

// Load retrieves a cached export by source playlist id.
func (r *PlaylistCacheRepository) Load(sourceID string) (*models.PlaylistExport, error) {
	export := &models.PlaylistExport{}

	err := r.db.QueryRow(
		"SELECT name, description FROM playlists WHERE source_id = ?",
		sourceID,
	).Scan(&export.Playlist.Name, &export.Playlist.Description)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, sourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query cached playlist: %v", shared.ErrQueryFailed, err)
	}

	export.Playlist.ID = sourceID

	rows, err := r.db.Query(
		"SELECT track_id, title, artist FROM playlist_tracks WHERE source_id = ? ORDER BY position ASC",
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query cached tracks: %v", shared.ErrQueryFailed, err)
	}
	defer rows.Close()

	for rows.Next() {
		var track models.Track
		if err := rows.Scan(&track.ID, &track.Title, &track.Artist); err != nil {
			return nil, fmt.Errorf("%w: failed to scan cached track: %v", shared.ErrMalformedRow, err)
		}
		export.Tracks = append(export.Tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrQueryFailed, err)
	}

	export.Playlist.TrackCount = len(export.Tracks)
	return export, nil
}
