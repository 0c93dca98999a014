// Package tasks orchestrates mirror runs from the playlist source onto the
// video catalog.
//
// The core type is MirrorEngine. A run fetches the source playlist, searches
// the catalog for each track, finds or creates the destination playlist by
// title, and inserts only the videos not already on it. Progress is emitted
// on a channel with non-blocking sends so a slow or absent consumer never
// stalls the run.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/models"
	"github.com/desertthunder/youtubefy/internal/repositories"
	"github.com/desertthunder/youtubefy/internal/services"
	"github.com/desertthunder/youtubefy/internal/shared"
)

// TrackMatch is the catalog lookup outcome for one source track.
type TrackMatch struct {
	Track   models.Track // Source track
	VideoID string       // Matched video id, empty when unmatched
	Err     error        // Lookup failure, nil on match
}

// MirrorResult summarizes a completed run.
type MirrorResult struct {
	Source      *models.PlaylistExport // Source playlist with tracks
	FromCache   bool                   // Source came from the local snapshot
	PlaylistID  string                 // Destination playlist id
	PlaylistURL string                 // Destination playlist URL
	Created     bool                   // Destination playlist was created this run
	Matches     []TrackMatch           // Per-track lookup outcomes
	Inserted    int                    // Videos added this run
	Skipped     int                    // Videos already on the playlist
	Unmatched   int                    // Tracks with no catalog match
	Failed      int                    // Matched videos that could not be added
}

// MirrorEngine performs mirror runs. The snapshot repository is optional; when
// present, successful source fetches are persisted and a failed fetch falls
// back to the last snapshot.
type MirrorEngine struct {
	source    services.PlaylistSource
	catalog   services.VideoCatalog
	snapshots *repositories.PlaylistCacheRepository
	logger    *log.Logger
}

func NewMirrorEngine(source services.PlaylistSource, catalog services.VideoCatalog, snapshots *repositories.PlaylistCacheRepository, logger *log.Logger) *MirrorEngine {
	return &MirrorEngine{
		source:    source,
		catalog:   catalog,
		snapshots: snapshots,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the run.
func (e *MirrorEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// fetchSource exports the playlist, falling back to the stored snapshot when
// the source is unreachable. A fresh export replaces the snapshot.
func (e *MirrorEngine) fetchSource(ctx context.Context, sourceID string) (*models.PlaylistExport, bool, error) {
	export, err := e.source.ExportPlaylist(ctx, sourceID)
	if err == nil {
		if e.snapshots != nil {
			if saveErr := e.snapshots.Save(sourceID, export); saveErr != nil {
				e.logger.Warn("failed to store playlist snapshot", "error", saveErr)
			}
		}
		return export, false, nil
	}

	if e.snapshots == nil {
		return nil, false, err
	}

	snapshot, loadErr := e.snapshots.Load(sourceID)
	if loadErr != nil {
		return nil, false, err
	}

	e.logger.Warn("source unreachable, mirroring from snapshot", "error", err)
	return snapshot, true, nil
}

// Run mirrors the source playlist onto the catalog and reports what changed.
// Unmatched tracks and individual insert failures are recorded in the result
// rather than aborting the run; a run that matches nothing at all is an error.
func (e *MirrorEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, sourceID string) (*MirrorResult, error) {
	if e.source == nil || e.catalog == nil {
		return nil, fmt.Errorf("%w: mirror engine not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchingSourceUpdate())

	export, fromCache, err := e.fetchSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	result := &MirrorResult{Source: export, FromCache: fromCache}
	e.sendProgress(progress, foundPlaylistUpdate(export))

	total := len(export.Tracks)
	e.sendProgress(progress, searchTrackUpdate(0, total, nil))

	result.Matches = make([]TrackMatch, total)
	matched := 0
	for i, track := range export.Tracks {
		e.sendProgress(progress, searchTrackUpdate(i+1, total, &track))

		videoID, err := e.catalog.SearchVideo(ctx, track.Title, track.Artist)
		result.Matches[i] = TrackMatch{Track: track, VideoID: videoID, Err: err}
		if err != nil {
			result.Unmatched++
			e.logger.Warn("no match for track", "title", track.Title, "artist", track.Artist, "error", err)
			continue
		}
		matched++
	}

	if matched == 0 {
		return result, fmt.Errorf("%w: no source tracks matched", shared.ErrTrackNotFound)
	}

	title := export.Playlist.Name
	e.sendProgress(progress, preparePlaylistUpdate(title))

	playlistID, found, err := e.catalog.FindPlaylistByTitle(ctx, title)
	if err != nil {
		return result, err
	}
	if !found {
		playlistID, err = e.catalog.CreatePlaylist(ctx, title, fmt.Sprintf("Mirrored from %s", export.Playlist.URL))
		if err != nil {
			return result, err
		}
		result.Created = true
	}

	result.PlaylistID = playlistID
	result.PlaylistURL = "https://www.youtube.com/playlist?list=" + playlistID

	existing := map[string]bool{}
	if !result.Created {
		ids, err := e.catalog.PlaylistVideoIDs(ctx, playlistID)
		if err != nil {
			return result, err
		}
		for _, id := range ids {
			existing[id] = true
		}
	}

	for i, match := range result.Matches {
		if match.VideoID == "" {
			continue
		}
		if existing[match.VideoID] {
			result.Skipped++
			continue
		}

		e.sendProgress(progress, insertVideoUpdate(i+1, total, match.VideoID))

		if err := e.catalog.AddVideo(ctx, playlistID, match.VideoID); err != nil {
			result.Matches[i].Err = err
			result.Failed++
			e.logger.Warn("failed to add video", "video", match.VideoID, "error", err)
			continue
		}

		// guard against duplicate source tracks resolving to one video
		existing[match.VideoID] = true
		result.Inserted++
	}

	e.sendProgress(progress, doneUpdate(result))
	e.logger.Info("mirror run finished",
		"playlist", title,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"unmatched", result.Unmatched,
	)

	return result, nil
}
