package tasks

import (
	"fmt"

	"github.com/desertthunder/youtubefy/internal/models"
)

// ProgressUpdate represents a progress event during a mirror run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	SearchTracks
	PreparePlaylist
	InsertVideos
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SearchTracks:
		return "search_tracks"
	case PreparePlaylist:
		return "prepare_playlist"
	case InsertVideos:
		return "insert_videos"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingSourceUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: "Fetching source playlist from Spotify...",
	}
}

func foundPlaylistUpdate(export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func searchTrackUpdate(step, total int, tr *models.Track) ProgressUpdate {
	if tr == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Searching for tracks on YouTube...",
		}
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func preparePlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PreparePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up destination playlist %q...", title),
	}
}

func insertVideoUpdate(step, total int, videoID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %s", step, total, videoID),
	}
}

func doneUpdate(result *MirrorResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Mirror complete: %d added, %d already present, %d unmatched", result.Inserted, result.Skipped, result.Unmatched),
		Data:    result,
	}
}
