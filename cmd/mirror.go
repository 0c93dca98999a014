package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/formatter"
	"github.com/desertthunder/youtubefy/internal/outcome"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Mirror runs a single mirror pass and prints the result.
func (r *Runner) Mirror(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	sourceID := cmd.String("playlist")
	if sourceID == "" {
		sourceID = config.Credentials.Spotify.PlaylistID
	}
	if sourceID == "" {
		return fmt.Errorf("%w: no source playlist configured", shared.ErrInvalidInput)
	}

	deps, err := r.buildMirror(ctx, config)
	if err != nil {
		return err
	}
	defer deps.db.Close()

	run := outcome.Guard(func() (*tasks.MirrorResult, error) {
		return deps.engine.Run(ctx, nil, sourceID)
	})
	result, err := run.Unwrap()
	if err != nil {
		return fmt.Errorf("mirror run failed: %w", err)
	}

	if format := cmd.String("export"); format != "" {
		path, err := formatter.WriteExport(result.Source, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("track list exported", "path", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Mirror Complete")
	r.writePlain("Source: %s (%d tracks)\n", result.Source.Playlist.Name, len(result.Source.Tracks))
	if result.FromCache {
		r.writePlain("Source served from the last saved snapshot\n")
	}
	if result.Created {
		r.writePlain("Created playlist on YouTube\n")
	}
	r.writePlain("Inserted: %d\n", result.Inserted)
	r.writePlain("Already present: %d\n", result.Skipped)
	if result.Failed > 0 {
		r.writePlain("Failed inserts: %d\n", result.Failed)
	}

	if result.Unmatched > 0 {
		r.writePlainln("No match for %d tracks:", result.Unmatched)
		for _, match := range result.Matches {
			if match.VideoID == "" {
				r.writePlain("  - %s - %s\n", match.Track.Artist, match.Track.Title)
			}
		}
	}

	r.writePlain("\n%s\n", result.PlaylistURL)
	return nil
}
