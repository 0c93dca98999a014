package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the mirror workflow.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	sourceID := cmd.String("playlist")
	if sourceID == "" {
		sourceID = config.Credentials.Spotify.PlaylistID
	}
	if sourceID == "" {
		return fmt.Errorf("%w: no source playlist configured", shared.ErrInvalidInput)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/youtubefy-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	deps, err := r.buildMirror(ctx, config)
	if err != nil {
		return err
	}
	defer deps.db.Close()

	model := ui.NewModel(ctx, deps.source, deps.engine, sourceID)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
