// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks the mirror workflow:
//  1. [TrackListView] : Preview the source playlist's tracks
//  2. [ConfirmView] : Confirm the mirror run
//  3. [MirrorView] : Monitor real-time progress updates
//  4. [ResultView] : Display what was added, skipped, and unmatched
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the MirrorEngine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
