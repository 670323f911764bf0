// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a library-and-transport workflow for the music player:
//  1. [LibraryView] : Browse the song catalog with prefix search
//  2. [PlayerView] : Full-screen transport with progress and volume readouts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Playback events flow through a channel fed by the transport controller's
// subscription points, providing non-blocking status updates while audio advances.
//
// Keyboard control uses vim-style bindings (j/k, enter, esc, q) plus transport
// keys (space, n, p, s, r, +/-, arrows) with contextual help displayed via
// charmbracelet/bubbles/help. The t key flips between the dark and light themes.
package ui
