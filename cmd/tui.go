package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/player"
	"github.com/desertthunder/tunify/internal/shared"
	"github.com/desertthunder/tunify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal player over the catalog.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cat := catalog.New(catalog.StaticSongs(), r.logger)
	if db, repo, err := r.openDatabase(); err == nil {
		if err := cat.Load(ctx, repo); err != nil {
			r.logger.Warn("failed to load persisted songs", "error", err)
		}
		defer db.Close()
	} else {
		r.logger.Warn("database unavailable, using built-in catalog", "error", err)
	}

	handle := player.NewSimHandle(nil, 0)
	defer handle.Close()

	controller := player.New(handle, cat, r.logger)
	handle.Attach(controller)

	model := ui.NewModel(ctx, cat, controller)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
