package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/player"
	"github.com/desertthunder/tunify/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	PlayerView
)

const seekStep = 5.0

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	catalog    *catalog.Catalog
	controller *player.Controller
	width      int
	height     int
	songList   list.Model
	search     textinput.Model
	searching  bool
	playback   models.PlaybackState
	events     chan playbackEventMsg
	theme      *Palette
	dark       bool
	help       help.Model
	keys       keyMap
	err        error
}

type playbackEventMsg struct {
	state models.PlaybackState
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The controller's subscription points feed the model's event channel, so the
// view refreshes as simulated playback advances.
func NewModel(ctx context.Context, cat *catalog.Catalog, ctrl *player.Controller) *Model {
	m := &Model{
		ctx:        ctx,
		view:       LibraryView,
		catalog:    cat,
		controller: ctrl,
		events:     make(chan playbackEventMsg, 50),
		theme:      DarkPalette(),
		dark:       true,
		help:       help.New(),
		keys:       newKeyMap(),
	}

	search := textinput.New()
	search.Placeholder = "Search songs or artists..."
	search.CharLimit = 64
	m.search = search

	ctrl.OnTimeUpdate(func(currentTime, duration float64) {
		m.push()
	})
	ctrl.OnEnded(func() {
		m.push()
	})

	items := songItems(cat.Songs())
	m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.songList.Title = "Library"
	m.songList.SetShowHelp(false)
	m.songList.SetFilteringEnabled(false)

	return m
}

// push sends a playback snapshot to the event channel without blocking.
func (m *Model) push() {
	select {
	case m.events <- playbackEventMsg{state: m.controller.Snapshot()}:
	default:
	}
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}

// Init starts the event pump.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the playback event channel as a tea.Cmd.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return tea.Quit()
		case evt := <-m.events:
			return evt
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case PlayerView:
			return m.handlePlayerKeys(msg)
		}

	case playbackEventMsg:
		m.playback = msg.state
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return m.theme.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case PlayerView:
		return m.renderPlayer()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.songList.SetItems(songItems(m.catalog.Songs()))
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.songList.SetItems(songItems(m.catalog.Search(m.search.Value())))
	return m, cmd
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				m.controller.SelectSong(item.song)
				m.playback = m.controller.Snapshot()
				m.view = PlayerView
			}
		}
		return m, nil
	case "t":
		m.toggleTheme()
		return m, nil
	}

	if model, cmd, handled := m.handleTransportKeys(msg); handled {
		return model, cmd
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		return m, nil
	case "t":
		m.toggleTheme()
		return m, nil
	}

	if model, cmd, handled := m.handleTransportKeys(msg); handled {
		return model, cmd
	}
	return m, nil
}

// handleTransportKeys covers the bindings shared by both views.
func (m *Model) handleTransportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case " ":
		m.controller.TogglePlayPause()
	case "n":
		m.controller.Next()
	case "p":
		m.controller.Previous()
	case "s":
		m.controller.ToggleShuffle()
	case "r":
		m.controller.ToggleRepeat()
	case "+", "=":
		m.controller.AdjustVolume(0.1)
	case "-":
		m.controller.AdjustVolume(-0.1)
	case "right", "l":
		m.controller.Seek(m.playback.CurrentTime + seekStep)
	case "left", "h":
		m.controller.Seek(m.playback.CurrentTime - seekStep)
	default:
		return m, nil, false
	}

	m.playback = m.controller.Snapshot()
	return m, nil, true
}

func (m *Model) toggleTheme() {
	m.dark = !m.dark
	if m.dark {
		m.theme = DarkPalette()
	} else {
		m.theme = LightPalette()
	}
}

func (m *Model) renderLibrary() string {
	var header string
	if m.searching || m.search.Value() != "" {
		header = m.search.View()
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	sections := []string{}
	if header != "" {
		sections = append(sections, header)
	}
	sections = append(sections, m.songList.View(), m.renderStrip(), helpView)
	return strings.Join(sections, "\n\n")
}

// renderStrip is the one-line transport readout shown under the library.
func (m *Model) renderStrip() string {
	song, ok := m.controller.Current()
	if !ok {
		return m.theme.dim.Render("Nothing playing")
	}

	icon := "⏸"
	if m.playback.IsPlaying {
		icon = "▶"
	}

	return fmt.Sprintf("%s %s %s %s / %s",
		m.theme.accent.Render(icon),
		m.theme.ok.Render(song.Title),
		m.theme.dim.Render(song.Artist),
		shared.FormatDuration(int(m.playback.CurrentTime)),
		shared.FormatDuration(int(m.playback.Duration)),
	)
}

func (m *Model) renderPlayer() string {
	song, ok := m.controller.Current()
	if !ok {
		m.view = LibraryView
		return m.renderLibrary()
	}

	title := m.theme.title.Render(song.Title)
	artist := m.theme.dim.Render(song.Artist)

	bar := m.renderProgress()
	timeline := fmt.Sprintf("%s %s %s",
		shared.FormatDuration(int(m.playback.CurrentTime)),
		bar,
		shared.FormatDuration(int(m.playback.Duration)),
	)

	var modes []string
	if m.playback.ShuffleEnabled {
		modes = append(modes, "shuffle")
	}
	if m.playback.RepeatEnabled {
		modes = append(modes, "repeat")
	}
	modeLine := ""
	if len(modes) > 0 {
		modeLine = m.theme.accent.Render(strings.Join(modes, " · "))
	}

	status := m.theme.dim.Render(m.playback.State.String())
	if m.playback.IsPlaying {
		status = m.theme.ok.Render("playing")
	}

	volume := fmt.Sprintf("volume %d%%", int(m.playback.Volume*100))

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.playPause, m.keys.next, m.keys.prev, m.keys.back, m.keys.quit,
	})

	lines := []string{title, artist, "", timeline, status, volume}
	if modeLine != "" {
		lines = append(lines, modeLine)
	}
	lines = append(lines, "", helpView)
	return strings.Join(lines, "\n")
}

// renderProgress draws a fixed-width progress bar for the current position.
func (m *Model) renderProgress() string {
	const width = 30
	filled := 0
	if m.playback.Duration > 0 {
		filled = int(m.playback.ProgressPercent() / 100 * width)
	}
	if filled > width {
		filled = width
	}
	return m.theme.accent.Render(strings.Repeat("█", filled)) +
		m.theme.dim.Render(strings.Repeat("░", width-filled))
}
