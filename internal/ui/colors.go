package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	accent lipgloss.Style
	dim    lipgloss.Style
}

func NewPalette(t, s, e, a, d string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		accent: NewStyle(a),
		dim:    NewEm(d),
	}
}

// DarkPalette is the default theme, tuned for dark terminal backgrounds.
func DarkPalette() *Palette {
	return NewPalette("#7D56F4", "#04B575", "#FF5F56", "#FFA500", "#626262")
}

// LightPalette is the alternate theme for light terminal backgrounds.
func LightPalette() *Palette {
	return NewPalette("#5A3FD4", "#027A50", "#C0392B", "#B26B00", "#8A8A8A")
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
