package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/city-weather/internal/weather"
)

var (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorMuted   = lipgloss.Color("#767676")
	colorError   = lipgloss.Color("#E74C3C")
	colorSpinner = lipgloss.Color("#F5A623")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	SuggestionStyle         = lipgloss.NewStyle().PaddingLeft(2)
	SelectedSuggestionStyle = lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(colorAccent)
	EmptySuggestionStyle    = lipgloss.NewStyle().PaddingLeft(2).Italic(true).Foreground(colorMuted)

	MutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	TempStyle     = lipgloss.NewStyle().Bold(true)
	AnnounceStyle = lipgloss.NewStyle().Italic(true).Foreground(colorAccent)
	HelpStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)

// themeColors are the card backgrounds per theme.
var themeColors = map[weather.Theme]lipgloss.Color{
	weather.ThemeSunny:  lipgloss.Color("#F9D976"),
	weather.ThemeCloudy: lipgloss.Color("#9AA5B1"),
}

// cardStyle returns the card frame for theme. An empty theme is the neutral
// frame shown before the first theme switch.
func cardStyle(theme weather.Theme) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Width(44)
	if c, ok := themeColors[theme]; ok {
		return s.BorderForeground(c).Background(c).Foreground(lipgloss.Color("#1B1B1B"))
	}
	return s.BorderForeground(colorMuted)
}
