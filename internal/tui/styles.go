package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
	"github.com/aiservice/poseul/internal/version"
)

// AppName is shown in the dashboard title bar
const AppName = "POSEUL"

// AppVersion returns the build version
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	ColdColor      = lipgloss.Color("#5DADE2") // Blue
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF")
	SubtleColor = lipgloss.Color("#626262")
	BorderColor = lipgloss.Color("#7D56F4")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0, 0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)
)

// PanelStyle returns the bordered card used for each dashboard section
func PanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		Width(width)
}

// StatusStyle colors a facet status badge
func StatusStyle(status store.Status) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch status {
	case store.StatusReady:
		return s.Foreground(SecondaryColor)
	case store.StatusLoading:
		return s.Foreground(WarningColor)
	case store.StatusFailed:
		return s.Foreground(ErrorColor)
	default:
		return s.Foreground(SubtleColor)
	}
}

// CategoryStyle colors a comfort category
func CategoryStyle(category string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch category {
	case prediction.CategoryCold:
		return s.Foreground(ColdColor)
	case prediction.CategoryHot:
		return s.Foreground(ErrorColor)
	default:
		return s.Foreground(SecondaryColor)
	}
}

// clampWidth keeps width within the supported range
func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
