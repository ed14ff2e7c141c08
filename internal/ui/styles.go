package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Width bounds for boxed output
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	accent = lipgloss.Color("#2EC4B6")
	green  = lipgloss.Color("#43BF6D")
	red    = lipgloss.Color("#E5484D")
	amber  = lipgloss.Color("#F5A524")
	muted  = lipgloss.Color("#6B7280")
	bright = lipgloss.Color("#F8FAFC")
)

var (
	keyStyle   = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Foreground(bright)
	titleStyle = lipgloss.NewStyle().Foreground(bright).Bold(true).PaddingLeft(2)
	tipStyle   = lipgloss.NewStyle().Foreground(muted)
)

// tone is the color and banner of one ResultType
type tone struct {
	color  lipgloss.Color
	banner string
}

var tones = map[ResultType]tone{
	ResultSuccess: {green, "✓  SUCCESS"},
	ResultFailure: {red, "✗  FAILED"},
	ResultWarning: {amber, "⚠  WARNING"},
}

func (t tone) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.color).Bold(true)
}

func (t tone) box(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.color).
		Width(width-2).
		Padding(0, 2)
}

// GetTerminalWidth returns the stdout width clamped to the supported range
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

func clampWidth(width int) int {
	return min(max(width, MinTerminalWidth), MaxContentWidth)
}

func headerBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Width(width - 2)
}

func tipsBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Width(width-12).
		Padding(0, 1).
		MarginLeft(1)
}

func divider(width int) string {
	return lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("─", width))
}
