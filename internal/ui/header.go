package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the banner printed before a command's result
type Header struct {
	Title  string
	Params []Detail
	Width  int
}

// NewHeader creates a header sized to the terminal
func NewHeader(title string, params ...Detail) *Header {
	return &Header{Title: title, Params: params, Width: GetTerminalWidth()}
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := clampWidth(h.Width)

	titleLine := titleStyle.Render(strings.ToUpper(h.Title))
	if len(h.Params) == 0 {
		return headerBox(width).Render(titleLine)
	}

	rule := divider(max(width-6, 10))

	var params []string
	for _, p := range h.Params {
		params = append(params, keyStyle.PaddingLeft(2).Render(p.Key+":")+" "+valueStyle.Render(p.Value))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, rule, strings.Join(params, "\n"))
	return headerBox(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
