package ui

import (
	"strings"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key/value line of a result box
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box. Details render in insertion order.
type Result struct {
	Type            ResultType
	Title           string
	Details         []Detail
	Message         string   // Error or warning text
	Troubleshooting []string // Failure only
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title, message string, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Message:         message,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title, message string) *Result {
	return &Result{Type: ResultWarning, Title: title, Message: message, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	t, ok := tones[r.Type]
	if !ok {
		t = tones[ResultSuccess]
	}

	lines := []string{"", t.title().Render(" " + t.banner + "  ─  " + r.Title), ""}

	if r.Message != "" {
		style := valueStyle
		if r.Type == ResultFailure {
			style = t.title().UnsetBold()
		}
		lines = append(lines, style.Render(" "+r.Message), "")
	}

	if len(r.Details) > 0 {
		for _, d := range r.Details {
			lines = append(lines, keyStyle.Width(18).Render(" "+d.Key+":")+" "+valueStyle.Render(d.Value))
		}
		lines = append(lines, "")
	}

	if r.Type == ResultFailure && len(r.Troubleshooting) > 0 {
		lines = append(lines, renderTroubleshooting(r.Troubleshooting, width), "")
	}

	return t.box(width).Render(strings.Join(lines, "\n"))
}

func renderTroubleshooting(tips []string, width int) string {
	lines := []string{tipStyle.Bold(true).Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, tipStyle.Render("  • "+tip))
	}
	return tipsBox(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
