package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes UI components to a writer. Commands print through a
// Printer so tests can capture the output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer writing to w, or to stdout if w is nil
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the width components are rendered at
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title string, params ...Detail) {
	h := NewHeader(title, params...)
	h.Width = p.width
	p.Println(h.Render())
}

// PrintResult prints a result box at the printer's width
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// PrintSuccess prints a success box with the given details
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	r := NewSuccessResult(title)
	r.Details = details
	p.PrintResult(r)
}

// PrintError prints a failure box with troubleshooting tips
func (p *Printer) PrintError(title, message string, troubleshooting []string) {
	p.PrintResult(NewFailureResult(title, message, troubleshooting))
}

// PrintWarning prints a warning box
func (p *Printer) PrintWarning(title, message string, details ...Detail) {
	r := NewWarningResult(title, message)
	r.Details = details
	p.PrintResult(r)
}
