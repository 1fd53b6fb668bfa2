package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// It follows the terminal background (light/dark).
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteMarkdown renders markdown on terminals and writes it verbatim elsewhere,
// so piped output stays plain text.
func WriteMarkdown(w io.Writer, markdown string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, markdown)
		return err
	}
	render, err := NewRenderer()
	if err != nil {
		return err
	}
	out, err := render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Palette colours decision lines. The zero profile (Ascii) prints plain text.
type Palette struct {
	out *termenv.Output
}

// NewPalette detects the colour support of w.
func NewPalette(w io.Writer) Palette {
	return Palette{out: termenv.NewOutput(w)}
}

// Flood styles a flooded or gated action.
func (p Palette) Flood(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#fbbf24")).String()
}

// Port styles a learned port.
func (p Palette) Port(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#34d399")).Bold().String()
}

// Warn styles a gate closure or a rejected outcome.
func (p Palette) Warn(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#f87171")).String()
}
