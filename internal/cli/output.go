package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// styles renders headings and count badges. Everything renders plain when
// color is off.
type styles struct {
	enabled bool
	heading lipgloss.Style
	badge   lipgloss.Style
	zero    lipgloss.Style
	muted   lipgloss.Style
}

func (a *app) styles() styles {
	return styles{
		enabled: a.colorEnabled(),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		badge:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("161")).Padding(0, 1),
		zero:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// colorEnabled is true only when writing to a terminal and neither
// --no-color nor NO_COLOR is set.
func (a *app) colorEnabled() bool {
	if a.opts.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := a.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s styles) Heading(text string) string {
	return s.render(s.heading, text)
}

// Count renders n as a badge, dimmed when zero.
func (s styles) Count(n int) string {
	text := itoa(n)
	if !s.enabled {
		return text
	}
	if n == 0 {
		return s.zero.Render(text)
	}
	return s.badge.Render(text)
}

func (s styles) Muted(text string) string {
	return s.render(s.muted, text)
}
