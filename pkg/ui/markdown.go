package ui

import (
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer renders record detail pages for the viewport. It rebuilds
// the glamour renderer only when the wrap width changes.
type MarkdownRenderer struct {
	width    int
	style    string
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer wrapping at width cells.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	r := &MarkdownRenderer{style: markdownStyle()}
	r.SetWidth(width)
	return r
}

// markdownStyle picks a glamour standard style for the detected terminal.
func markdownStyle() string {
	if TermProfile < colorprofile.ANSI {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// SetWidth changes the wrap width.
func (r *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if r.renderer != nil && width == r.width {
		return
	}
	r.width = width
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.renderer = nil
		return
	}
	r.renderer = tr
}

// Width returns the wrap width.
func (r *MarkdownRenderer) Width() int {
	return r.width
}

// Render renders md, falling back to the raw text when glamour is unavailable.
func (r *MarkdownRenderer) Render(md string) (string, error) {
	if r.renderer == nil {
		return md, nil
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
