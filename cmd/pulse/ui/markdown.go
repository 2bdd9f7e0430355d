package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewMarkdownRenderer builds a glamour renderer matching the theme.
// It returns nil if glamour cannot be initialized; RenderMarkdown then
// falls back to plain text.
func NewMarkdownRenderer(theme Theme, width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// RenderMarkdown renders a product description.
func RenderMarkdown(r *glamour.TermRenderer, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
