// Package ui layout constants for consistent spacing and dimensions
package ui

import "github.com/charmbracelet/lipgloss"

// Layout constants for the console frame
const (
	SidebarWidth    = 22
	HeaderHeight    = 2
	FooterHeight    = 1
	ContentPaddingH = 2
	ContentPaddingV = 1

	// Table dimensions
	TableHeaderHeight = 2
	TableChromeHeight = 8 // title, banner, hint lines around the table

	// Responsive breakpoints
	MinimumTerminalWidth = 60
	CompactModeWidth     = 100
	DetailPaneWidth      = 40
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	ShowSidebar    bool
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size.
// The sidebar is hidden on pages outside the signed-in area.
func NewLayoutConfig(width, height int, sidebar bool) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		ShowSidebar:    sidebar && width >= MinimumTerminalWidth,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth returns the width available to a page.
func (l LayoutConfig) ContentWidth() int {
	w := l.TerminalWidth - ContentPaddingH*2
	if l.ShowSidebar {
		w -= SidebarWidth + 1
	}
	if w < 20 {
		return 20
	}
	return w
}

// ContentHeight returns the height available to a page.
func (l LayoutConfig) ContentHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight - ContentPaddingV*2
	if h < 5 {
		return 5
	}
	return h
}

// TableHeight returns the number of rows a table can show in a page of the given height.
func TableHeight(pageHeight int) int {
	h := pageHeight - TableHeaderHeight - TableChromeHeight
	if h < 3 {
		return 3
	}
	return h
}

// Frame composes the header, optional sidebar, page body and footer.
func (l LayoutConfig) Frame(s Styles, header, sidebar, body, footer string) string {
	content := s.Content.Width(l.ContentWidth() + ContentPaddingH*2).Render(body)
	if l.ShowSidebar {
		side := s.Sidebar.Width(SidebarWidth).Height(l.ContentHeight() + ContentPaddingV*2).Render(sidebar)
		content = lipgloss.JoinHorizontal(lipgloss.Top, side, content)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Header.Width(l.TerminalWidth).Render(header),
		content,
		s.Footer.Render(footer),
	)
}
