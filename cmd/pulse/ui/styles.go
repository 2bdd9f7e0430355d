// Package ui provides the styling, components and pages of the pulse console.
// Uses the Pulse brand palette with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"pulseadmin/internal/catalog"

	"github.com/charmbracelet/lipgloss"
)

// Color palette based on the Pulse admin brand
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f5f7fa")
	LightForeground = lipgloss.Color("#1b2431")
	LightPrimary    = lipgloss.Color("#0f5fa8") // Pulse blue
	LightAccent     = lipgloss.Color("#12a39a") // Teal
	LightSecondary  = lipgloss.Color("#e3e8ef")
	LightMuted      = lipgloss.Color("#8592a3")
	LightBorder     = lipgloss.Color("#d2d9e2")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#111822")
	DarkForeground = lipgloss.Color("#e9eef4")
	DarkPrimary    = lipgloss.Color("#4aa3f0")
	DarkAccent     = lipgloss.Color("#2fc4b8")
	DarkSecondary  = lipgloss.Color("#1c2633")
	DarkMuted      = lipgloss.Color("#6b7a8c")
	DarkBorder     = lipgloss.Color("#2b3a4c")
	DarkCard       = lipgloss.Color("#182230")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#f9a825")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from the terminal. PULSE_DARK_MODE=1 forces
// dark; otherwise a dark COLORFGBG background selects dark.
func DetectTheme() Theme {
	if os.Getenv("PULSE_DARK_MODE") == "1" {
		return DarkTheme()
	}

	// Format is usually "foreground;background"
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
		}
	}
	return LightTheme()
}

// ThemeFor returns the configured theme. dark comes from ui.theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return DetectTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout styles
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Sidebar lipgloss.Style

	// Navigation
	NavItem   lipgloss.Style
	NavActive lipgloss.Style

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Form styles
	Label         lipgloss.Style
	LabelFocused  lipgloss.Style
	Prompt        lipgloss.Style
	Input         lipgloss.Style
	InputDisabled lipgloss.Style
	FieldError    lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Banner  lipgloss.Style

	// Component styles
	Card    lipgloss.Style
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates styles for the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Sidebar: lipgloss.NewStyle().
			Padding(1, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(theme.Border),

		NavItem: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		NavActive: lipgloss.NewStyle().
			Foreground(theme.Card).
			Background(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		LabelFocused: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Width(14),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		InputDisabled: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Faint(true),

		FieldError: lipgloss.NewStyle().
			Foreground(Destructive).
			PaddingLeft(15),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Banner: lipgloss.NewStyle().
			Foreground(Destructive).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive),

		Card: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the Pulse wordmark
func Logo(s Styles) string {
	return s.Title.Render("◆ Pulse Admin")
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

// StockBadge renders the stock label for a quantity.
func (s Styles) StockBadge(level catalog.StockLevel) string {
	bg := Success
	switch level {
	case catalog.LowStock:
		bg = Warning
	case catalog.OutOfStock:
		bg = Destructive
	}
	return s.Badge.Background(bg).Render(string(level))
}

// ErrorBanner renders a surfaced error with an optional hint line.
func (s Styles) ErrorBanner(msg, hint string) string {
	if hint != "" {
		msg += "\n" + s.Muted.Render(hint)
	}
	return s.Banner.Render(msg)
}
