package ui

import (
	"fmt"
	"strings"

	"pulseadmin/internal/nav"

	tea "github.com/charmbracelet/bubbletea"
)

// NotFoundPage is shown for paths with no route.
type NotFoundPage struct {
	styles Styles
	path   string
}

func NewNotFoundPage(styles Styles, path string) *NotFoundPage {
	return &NotFoundPage{styles: styles, path: path}
}

func (p *NotFoundPage) Init() tea.Cmd             { return nil }
func (p *NotFoundPage) Title() string             { return "Not found" }
func (p *NotFoundPage) Help() string              { return "enter dashboard • esc back" }
func (p *NotFoundPage) Capturing() bool           { return false }
func (p *NotFoundPage) SetSize(width, height int) {}
func (p *NotFoundPage) Close()                    {}

func (p *NotFoundPage) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return func() tea.Msg { return NavigateMsg{Path: nav.PathDashboard, Replace: true} }
		case "esc":
			return func() tea.Msg { return BackMsg{} }
		}
	}
	return nil
}

func (p *NotFoundPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("404"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Nothing lives at %s.\n\n", p.styles.Bold.Render(p.path)))
	sb.WriteString(p.styles.Muted.Render("Press enter to go to the dashboard."))
	return sb.String()
}
