package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/nav"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardPage shows inventory totals computed from the product list.
type DashboardPage struct {
	life    *lifetime
	svc     catalog.Service
	list    *catalog.List
	styles  Styles
	spinner spinner.Model
	width   int
	height  int
}

// NewDashboardPage creates the dashboard.
func NewDashboardPage(ctx context.Context, styles Styles, svc catalog.Service) *DashboardPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &DashboardPage{
		life:    newLifetime(ctx),
		svc:     svc,
		list:    catalog.NewList(),
		styles:  styles,
		spinner: sp,
	}
}

func (p *DashboardPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.fetch(false))
}

func (p *DashboardPage) Title() string { return "Dashboard" }

func (p *DashboardPage) Help() string { return "r refresh • p products • n add product" }

func (p *DashboardPage) Capturing() bool { return false }

func (p *DashboardPage) SetSize(width, height int) {
	p.width, p.height = width, height
}

func (p *DashboardPage) Close() {
	p.list.Close()
	p.life.close()
}

func (p *DashboardPage) fetch(reload bool) tea.Cmd {
	svc, list := p.svc, p.list
	return p.life.run(func(ctx context.Context) {
		if reload {
			_ = list.Reload(ctx, svc)
			return
		}
		_ = list.Fetch(ctx, svc)
	})
}

func (p *DashboardPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case refreshMsg:
		return nil

	case spinner.TickMsg:
		if p.list.State() != catalog.ListLoading {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if p.list.State() == catalog.ListLoading {
				return nil
			}
			return tea.Batch(p.spinner.Tick, p.fetch(true))
		case "p":
			return Navigate(nav.PathProducts)
		case "n":
			return Navigate(nav.PathProductNew)
		}
	}
	return nil
}

func (p *DashboardPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Dashboard"))
	sb.WriteString("\n")

	if p.list.State() == catalog.ListLoading {
		sb.WriteString(p.spinner.View() + " Loading inventory…")
		return sb.String()
	}
	if err := p.list.Err(); err != nil {
		sb.WriteString(p.styles.ErrorBanner(errorText(err), "press r to retry"))
		sb.WriteString("\n")
	}

	items := p.list.Items()
	s := catalog.Summarize(items)

	cards := []string{
		p.card("Products", strconv.Itoa(s.Products)),
		p.card("Units in stock", strconv.Itoa(s.Units)),
		p.card("Inventory value", s.InventoryValue.StringFixed(2)),
		p.card("Low stock", strconv.Itoa(s.LowStock)),
		p.card("Out of stock", strconv.Itoa(s.OutOfStock)),
	}
	if p.width > 0 && p.width < CompactModeWidth {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...))
	} else {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	sb.WriteString("\n\n")

	t := NewSimpleTable("Needs restocking", []string{"Name", "Model", "Qty", "Stock"})
	t.Empty = "All products are in stock."
	for _, it := range items {
		if it.Stock() == catalog.InStock {
			continue
		}
		t.AddRow(it.Name, it.Model, strconv.Itoa(it.Quantity), p.styles.StockBadge(it.Stock()))
	}
	sb.WriteString(t.View(p.styles))
	return sb.String()
}

func (p *DashboardPage) card(label, value string) string {
	body := fmt.Sprintf("%s\n%s", p.styles.Muted.Render(label), p.styles.Bold.Render(value))
	return p.styles.Card.MarginRight(1).Render(body)
}
