package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/logging"
	"pulseadmin/internal/nav"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// DeletingLabel replaces the stock label of a row whose delete is in flight.
const DeletingLabel = "Deleting…"

// ProductsPage lists products with per-row edit and delete.
type ProductsPage struct {
	life          *lifetime
	svc           catalog.Service
	list          *catalog.List
	confirmDelete bool
	styles        Styles
	table         table.Model
	ids           []string
	spinner       spinner.Model
	markdown      *glamour.TermRenderer
	width         int
	height        int
}

// NewProductsPage creates the product list. With confirmDelete false a
// delete key press goes straight to the remote call.
func NewProductsPage(ctx context.Context, styles Styles, svc catalog.Service, confirmDelete bool) *ProductsPage {
	t := table.New(
		table.WithColumns(productColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Theme.Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Theme.Card).
		Background(styles.Theme.Primary)
	t.SetStyles(ts)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &ProductsPage{
		life:          newLifetime(ctx),
		svc:           svc,
		list:          catalog.NewList(),
		confirmDelete: confirmDelete,
		styles:        styles,
		table:         t,
		spinner:       sp,
	}
}

func productColumns(width int) []table.Column {
	// Name and model share what is left after the fixed columns.
	fixed := 12 + 10 + 6 + 14
	flex := width - fixed - 12
	if flex < 24 {
		flex = 24
	}
	return []table.Column{
		{Title: "Name", Width: flex * 3 / 5},
		{Title: "Model", Width: flex * 2 / 5},
		{Title: "Origin", Width: 12},
		{Title: "Price", Width: 10},
		{Title: "Qty", Width: 6},
		{Title: "Stock", Width: 14},
	}
}

func (p *ProductsPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.fetch(false))
}

func (p *ProductsPage) Title() string { return "Products" }

func (p *ProductsPage) Help() string {
	if _, ok := p.list.Confirming(); ok {
		return "y delete • n cancel"
	}
	return "↑/↓ select • enter edit • n new • d delete • r reload • esc dismiss"
}

func (p *ProductsPage) Capturing() bool { return false }

func (p *ProductsPage) SetSize(width, height int) {
	p.width, p.height = width, height
	tableWidth := width
	if p.showDetail() {
		tableWidth = width - DetailPaneWidth - 2
		p.markdown = NewMarkdownRenderer(p.styles.Theme, DetailPaneWidth-4)
	}
	p.table.SetColumns(productColumns(tableWidth))
	p.table.SetWidth(tableWidth)
	p.table.SetHeight(TableHeight(height))
}

func (p *ProductsPage) showDetail() bool {
	return p.width >= CompactModeWidth+DetailPaneWidth
}

func (p *ProductsPage) Close() {
	p.list.Close()
	p.life.close()
}

// List exposes the controller backing the page.
func (p *ProductsPage) List() *catalog.List { return p.list }

func (p *ProductsPage) fetch(reload bool) tea.Cmd {
	svc, list := p.svc, p.list
	return p.life.run(func(ctx context.Context) {
		if reload {
			_ = list.Reload(ctx, svc)
			return
		}
		_ = list.Fetch(ctx, svc)
	})
}

// remove issues the remote delete for a row already marked as deleting.
// The request is not cancelled when the page closes; its result is then
// dropped by the closed list.
func (p *ProductsPage) remove(id string) tea.Cmd {
	svc, list := p.svc, p.list
	logging.UI("products: deleting %s", id)
	return p.life.run(func(ctx context.Context) {
		list.CompleteDelete(id, svc.DeleteProduct(context.WithoutCancel(ctx), id))
	})
}

// Selected returns the id of the highlighted row.
func (p *ProductsPage) Selected() (string, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.ids) {
		return "", false
	}
	return p.ids[i], true
}

func (p *ProductsPage) Update(msg tea.Msg) tea.Cmd {
	defer p.syncRows()

	switch msg := msg.(type) {
	case refreshMsg:
		return nil

	case spinner.TickMsg:
		if p.list.State() != catalog.ListLoading && !p.anyDeleting() {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if _, ok := p.list.Confirming(); ok {
			return p.handleConfirmKey(msg)
		}
		switch msg.String() {
		case "r":
			if p.list.State() == catalog.ListLoading {
				return nil
			}
			return tea.Batch(p.spinner.Tick, p.fetch(true))
		case "n":
			return Navigate(nav.PathProductNew)
		case "enter", "e":
			if id, ok := p.Selected(); ok {
				return Navigate(nav.EditPath(id))
			}
			return nil
		case "d", "delete":
			return p.requestDelete()
		case "esc", "x":
			p.list.DismissError()
			return nil
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *ProductsPage) requestDelete() tea.Cmd {
	id, ok := p.Selected()
	if !ok {
		return nil
	}
	if p.confirmDelete {
		p.list.RequestDelete(id)
		return nil
	}
	if !p.list.BeginDelete(id) {
		return nil
	}
	return tea.Batch(p.spinner.Tick, p.remove(id))
}

func (p *ProductsPage) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if id, ok := p.list.Confirm(true); ok {
			return tea.Batch(p.spinner.Tick, p.remove(id))
		}
	case "n", "N", "esc":
		p.list.Confirm(false)
	}
	return nil
}

func (p *ProductsPage) anyDeleting() bool {
	for _, id := range p.ids {
		if p.list.Deleting(id) {
			return true
		}
	}
	return false
}

func (p *ProductsPage) syncRows() {
	items := p.list.Items()
	rows := make([]table.Row, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		status := string(it.Stock())
		if p.list.Deleting(it.ID) {
			status = DeletingLabel
		}
		rows = append(rows, table.Row{
			it.Name,
			it.Model,
			it.Origin,
			it.Price.StringFixed(2),
			strconv.Itoa(it.Quantity),
			status,
		})
		ids = append(ids, it.ID)
	}
	p.ids = ids
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		p.table.SetCursor(len(rows) - 1)
	}
}

func (p *ProductsPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(fmt.Sprintf("Products (%d)", p.list.Len())))
	sb.WriteString("\n")

	if p.list.State() == catalog.ListLoading {
		sb.WriteString(p.spinner.View() + " Loading products…")
		return sb.String()
	}
	if err := p.list.Err(); err != nil {
		sb.WriteString(p.styles.ErrorBanner(errorText(err), "press r to retry, esc to dismiss"))
		sb.WriteString("\n")
	}

	if id, ok := p.list.Confirming(); ok {
		name := id
		if prod, idx := catalog.FindByID(p.list.Items(), id); idx >= 0 {
			name = prod.Name
		}
		sb.WriteString(p.styles.Warning.Render(fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", name)))
		sb.WriteString("\n")
	}

	if len(p.ids) == 0 {
		sb.WriteString(p.styles.Muted.Render("No products yet. Press n to add one."))
		return sb.String()
	}

	body := p.table.View()
	if p.showDetail() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", p.detail())
	}
	sb.WriteString(body)
	return sb.String()
}

func (p *ProductsPage) detail() string {
	id, ok := p.Selected()
	if !ok {
		return ""
	}
	prod, idx := catalog.FindByID(p.list.Items(), id)
	if idx < 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(p.styles.Bold.Render(prod.Name))
	sb.WriteString("\n")
	if prod.Brand != "" {
		sb.WriteString(p.styles.Muted.Render(prod.Brand) + "\n")
	}
	sb.WriteString(p.styles.StockBadge(prod.Stock()))
	sb.WriteString("\n")
	if prod.Image.IsRemote() {
		sb.WriteString(p.styles.Info.Render(prod.Image.URL) + "\n")
	}
	if desc := RenderMarkdown(p.markdown, prod.Description); desc != "" {
		sb.WriteString("\n" + desc)
	}
	return p.styles.Card.Width(DetailPaneWidth).Render(sb.String())
}
