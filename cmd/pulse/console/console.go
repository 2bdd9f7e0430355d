// Package console is the root Bubble Tea model of the pulse console. It owns
// the router, swaps pages on navigation and re-runs the login guard whenever
// the session changes.
package console

import (
	"context"
	"fmt"

	"pulseadmin/cmd/pulse/ui"
	"pulseadmin/internal/api"
	"pulseadmin/internal/logging"
	"pulseadmin/internal/nav"
	"pulseadmin/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Options wires the console to its collaborators.
type Options struct {
	Session       *session.Session
	Client        *api.Client
	Styles        ui.Styles
	ConfirmDelete bool
	// Watcher, when set, reports logins and logouts made by other processes.
	Watcher *session.Watcher
	// Start is the first path to show. Empty means "/".
	Start string
}

// sessionChangedMsg carries a watcher event into the update loop.
type sessionChangedMsg session.Change

// Model is the root console model.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    Options
	router  *nav.Router
	page    ui.Page
	current nav.Destination
	width   int
	height  int
	email   string
	closed  bool
}

// New builds the console. Requests started by pages are cancelled when ctx
// is done or the model is closed.
func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{ctx: ctx, cancel: cancel, opts: opts}
	if u, ok := opts.Session.User(); ok {
		m.email = u.Email
	}

	start := opts.Start
	if start == "" {
		start = nav.PathRoot
	}
	m.router = nav.NewRouter(opts.Session.Authenticated, start)
	m.current = m.router.Current()
	m.page = m.pageFor(m.current)
	return m
}

func (m *Model) Init() tea.Cmd {
	logging.UI("console: starting at %s", m.current.Path)
	return tea.Batch(m.page.Init(), m.watch())
}

// Current is the destination on screen.
func (m *Model) Current() nav.Destination { return m.current }

// Page is the page on screen.
func (m *Model) Page() ui.Page { return m.page }

// Close releases the current page and cancels outstanding requests.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.page.Close()
	m.cancel()
}

func (m *Model) watch() tea.Cmd {
	if m.opts.Watcher == nil {
		return nil
	}
	ch := m.opts.Watcher.Changes()
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg(c)
	}
}

func (m *Model) login(ctx context.Context, email, password string) error {
	resp, err := m.opts.Client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.opts.Session.Begin(resp.Token, resp.User)
}

func (m *Model) pageFor(d nav.Destination) ui.Page {
	s := m.opts.Styles
	switch d.Route {
	case nav.RouteLogin:
		return ui.NewLoginPage(m.ctx, s, m.login, m.email)
	case nav.RouteDashboard:
		return ui.NewDashboardPage(m.ctx, s, m.opts.Client)
	case nav.RouteProducts:
		return ui.NewProductsPage(m.ctx, s, m.opts.Client, m.opts.ConfirmDelete)
	case nav.RouteProductNew:
		return ui.NewProductFormPage(m.ctx, s, m.opts.Client, "")
	case nav.RouteProductEdit:
		return ui.NewProductFormPage(m.ctx, s, m.opts.Client, d.ID)
	default:
		return ui.NewNotFoundPage(s, d.Path)
	}
}

// show replaces the page when the destination changed.
func (m *Model) show(d nav.Destination) tea.Cmd {
	if d.Path == m.current.Path && m.page != nil {
		return nil
	}
	logging.NavDebug("console: %s -> %s", m.current.Path, d.Path)
	m.page.Close()
	m.current = d
	m.page = m.pageFor(d)
	m.resize()
	return m.page.Init()
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	l := m.layout()
	m.page.SetSize(l.ContentWidth(), l.ContentHeight())
}

func (m *Model) layout() ui.LayoutConfig {
	return ui.NewLayoutConfig(m.width, m.height, m.current.Route.Protected())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Close()
			return m, tea.Quit
		}
		if m.current.Route.Protected() {
			if e, ok := ui.EntryForKey(msg.String()); ok {
				if e.Path == "" {
					return m, m.logout()
				}
				return m, m.show(m.router.Navigate(e.Path))
			}
		}

	case ui.NavigateMsg:
		if msg.Replace {
			return m, m.show(m.router.Replace(msg.Path))
		}
		return m, m.show(m.router.Navigate(msg.Path))

	case ui.BackMsg:
		if d, ok := m.router.Back(); ok {
			return m, m.show(d)
		}
		return m, nil

	case ui.LogoutMsg:
		return m, m.logout()

	case ui.SessionStartedMsg:
		m.email = msg.Email
		return m, m.show(m.router.Reset(nav.PathDashboard))

	case sessionChangedMsg:
		logging.Nav("console: session changed outside the console (authenticated=%v)", msg.Authenticated)
		if msg.Authenticated {
			if u, ok := m.opts.Session.User(); ok {
				m.email = u.Email
			}
		}
		var cmd tea.Cmd
		if d, changed := m.router.Recheck(); changed {
			cmd = m.show(d)
		}
		return m, tea.Batch(cmd, m.watch())
	}

	return m, m.page.Update(msg)
}

func (m *Model) logout() tea.Cmd {
	if err := m.opts.Session.End(); err != nil {
		logging.UIError("console: logout failed: %v", err)
	}
	return m.show(m.router.Reset(nav.PathLogin))
}

func (m *Model) View() string {
	if m.closed {
		return ""
	}
	l := m.layout()
	if m.width == 0 {
		return m.page.View()
	}

	header := m.page.Title()
	if m.email != "" && m.current.Route.Protected() {
		header = fmt.Sprintf("%s  ·  %s", header, m.email)
	}
	footer := m.page.Help()
	if l.ShowSidebar {
		footer += " • alt+1..4 menu"
	}
	footer += " • ctrl+c quit"

	var sidebar string
	if l.ShowSidebar {
		sidebar = ui.RenderSidebar(m.opts.Styles, m.current.Route, m.email)
	}
	return l.Frame(m.opts.Styles, header, sidebar, m.page.View(), footer)
}

// Run starts the console on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Watcher != nil {
		if err := opts.Watcher.Start(ctx); err != nil {
			logging.UIError("console: session watcher unavailable: %v", err)
			opts.Watcher = nil
		} else {
			defer opts.Watcher.Stop()
		}
	}

	m := New(ctx, opts)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
