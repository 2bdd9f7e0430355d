package ui

import (
	"context"

	"pulseadmin/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// Page is a screen hosted by the console. The console owns routing; a page
// asks to move by returning a NavigateMsg, BackMsg or LogoutMsg.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Close is called when the page leaves the screen. Requests still in
	// flight are cancelled and their results discarded.
	Close()
	// Capturing reports whether a text control has focus, so single-key
	// shortcuts must not be intercepted.
	Capturing() bool
	Title() string
	Help() string
}

// NavigateMsg asks the console to move to Path. Replace leaves the back stack alone.
type NavigateMsg struct {
	Path    string
	Replace bool
}

// BackMsg asks the console to go back one page.
type BackMsg struct{}

// LogoutMsg asks the console to end the session.
type LogoutMsg struct{}

// SessionStartedMsg reports a successful interactive login.
type SessionStartedMsg struct {
	Email string
}

// refreshMsg is sent by page commands once a controller has been updated.
// owner matches the page that issued the command; others ignore it.
type refreshMsg struct {
	owner *lifetime
}

// Navigate returns a command that emits a NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// lifetime scopes a page's requests. Closing it cancels the context handed
// to every request the page started.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifetime(parent context.Context) *lifetime {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &lifetime{ctx: ctx, cancel: cancel}
}

func (l *lifetime) close() { l.cancel() }

// run wraps fn as a command that reports back to this page.
func (l *lifetime) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(l.ctx)
		return refreshMsg{owner: l}
	}
}

// errorText formats a surfaced error for display.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	return api.UserMessage(err)
}
