package ui

import (
	"context"
	"errors"
	"strings"

	"pulseadmin/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginFunc exchanges credentials for a session and persists it.
type LoginFunc func(ctx context.Context, email, password string) error

var errMissingCredentials = errors.New("email and password are required")

type loginResultMsg struct {
	owner *lifetime
	email string
	err   error
}

// LoginPage collects credentials.
type LoginPage struct {
	life       *lifetime
	login      LoginFunc
	styles     Styles
	email      textinput.Model
	password   textinput.Model
	spinner    spinner.Model
	submitting bool
	err        error
	width      int
}

// NewLoginPage creates the login screen. email pre-fills the address field.
func NewLoginPage(ctx context.Context, styles Styles, login LoginFunc, email string) *LoginPage {
	em := textinput.New()
	em.Placeholder = "you@company.com"
	em.Prompt = "│ "
	em.CharLimit = 254
	em.Width = 40
	em.PromptStyle = styles.Prompt
	em.SetValue(email)

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.Prompt = "│ "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 128
	pw.Width = 40
	pw.PromptStyle = styles.Prompt

	if email == "" {
		em.Focus()
	} else {
		pw.Focus()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &LoginPage{
		life:     newLifetime(ctx),
		login:    login,
		styles:   styles,
		email:    em,
		password: pw,
		spinner:  sp,
	}
}

func (p *LoginPage) Init() tea.Cmd { return textinput.Blink }

func (p *LoginPage) Title() string { return "Sign in" }

func (p *LoginPage) Help() string {
	return "tab switch field • enter sign in • ctrl+c quit"
}

func (p *LoginPage) Capturing() bool { return true }

func (p *LoginPage) SetSize(width, height int) {
	p.width = width
}

func (p *LoginPage) Close() { p.life.close() }

// Submitting reports whether a login request is in flight.
func (p *LoginPage) Submitting() bool { return p.submitting }

// Err is the surfaced login error.
func (p *LoginPage) Err() error { return p.err }

func (p *LoginPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.owner != p.life {
			return nil
		}
		p.submitting = false
		if msg.err != nil {
			p.err = msg.err
			p.password.SetValue("")
			p.focusPassword()
			return nil
		}
		email := msg.email
		return func() tea.Msg { return SessionStartedMsg{Email: email} }

	case spinner.TickMsg:
		if !p.submitting {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if p.submitting {
			return nil
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			if p.email.Focused() {
				p.focusPassword()
			} else {
				p.focusEmail()
			}
			return nil
		case tea.KeyEnter:
			if p.email.Focused() && p.password.Value() == "" {
				p.focusPassword()
				return nil
			}
			return p.submit()
		}
	}

	var cmd tea.Cmd
	if p.email.Focused() {
		p.email, cmd = p.email.Update(msg)
	} else {
		p.password, cmd = p.password.Update(msg)
	}
	return cmd
}

func (p *LoginPage) focusEmail() {
	p.password.Blur()
	p.email.Focus()
}

func (p *LoginPage) focusPassword() {
	p.email.Blur()
	p.password.Focus()
}

func (p *LoginPage) submit() tea.Cmd {
	email := strings.TrimSpace(p.email.Value())
	password := p.password.Value()
	if email == "" || password == "" {
		p.err = errMissingCredentials
		return nil
	}

	p.err = nil
	p.submitting = true
	logging.UIDebug("login: submitting for %s", email)

	life, login := p.life, p.login
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return loginResultMsg{owner: life, email: email, err: login(life.ctx, email, password)}
	})
}

func (p *LoginPage) View() string {
	var sb strings.Builder
	sb.WriteString(Logo(p.styles))
	sb.WriteString("\n")
	sb.WriteString(p.styles.Subtitle.Render("Sign in to manage the product catalog"))
	sb.WriteString("\n\n")

	sb.WriteString(p.label("Email", p.email.Focused()))
	sb.WriteString(p.email.View())
	sb.WriteString("\n")
	sb.WriteString(p.label("Password", p.password.Focused()))
	sb.WriteString(p.password.View())
	sb.WriteString("\n\n")

	switch {
	case p.submitting:
		sb.WriteString(p.spinner.View() + " Signing in…")
	case p.err != nil:
		sb.WriteString(p.styles.Error.Render(errorText(p.err)))
	default:
		sb.WriteString(p.styles.Muted.Render("Press enter to sign in"))
	}
	return sb.String()
}

func (p *LoginPage) label(text string, focused bool) string {
	if focused && !p.submitting {
		return p.styles.LabelFocused.Render(text)
	}
	return p.styles.Label.Render(text)
}
