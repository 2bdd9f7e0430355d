package ui

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"pulseadmin/internal/api"
	"pulseadmin/internal/api/apitest"
	"pulseadmin/internal/catalog"
	"pulseadmin/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// settle runs cmd and feeds every resulting message back into page until
// nothing is left to run. Timer-driven messages (spinner ticks, cursor
// blinks) are dropped. Messages addressed to the console are returned.
func settle(t *testing.T, page Page, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "commands did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if msg == nil || isTimer(msg) {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		switch msg.(type) {
		case NavigateMsg, BackMsg, LogoutMsg, SessionStartedMsg:
			out = append(out, msg)
			continue
		}
		queue = append(queue, page.Update(msg))
	}
	return out
}

func isTimer(msg tea.Msg) bool {
	if _, ok := msg.(spinner.TickMsg); ok {
		return true
	}
	return strings.HasSuffix(reflect.TypeOf(msg).PkgPath(), "bubbles/cursor")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and returns the command produced by the last one.
// Commands from earlier keys are discarded.
func press(page Page, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = page.Update(key(k))
	}
	return cmd
}

type env struct {
	srv    *apitest.Server
	client *api.Client
	sess   *session.Session
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := apitest.New(t)
	sess := session.New(session.NewMemoryStorage())
	c, err := api.New(api.Options{BaseURL: srv.URL(), Timeout: 5 * time.Second}, sess)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	token := srv.AddUser("admin@pulse.io", "secret", session.User{ID: "u1", Name: "Admin", Role: "admin"})
	require.NoError(t, sess.Begin(token, session.User{Email: "admin@pulse.io"}))
	return &env{srv: srv, client: c, sess: sess}
}

func product(name, model string, qty int, price string) catalog.Product {
	return catalog.Product{
		Name:     name,
		Model:    model,
		Origin:   "China",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
