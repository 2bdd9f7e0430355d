package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pulseadmin/cmd/pulse/ui"
	"pulseadmin/internal/api"
	"pulseadmin/internal/session"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd stores a session token for the other commands and the console
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Exchanges an email and password for a session token and stores it in
the configured session backend.

The password is read from standard input when --password is omitted:
  echo "$PULSE_PASSWORD" | pulse login --email admin@pulse.io`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the API endpoint and login state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (default: read from stdin)")
	loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		var err error
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(false, func(sess *session.Session, c *api.Client) error {
		return login(ctx, cmd, sess, c, loginEmail, password)
	})
}

func login(ctx context.Context, cmd *cobra.Command, sess *session.Session, c *api.Client, email, password string) error {
	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return errors.New(api.UserMessage(err))
	}
	if err := sess.Begin(resp.Token, resp.User); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	who := resp.User.Email
	if resp.User.Role != "" {
		who = fmt.Sprintf("%s (%s)", who, resp.User.Role)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", who)
	return nil
}

// readPassword takes the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	if !sess.Authenticated() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}
	if err := sess.End(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	s := cliStyles()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Logo(s))
	fmt.Fprintln(out, s.RenderDivider(40))
	fmt.Fprintf(out, "  API:      %s (timeout %s)\n", cfg.API.BaseURL, cfg.GetAPITimeout())

	where := sess.Path()
	if where == "" {
		where = "in memory"
	}
	fmt.Fprintf(out, "  Session:  %s, %s\n", cfg.Session.Backend, where)

	if !sess.Authenticated() {
		fmt.Fprintf(out, "  Login:    %s\n", s.Warning.Render("not logged in"))
		return nil
	}
	u, _ := sess.User()
	who := u.Email
	if who == "" {
		who = "unknown user"
	}
	if u.Role != "" {
		who = fmt.Sprintf("%s (%s)", who, u.Role)
	}
	fmt.Fprintf(out, "  Login:    %s\n", s.Success.Render(who))
	return nil
}
