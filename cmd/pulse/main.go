package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulseadmin/cmd/pulse/console"
	"pulseadmin/cmd/pulse/ui"
	"pulseadmin/internal/api"
	"pulseadmin/internal/config"
	"pulseadmin/internal/logging"
	"pulseadmin/internal/session"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Root flags
	openPath string

	// Resolved in PersistentPreRunE
	cfg *config.Config
)

// errNotLoggedIn is returned by commands that need a session token.
var errNotLoggedIn = errors.New("not logged in (run 'pulse login')")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse Admin - product catalog console",
	Long: `Pulse Admin manages the Pulse product catalog from the terminal.

Run without arguments to open the interactive console. Scriptable
subcommands cover login, listing, creating, updating and deleting products.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if timeout > 0 {
			cfg.API.Timeout = timeout.String()
		}
		// config subcommands must work on a broken file so it can be fixed.
		if !isConfigCommand(cmd) {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config %s: %w", configPath, err)
			}
		}

		opts := loggingOptions(cfg)
		opts.Stderr = verbose
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("pulse %s: config=%s api=%s", cmd.Name(), configPath, cfg.API.BaseURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
	RunE: runConsole,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror warnings and errors to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "API request timeout (overrides api.timeout)")

	rootCmd.Flags().StringVar(&openPath, "open", "/", "Console page to open first (e.g. /products)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

func loggingOptions(c *config.Config) logging.Options {
	return logging.Options{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		Categories: c.Logging.Categories,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func openSession() (*session.Session, error) {
	sess, err := session.OpenSession(cfg.Session.Backend, cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	return sess, nil
}

func newClient(sess *session.Session) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.GetAPITimeout(),
		UserAgent: cfg.API.UserAgent,
	}, sess)
}

// withClient opens the session and client, runs fn and releases both.
// With auth set, fn only runs when a token is stored.
func withClient(auth bool, fn func(sess *session.Session, c *api.Client) error) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if auth && !sess.Authenticated() {
		return errNotLoggedIn
	}

	c, err := newClient(sess)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(sess, c)
}

func cliStyles() ui.Styles {
	return ui.NewStyles(ui.ThemeFor(cfg.IsDarkTheme()))
}

// runConsole opens the interactive console.
func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(false, func(sess *session.Session, c *api.Client) error {
		var w *session.Watcher
		if cfg.Session.Watch {
			var err error
			if w, err = session.NewWatcher(sess); err != nil {
				logging.BootWarn("session watcher disabled: %v", err)
				w = nil
			}
		}

		return console.Run(ctx, console.Options{
			Session:       sess,
			Client:        c,
			Styles:        cliStyles(),
			ConfirmDelete: cfg.UI.ConfirmDelete,
			Watcher:       w,
			Start:         openPath,
		})
	})
}
