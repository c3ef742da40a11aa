// Package cli implements mushroomctl, a command-line client that works
// directly against the configured store through the same services as the
// HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/mushroom-tracker/internal/app"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/config"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// runtime is what every subcommand needs once the root has bootstrapped.
type runtime struct {
	configPath string
	username   string
	password   string
	asJSON     bool

	app *app.App
	ctx context.Context
}

// Execute runs mushroomctl and returns the process exit code.
func Execute() int {
	if err := GetRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// GetRootCmd builds the command tree. Each call returns a fresh tree, so
// tests can run commands in isolation.
func GetRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:     "mushroomctl",
		Short:   "Browse the mushroom catalogue and record specimens",
		Version: Version,
		Long: `mushroomctl reads and writes the mushroom catalogue directly.

It uses the same configuration as the server (YAML file and MUSHROOM_*
environment variables), so point both at the same storage to share data.
Commands that need an account take --username and --password.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.bootstrap(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if rt.app == nil {
				return nil
			}
			return rt.app.Close()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&rt.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVarP(&rt.username, "username", "u", "", "account to act as")
	pf.StringVarP(&rt.password, "password", "p", "", "password for --username")
	pf.BoolVar(&rt.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(
		getSpeciesCmd(rt),
		getSpecimenCmd(rt),
		getUserCmd(rt),
	)
	return root
}

// bootstrap loads the configuration, opens the store and, when credentials
// were given, logs in so the session travels in rt.ctx.
func (rt *runtime) bootstrap(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.Log.Level)
	if level < slog.LevelWarn {
		// keep stdout clean for command output
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	rt.app = a
	rt.ctx = ctx
	return nil
}

// login opens a session for --username/--password and attaches it to
// rt.ctx. Commands that may run anonymously call it only when a username
// was given.
func (rt *runtime) login() error {
	if rt.username == "" {
		return errors.New("--username is required for this command")
	}
	session, err := rt.app.Auth.Authenticate(rt.ctx, rt.username, rt.password)
	if err != nil {
		return err
	}
	rt.ctx = auth.WithSession(rt.ctx, session)
	return nil
}

// loginIfGiven logs in when a username was supplied.
func (rt *runtime) loginIfGiven() error {
	if rt.username == "" {
		return nil
	}
	return rt.login()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
