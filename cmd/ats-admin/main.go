// Command ats-admin inspects and maintains an ats-web deployment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/minboot/ats-web/config"
	"github.com/minboot/ats-web/internal/atsclient"
	"github.com/minboot/ats-web/internal/bootstrap"
	apperrors "github.com/minboot/ats-web/internal/errors"
	"github.com/minboot/ats-web/internal/guard"
)

// app carries what every command needs. Tests replace loadConfig.
type app struct {
	logger     *slog.Logger
	loadConfig func() (config.AppConfig, error)
	// purgeRedis is swapped in tests; it returns the number of records removed.
	purgeRedis func(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (int, error)
}

func main() {
	logger := bootstrap.InitLogger(slog.LevelWarn)
	a := &app{logger: logger, loadConfig: bootstrap.LoadConfig, purgeRedis: purgeRedisSessions}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must exit with failure status for shell scripts
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ats-admin",
		Short:         "Administer an ats-web deployment",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRoutesCmd(a), newCheckCmd(a), newSessionsCmd(a))
	return root
}

func newRoutesCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route rule table the guard enforces",
		Long: `Print the route rule table the guard enforces.

Without --file the table comes from ROUTE_RULES_FILE, falling back to the built-in rules.
With --file the given YAML table is validated and printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				file = cfg.UI.RulesFile
			}
			list := guard.DefaultRules()
			if file != "" {
				loaded, err := guard.LoadRules(file)
				if err != nil {
					return err
				}
				list = loaded
			}
			rules, err := guard.NewRules(list)
			if err != nil {
				return err
			}
			return printRules(cmd.OutOrStdout(), rules.List())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML rule table to validate and print")
	return cmd
}

func printRules(w io.Writer, rules []guard.Rule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "PATTERN\tACCESS\tROLES"); err != nil {
		return err
	}
	for _, r := range rules {
		roles := "-"
		if len(r.Roles) > 0 {
			roles = ""
			for i, role := range r.Roles {
				if i > 0 {
					roles += ","
				}
				roles += string(role)
			}
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Pattern, r.Access, roles); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func newCheckCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and check that the backend answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok: backend=%s session_store=%s\n", cfg.Backend.URL, cfg.Session.Store)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return checkBackend(ctx, out, cfg.Backend.URL)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the backend")
	return cmd
}

// checkBackend performs an anonymous session check. A 401 proves the backend is up.
func checkBackend(ctx context.Context, out io.Writer, baseURL string) error {
	client, err := atsclient.New(atsclient.Options{BaseURL: baseURL})
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = client.Me(ctx)
	switch {
	case err == nil, apperrors.IsUnauthorized(err):
		fmt.Fprintf(out, "backend ok: %s answered in %s\n", baseURL, time.Since(start).Round(time.Millisecond))
		return nil
	default:
		return fmt.Errorf("backend %s: %w", baseURL, err)
	}
}

func newSessionsCmd(a *app) *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage persisted visitor sessions",
	}
	var yes bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every persisted visitor session, signing all visitors out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to purge without --yes")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Session.Store != config.SessionStoreRedis {
				fmt.Fprintln(cmd.OutOrStdout(), "sessions are kept in memory; restart the server to clear them")
				return nil
			}
			n, err := a.purgeRedis(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d visitor sessions\n", n)
			return nil
		},
	}
	purge.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the purge")
	sessions.AddCommand(purge)
	return sessions
}
