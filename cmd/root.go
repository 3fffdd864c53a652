package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"cine-reservas-cli/config"
	"cine-reservas-cli/logger"
	"cine-reservas-cli/service"
	"cine-reservas-cli/store"
)

const appName = "cine-reservas"

// app holds the stores and services shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	functions *store.FunctionStore
	ledger    *store.Ledger
	movies    *store.MovieCatalog
	engine    *service.Engine
	schedule  *service.FunctionService
}

type rootOptions struct {
	dataDir  string
	logLevel string
}

func newApp(c *cobra.Command, opts rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.dataDir) != "" {
		cfg.DataDir = opts.dataDir
	}
	if strings.TrimSpace(opts.logLevel) != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.NewLogger(c.ErrOrStderr())
	ledger := store.NewLedger(cfg.ReservationsPath(), log)
	functions := store.NewFunctionStore(cfg.FunctionsPath(), ledger, log)
	movies := store.NewMovieCatalog(cfg.MoviesPath(), log)

	return &app{
		cfg:       cfg,
		log:       log,
		functions: functions,
		ledger:    ledger,
		movies:    movies,
		engine:    service.NewEngine(functions, ledger, log),
		schedule:  service.NewFunctionService(functions, movies, cfg.MaxSeats, log),
	}, nil
}

// movieTitles maps movie id to title. A broken catalog only costs the titles.
func (a *app) movieTitles() map[string]string {
	titles := map[string]string{}
	movies, err := a.movies.Load()
	if err != nil {
		a.log.Warn("movie catalog unavailable", "error", err)
		return titles
	}
	for _, m := range movies {
		titles[m.ID] = m.Title
	}
	return titles
}

// functionsShowing lists the functions scheduled for movieID.
func (a *app) functionsShowing(movieID string) []string {
	functions, err := a.functions.Load()
	if err != nil {
		a.log.Warn("functions unavailable", "error", err)
		return nil
	}
	var ids []string
	for _, fn := range functions {
		if fn.MovieID == movieID {
			ids = append(ids, fn.ID)
		}
	}
	return ids
}

func newRootCmd(version string, commit string) *cobra.Command {
	var (
		opts rootOptions
		a    *app
	)
	get := func() *app { return a }

	root := &cobra.Command{
		Use:   appName,
		Short: "Theater booking CLI",
		Long:  `Schedule movie functions, pick seats on a live seat map and keep the reservation ledger in sync.`,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if c.Name() == "version" {
				return nil
			}
			built, err := newApp(c, opts)
			if err != nil {
				return err
			}
			a = built
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding funciones.csv, reservas.json and peliculas.csv")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newFunctionsCmd(get),
		newReserveCmd(get),
		newReservationsCmd(get),
		newMoviesCmd(get),
		newVersionCmd(version, commit),
	)
	return root
}

func newVersionCmd(version string, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(c *cobra.Command, args []string) {
			out := c.OutOrStdout()
			fmt.Fprintf(out, "%s %s", appName, version)
			if commit != "none" && commit != "" {
				fmt.Fprintf(out, " (%s)", commit)
			}
			fmt.Fprintln(out)
		},
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string, commit string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(version, commit).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
