package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pogoda/internal/backend"
	"pogoda/internal/config"
	"pogoda/internal/store"
	"pogoda/internal/weather"
)

type app struct {
	backendURL string
	debug      bool

	cfg          config.Config
	client       *backend.Client
	svc          *weather.Service
	closeHistory func()
}

func newRootCmd() *cobra.Command {
	a := &app{closeHistory: func() {}}
	cmd := &cobra.Command{
		Use:               "pogoda",
		Short:             "Current weather and a 5-day forecast for Polish cities",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.closeHistory() },
	}
	cmd.PersistentFlags().StringVar(&a.backendURL, "backend-url", "", "weather backend base URL (overrides BACKEND_URL)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "log debug output to stderr")

	cmd.AddCommand(a.citiesCmd(), a.weatherCmd(), a.historyCmd(), a.shellCmd())
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.backendURL != "" {
		cfg.BackendURL = a.backendURL
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	a.client = backend.NewClient(cfg.BackendURL, backend.Options{
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
	})

	history, closeHistory, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	a.closeHistory = closeHistory
	a.svc = weather.NewService(a.client, history, weather.NewNormalizer(cfg.Location))
	return nil
}

func (a *app) citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities [filter]",
		Short: "List known cities, or the ones matching filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cities []string
				err    error
			)
			if len(args) == 1 {
				cities, err = a.svc.Suggest(cmd.Context(), args[0])
			} else {
				cities, err = a.svc.Cities(cmd.Context())
			}
			if err != nil {
				return userError(err)
			}
			for _, c := range cities {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (a *app) weatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city>",
		Short: "Show current weather and the daily forecast for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.Search(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			renderResult(cmd.OutOrStdout(), result.City, result.Current, result.Alert, result.Forecast)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently searched cities",
		Long: "Show recently searched cities, most recent first. Reads the configured " +
			"history store, or the backend's own history when HISTORY_BACKEND is memory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.svc.RecentSearches(cmd.Context(), limit)
			if errors.Is(err, weather.ErrNoHistoryStore) {
				history, err = a.client.History(cmd.Context())
				if err == nil && limit > 0 && len(history) > limit {
					history = history[:limit]
				}
			}
			if err != nil {
				return userError(err)
			}
			renderHistory(cmd.OutOrStdout(), history)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", weather.MaxHistory, "number of entries to show")
	return cmd
}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Search cities interactively, one name per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.svc)
		},
	}
}

// userError keeps the wrapped error for --debug and shows the user message.
func userError(err error) error {
	slog.Debug("command failed", "err", err)
	return errors.New(weather.UserMessage(err))
}
