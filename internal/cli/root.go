// Package cli implements the caseclock command tree.
//
// The root command wires configuration, logging, storage and the command
// pipeline; subcommands cover the voice loop (listen), direct log and
// registry edits, exports, totals and AI summaries.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/casematch"
	"github.com/caseclockapp/caseclock-mvp/internal/command"
	"github.com/caseclockapp/caseclock-mvp/internal/config"
	"github.com/caseclockapp/caseclock-mvp/internal/pipeline"
	"github.com/caseclockapp/caseclock-mvp/internal/registry"
	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
	"github.com/caseclockapp/caseclock-mvp/internal/timelog/postgres"
	"github.com/caseclockapp/caseclock-mvp/internal/timer"
)

var (
	flagConfig  string
	flagDataDir string
)

// NewRootCmd builds the caseclock command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "caseclock",
		Short:         "Voice-driven time and expense tracker for legal billing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the storage data directory")

	root.AddCommand(
		newListenCmd(),
		newCasesCmd(),
		newLogCmd(),
		newExpenseCmd(),
		newExportCmd(),
		newSummarizeCmd(),
		newTotalsCmd(),
	)
	return root
}

// Execute runs the command tree and returns a process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "caseclock: %v\n", err)
		return 1
	}
	return 0
}

// App bundles the wired collaborators the subcommands work with.
type App struct {
	Config *config.Config
	Cases  registry.Store
	Store  timelog.Store
	Pipe   *pipeline.Pipeline

	closers []func()
}

// Close releases backend resources (database pools).
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadConfig reads the configured (or default) YAML file. A missing default
// file is not an error; the built-in defaults apply.
func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = "caseclock.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, nil
		}
	}
	return config.Load(path)
}

// buildApp wires the full application from configuration.
func buildApp(ctx context.Context) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	cases, err := registry.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Cases: cases}

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pg, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.Store = pg
		app.closers = append(app.closers, pg.Close)
	default:
		fs, err := timelog.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		app.Store = fs
	}

	policy, err := timer.ParseSwitchPolicy(cfg.Timer.SwitchPolicy)
	if err != nil {
		return nil, err
	}

	app.Pipe = pipeline.New(
		command.NewNormalizer(command.Config{
			StartMarkers:   cfg.Commands.StartMarkers,
			StopMarkers:    cfg.Commands.StopMarkers,
			ExpenseMarkers: cfg.Commands.ExpenseMarkers,
			StripPhrases:   cfg.Commands.StripPhrases,
		}),
		casematch.New(casematch.WithThreshold(cfg.Resolver.Threshold)),
		cases,
		timer.New(timer.WithSwitchPolicy(policy)),
		app.Store,
	)
	return app, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a
// string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// optInt extracts an int value from a provider Options map, tolerating the
// int/float64 ambiguity of decoded YAML numbers.
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
