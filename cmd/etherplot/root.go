package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"etherplot/app"
	"etherplot/hal"
	"etherplot/internal/config"
	"etherplot/internal/logging"
	"etherplot/internal/store/boltstore"
	"etherplot/internal/store/redisstore"
	"etherplot/plot"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etherplot",
	Short: "Etherplot is an interactive formula plotter",
	Long: `Etherplot draws y = f(x) curves on a pannable, zoomable grid.
Without a subcommand it opens the plotter window.`,
	SilenceUsage: true,
	RunE:         runWindow,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a config key, e.g. --set camera.max_scale=10")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides log.level")
}

// stderrSink is the one line sink on stderr. The HAL runners get it too, so the viewer's
// records and the command's records never interleave mid-line.
var stderrSink = hal.NewLogger(os.Stderr)

// setup loads the configuration and builds the logger every command shares.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	sets, _ := cmd.Flags().GetStringArray("set")
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		sets = append(sets, "log.level="+lvl)
	}

	cfg, err := config.Load(path, sets)
	if err != nil {
		return config.Config{}, nil, err
	}
	level, useJSON, err := logSettings(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(stderrSink, level, useJSON), nil
}

func logSettings(cfg config.Config) (slog.Level, bool, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return level, false, err
	}
	useJSON, err := logging.UseJSON(cfg.Log.Format, os.Stderr.Fd())
	return level, useJSON, err
}

// viewerOptions leaves Logger unset so the viewer logs through the HAL's sink.
func viewerOptions(cfg config.Config, store plot.Store) (app.Options, error) {
	level, useJSON, err := logSettings(cfg)
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{Config: cfg, Store: store, LogLevel: level, LogJSON: useJSON}, nil
}

func hostConfig(w, h int) hal.HostConfig {
	return hal.HostConfig{Width: w, Height: h, Logger: stderrSink}
}

// openStore opens the configured plot store.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (plot.Store, error) {
	sc := cfg.Store
	switch sc.Driver {
	case config.DriverBolt:
		s, err := boltstore.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		log.Debug("plot store opened", "driver", sc.Driver, "path", sc.Path)
		return s, nil
	case config.DriverRedis:
		s := redisstore.New(sc.Redis.Addr, sc.Redis.DB, redisstore.WithPrefix(sc.Redis.Prefix))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("redis %s: %w", sc.Redis.Addr, err)
		}
		log.Debug("plot store opened", "driver", sc.Driver, "addr", sc.Redis.Addr)
		return s, nil
	default:
		return plot.NewMemStore(), nil
	}
}

func closeStore(s plot.Store, log *slog.Logger) {
	if err := s.Close(); err != nil {
		log.Error("close plot store", "error", err)
	}
}
