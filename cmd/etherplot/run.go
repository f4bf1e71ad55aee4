package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"etherplot/app"
	"etherplot/hal"
	"etherplot/internal/config"
	"etherplot/internal/httpapi"
	"etherplot/internal/metrics"

	"github.com/spf13/cobra"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Open the plotter window (default)",
	Long: `Opens a resizable window. Drag to pan, scroll or pinch to zoom, arrow keys pan,
+/- zoom and R resets the view. Plot edits made through the HTTP API show up live.`,
	RunE: runWindow,
}

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the plotter without a window",
	Long: `Runs the render loop without a window, e.g. to serve the HTTP API and metrics on a
machine without a display.`,
	RunE: runHeadless,
}

func init() {
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(headlessCmd)
	headlessCmd.Flags().Int("hz", 60, "Tick rate")
	headlessCmd.Flags().Uint64("ticks", 0, "Stop after N ticks (0 = run until interrupted)")
}

type runner func(ctx context.Context, cfg config.Config, host hal.HostConfig, newApp func(hal.HAL) (func() error, error)) error

func runWindow(cmd *cobra.Command, _ []string) error {
	return serve(cmd, func(_ context.Context, cfg config.Config, host hal.HostConfig, newApp func(hal.HAL) (func() error, error)) error {
		return hal.RunWindow(hal.WindowConfig{Host: host, Title: cfg.Window.Title, TPS: cfg.Window.TPS}, newApp)
	})
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	hz, _ := cmd.Flags().GetInt("hz")
	ticks, _ := cmd.Flags().GetUint64("ticks")
	return serve(cmd, func(ctx context.Context, _ config.Config, host hal.HostConfig, newApp func(hal.HAL) (func() error, error)) error {
		err := hal.RunHeadless(ctx, hal.HeadlessConfig{Host: host, Hz: hz, Ticks: ticks}, newApp)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

// serve wires store, metrics, viewer and the optional HTTP API around a HAL runner.
func serve(cmd *cobra.Command, run runner) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	m := metrics.New()
	opt, err := viewerOptions(cfg, store)
	if err != nil {
		return err
	}
	opt.Observer = m
	opt.OnStoreError = func(op string, _ error) {
		m.StoreError(op)
	}

	var httpDone chan struct{}
	ready := func(v *app.Viewer) {
		go func() {
			<-ctx.Done()
			v.Close()
		}()
		if cfg.HTTP.Addr == "" {
			return
		}
		httpDone = make(chan struct{})
		h := httpapi.NewHandler(v, m.Handler(), log)
		go func() {
			defer close(httpDone)
			if err := httpapi.Serve(ctx, cfg.HTTP.Addr, h, log); err != nil {
				log.Error("http api stopped", "error", err)
			}
		}()
	}

	host := hostConfig(cfg.Window.Width, cfg.Window.Height)
	log.Info("starting", "store", cfg.Store.Driver, "http", cfg.HTTP.Addr)
	err = run(ctx, cfg, host, app.Factory(ctx, opt, ready))

	// closing the window does not cancel ctx by itself
	stop()
	if httpDone != nil {
		<-httpDone
	}
	return err
}
