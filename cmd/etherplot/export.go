package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"etherplot/app"
	"etherplot/hal"
	"etherplot/plot"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [formula...]",
	Short: "Render one frame to a PNG file",
	Long: `Renders a single frame without a window and writes it as PNG. Formulas given as
arguments replace the stored plots for this frame.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "etherplot.png", "Output file, - for stdout")
	exportCmd.Flags().Int("width", 0, "Image width (default window.width)")
	exportCmd.Flags().Int("height", 0, "Image height (default window.height)")
	exportCmd.Flags().Float64("zoom", 1, "Zoom factor")
	exportCmd.Flags().Float64("pan-x", 0, "Horizontal pan in pixels")
	exportCmd.Flags().Float64("pan-y", 0, "Vertical pan in pixels")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")
	zoom, _ := cmd.Flags().GetFloat64("zoom")
	px, _ := cmd.Flags().GetFloat64("pan-x")
	py, _ := cmd.Flags().GetFloat64("pan-y")
	if w <= 0 {
		w = cfg.Window.Width
	}
	if h <= 0 {
		h = cfg.Window.Height
	}

	ctx := cmd.Context()
	// the frame is drawn from a scratch copy so exporting never writes to the real store
	scratch := plot.NewMemStore()
	if len(args) > 0 {
		cfg.Plots = args
	} else {
		store, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		saved, err := store.Load(ctx, cfg.Store.LoadLimit)
		closeStore(store, log)
		if err != nil {
			return err
		}
		if err := scratch.Save(ctx, saved...); err != nil {
			return err
		}
	}

	opt, err := viewerOptions(cfg, scratch)
	if err != nil {
		return err
	}
	var frame *hal.MemFramebuffer
	newApp := app.Factory(ctx, opt, nil)
	script := []hal.GestureEvent{hal.Zoom(zoom), hal.Pan(px, py)}
	err = hal.RunHeadless(ctx, hal.HeadlessConfig{
		Host:   hostConfig(w, h),
		Hz:     1000,
		Ticks:  uint64(len(script)) + 1,
		Script: script,
	}, func(hh hal.HAL) (func() error, error) {
		mf, ok := hh.Display().Framebuffer().(*hal.MemFramebuffer)
		if !ok {
			return nil, fmt.Errorf("export needs an in-memory framebuffer")
		}
		frame = mf
		return newApp(hh)
	})
	if err != nil {
		return err
	}

	if err := writePNG(cmd.OutOrStdout(), out, frame.Image()); err != nil {
		return err
	}
	log.Info("exported frame", "path", out, "width", w, "height", h)
	return nil
}

// writePNG encodes img to path, or to stdout when path is "-".
func writePNG(stdout io.Writer, path string, img image.Image) error {
	if path == "-" {
		if err := png.Encode(stdout, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
