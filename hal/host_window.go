//go:build cgo

package hal

import (
	"errors"
	"image"

	"etherplot/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a resizable desktop window that displays the framebuffer and turns mouse,
// touch and keyboard input into gestures. It blocks until the window closes.
func RunWindow(cfg WindowConfig, newApp func(HAL) (func() error, error)) error {
	h := newHost(cfg.Host)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	title := cfg.Title
	if title == "" {
		title = "etherplot"
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	g := &hostGame{h: h, step: step, input: &pointerTracker{q: h.gestures}}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.Width(), h.fb.Height())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ErrQuit) {
		return err
	}
	return nil
}

type hostGame struct {
	h       *hostHAL
	input   *pointerTracker
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error

	outW, outH int
}

func (g *hostGame) Update() error {
	g.input.poll()
	if g.step != nil {
		if err := g.step(); err != nil {
			if errors.Is(err, ErrQuit) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	w, h := fb.Width(), fb.Height()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]byte, w*h*2)
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}

	fb.Snapshot(g.scratch)
	rgba565To888(g.img.Pix, g.scratch)

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

// Layout keeps one framebuffer pixel per window pixel and reports size changes as gestures.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		g.h.gestures.push(Resize(outsideWidth, outsideHeight))
	}
	return outsideWidth, outsideHeight
}
