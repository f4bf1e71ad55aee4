package render

import (
	"log/slog"
	"time"

	"etherplot/camera"
	"etherplot/expr"
	"etherplot/internal/logging"
	"etherplot/plot"
)

// Theme colors one frame.
type Theme struct {
	Background plot.Color
	Axes       plot.Color
	GridMajor  plot.Color
	GridMinor  plot.Color
	Text       plot.Color
}

var DefaultTheme = Theme{
	Background: plot.Color{R: 0x12, G: 0x12, B: 0x12},
	Axes:       plot.Color{R: 0xEE, G: 0xEE, B: 0xEE},
	GridMajor:  plot.Color{R: 0x55, G: 0x55, B: 0x55},
	GridMinor:  plot.Color{R: 0x2A, G: 0x2A, B: 0x2A},
	Text:       plot.Color{R: 0xCC, G: 0xCC, B: 0xCC},
}

// Options configures a Renderer. Widths are on-screen pixels.
type Options struct {
	PixelsPerUnit  float64
	MajorEvery     int
	SlopeThreshold float64
	MaxSamples     int
	CurveWidth     float64
	AxisWidth      float64
	Theme          Theme

	Logger   *slog.Logger
	Observer Observer
}

// Observer receives per-frame statistics, e.g. for metrics.
type Observer interface {
	ObserveFrame(FrameStats)
}

// FrameStats describes one call to Frame.
type FrameStats struct {
	Plots       int
	Drawn       int
	Invalid     int
	Samples     int
	Evicted     int
	GridStep    float64
	GridChanged bool
	Cache       expr.CacheStats
	Duration    time.Duration
}

// Renderer draws frames. It owns the compiled-expression cache and the grid controller and,
// like them, must stay on one goroutine.
type Renderer struct {
	opt   Options
	cache *expr.Cache
	grid  camera.Grid
	log   *slog.Logger
}

func NewRenderer(opt Options) *Renderer {
	if opt.PixelsPerUnit <= 0 {
		opt.PixelsPerUnit = camera.DefaultPixelsPerUnit
	}
	if opt.MajorEvery <= 0 {
		opt.MajorEvery = camera.DefaultMajorEvery
	}
	if opt.SlopeThreshold <= 0 {
		opt.SlopeThreshold = DefaultSlopeThreshold
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = DefaultMaxSamples
	}
	if opt.CurveWidth <= 0 {
		opt.CurveWidth = 2
	}
	if opt.AxisWidth <= 0 {
		opt.AxisWidth = 2
	}
	if opt.Theme == (Theme{}) {
		opt.Theme = DefaultTheme
	}
	log := opt.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Renderer{
		opt:   opt,
		cache: expr.NewCache(),
		grid:  camera.NewGrid(opt.PixelsPerUnit, opt.MajorEvery),
		log:   log,
	}
}

func (r *Renderer) Cache() *expr.Cache { return r.cache }
func (r *Renderer) Grid() camera.Grid   { return r.grid }

// ResetGrid puts the grid back to its initial step, e.g. after a camera reset.
func (r *Renderer) ResetGrid() {
	r.grid = camera.NewGrid(r.opt.PixelsPerUnit, r.opt.MajorEvery)
}

type failure struct {
	p   plot.Plot
	err error
}

// Frame draws the background, grid, axes, every drawable plot and the axis labels.
//
// A plot whose evaluation fails draws nothing; onInvalid is called for it once the frame is
// complete. The grid step is updated once per frame from the camera scale.
func (r *Renderer) Frame(t Target, cam camera.State, plots []plot.Plot, onInvalid func(plot.Plot, error)) FrameStats {
	start := time.Now()

	var changed bool
	r.grid, changed = r.grid.Update(cam.Scale)
	st := FrameStats{Plots: len(plots), GridStep: r.grid.Step, GridChanged: changed}

	tr := cam.Transform()
	view := tr.VisibleWorld()
	c := NewCanvas(t, tr)
	th := r.opt.Theme

	t.Clear(th.Background.RGBA())
	r.drawGrid(c, cam, view)
	c.Line(view.MinX, 0, view.MaxX, 0, cam.StrokeWidth(r.opt.AxisWidth), th.Axes.RGBA())
	c.Line(0, view.MinY, 0, view.MaxY, cam.StrokeWidth(r.opt.AxisWidth), th.Axes.RGBA())

	opt := SampleOptions{
		PixelsPerUnit:  r.opt.PixelsPerUnit,
		Step:           1 * r.grid.Step,
		SlopeThreshold: r.opt.SlopeThreshold,
		MaxSamples:     r.opt.MaxSamples,
	}
	var failed []failure
	for _, p := range plots {
		if !p.Drawable() {
			continue
		}
		trace, err := Sample(r.cache.Get(p.Formula), view, opt)
		st.Samples += trace.Samples
		if err != nil {
			failed = append(failed, failure{p: p, err: err})
			continue
		}
		col := p.Color.RGBA()
		w := cam.StrokeWidth(r.opt.CurveWidth)
		for _, path := range trace.Paths {
			c.Polyline(path.Points, w, col)
		}
		st.Drawn++
	}

	r.drawLabels(t, tr, view)

	st.Evicted = r.cache.Retain(plot.Formulas(plots))
	st.Cache = r.cache.Stats()
	st.Invalid = len(failed)
	st.Duration = time.Since(start)

	for _, f := range failed {
		r.log.Warn("plot invalid", "id", f.p.ID, "formula", f.p.Formula, "error", f.err)
		if onInvalid != nil {
			onInvalid(f.p, f.err)
		}
	}
	r.log.Debug("frame",
		"plots", st.Plots,
		"drawn", st.Drawn,
		"samples", st.Samples,
		"grid_step", st.GridStep,
		"took", st.Duration,
	)
	if r.opt.Observer != nil {
		r.opt.Observer.ObserveFrame(st)
	}
	return st
}

func (r *Renderer) drawGrid(c Canvas, cam camera.State, view camera.Rect) {
	th := r.opt.Theme
	major, minor := th.GridMajor.RGBA(), th.GridMinor.RGBA()
	wMajor := cam.StrokeWidth(r.opt.AxisWidth / 2)
	wMinor := cam.StrokeWidth(r.opt.AxisWidth / 4)

	for _, l := range r.grid.Lines(view.MinX, view.MaxX) {
		if l.Major {
			c.Line(l.Pos, view.MinY, l.Pos, view.MaxY, wMajor, major)
		} else {
			c.Line(l.Pos, view.MinY, l.Pos, view.MaxY, wMinor, minor)
		}
	}
	for _, l := range r.grid.Lines(view.MinY, view.MaxY) {
		if l.Major {
			c.Line(view.MinX, l.Pos, view.MaxX, l.Pos, wMajor, major)
		} else {
			c.Line(view.MinX, l.Pos, view.MaxX, l.Pos, wMinor, minor)
		}
	}
}

const labelPad = 2

// drawLabels writes the value of each major line next to the axes. Labels are clamped into
// the viewport so they stay readable when an axis scrolls off screen; "0" is drawn once, at
// the origin.
func (r *Renderer) drawLabels(t Target, tr camera.Transform, view camera.Rect) {
	col := r.opt.Theme.Text.RGBA()
	w, h := t.Size()
	ox, oy := tr.ToScreen(0, 0)

	for _, l := range r.grid.Lines(view.MinX, view.MaxX) {
		if !l.Major {
			continue
		}
		s := camera.Label(l.Value)
		tw, th := t.TextSize(s)
		sx, _ := tr.ToScreen(l.Pos, 0)
		x := sx - tw - labelPad
		y := oy + labelPad
		if l.Index != 0 {
			y = clamp(y, 0, float64(h)-th)
		}
		t.Text(x, y, s, col)
	}
	for _, l := range r.grid.Lines(view.MinY, view.MaxY) {
		if !l.Major || l.Index == 0 {
			continue
		}
		s := camera.Label(l.Value)
		tw, _ := t.TextSize(s)
		_, sy := tr.ToScreen(0, l.Pos)
		x := clamp(ox-tw-labelPad, 0, float64(w)-tw)
		t.Text(x, sy+labelPad, s, col)
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
