// Package app wires the plot list, camera, renderer and store to a HAL and drives them one
// step per tick.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"etherplot/camera"
	"etherplot/hal"
	"etherplot/internal/config"
	"etherplot/internal/logging"
	"etherplot/plot"
	"etherplot/render"
	"etherplot/render/fb"
)

// ErrClosed is returned by Do once the viewer has been closed.
var ErrClosed = errors.New("viewer closed")

const storeTimeout = 2 * time.Second

// Options configures a Viewer. Zero values fall back to config.Default and a memory store.
type Options struct {
	Config config.Config
	Store  plot.Store
	// Logger overrides the logger New builds over the HAL's line sink with LogLevel and LogJSON.
	Logger   *slog.Logger
	LogLevel slog.Level
	LogJSON  bool
	Observer render.Observer
	// OnStoreError is called after a failed store operation ("load" or "sync").
	OnStoreError func(op string, err error)
	Rand         *rand.Rand
}

// Snapshot is a copy of the viewer state taken after the last step.
type Snapshot struct {
	Plots  []plot.Plot       `json:"plots"`
	Camera camera.State      `json:"camera"`
	Grid   camera.Grid       `json:"grid"`
	Frame  render.FrameStats `json:"frame"`
	Frames uint64            `json:"frames"`
}

type command struct {
	fn    func(*Session) error
	reply chan error
}

// Viewer owns the plotter state. Step must be called from a single goroutine; Do, Snapshot and
// the plot helpers may be called from any goroutine.
type Viewer struct {
	ctx      context.Context
	fb       hal.Framebuffer
	target   *fb.Target
	gestures <-chan hal.GestureEvent
	renderer *render.Renderer
	store    plot.Store
	log      *slog.Logger
	onStore  func(string, error)
	loadLim  int

	cam    camera.State
	list   *plot.List
	saved  []plot.Plot
	dirty  bool
	frames uint64
	last   render.FrameStats

	cmds      chan command
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.RWMutex
	snap Snapshot
}

// New restores the plot list from the store, or seeds it from the configured formulas when
// the store is empty.
func New(ctx context.Context, h hal.HAL, opt Options) (*Viewer, error) {
	cfg := opt.Config
	if cfg.Window.Width == 0 {
		cfg = config.Default()
	}
	if opt.Store == nil {
		opt.Store = plot.NewMemStore()
	}
	if opt.Logger == nil {
		if sink := h.Logger(); sink != nil {
			opt.Logger = logging.New(sink, opt.LogLevel, opt.LogJSON)
		} else {
			opt.Logger = logging.NewNop()
		}
	}
	if opt.Rand == nil {
		opt.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, errors.New("app: display has no framebuffer")
	}
	frame := disp.Framebuffer()

	v := &Viewer{
		ctx:      ctx,
		fb:       frame,
		target:   fb.New(frame),
		renderer: render.NewRenderer(RenderOptions(cfg, opt.Logger, opt.Observer)),
		store:    opt.Store,
		log:      opt.Logger,
		onStore:  opt.OnStoreError,
		loadLim:  cfg.Store.LoadLimit,
		cam:      camera.New(frame.Width(), frame.Height(), cfg.Camera.MaxScale),
		dirty:    true,
		cmds:     make(chan command, 64),
		done:     make(chan struct{}),
	}
	if in := h.Input(); in != nil {
		v.gestures = in.Gestures()
	}

	loaded, err := v.load()
	if err != nil {
		return nil, err
	}
	v.list = plot.NewList(loaded, opt.Rand)
	v.saved = v.list.Plots()
	if len(loaded) == 0 {
		defaults := plot.Defaults()
		for i, f := range cfg.Plots {
			if i < len(defaults) {
				v.list.AddColored(f, defaults[i].Color)
			} else {
				v.list.Add(f)
			}
		}
	}
	v.publish()
	return v, nil
}

// RenderOptions maps the configuration onto renderer options.
func RenderOptions(cfg config.Config, log *slog.Logger, obs render.Observer) render.Options {
	return render.Options{
		PixelsPerUnit:  cfg.Camera.PixelsPerUnit,
		MajorEvery:     cfg.Grid.MajorEvery,
		SlopeThreshold: cfg.Curve.SlopeThreshold,
		MaxSamples:     cfg.Curve.MaxSamples,
		CurveWidth:     cfg.Curve.Width,
		AxisWidth:      cfg.Grid.AxisWidth,
		Theme: render.Theme{
			Background: cfg.Theme.Background,
			Axes:       cfg.Theme.Axes,
			GridMajor:  cfg.Theme.GridMajor,
			GridMinor:  cfg.Theme.GridMinor,
			Text:       cfg.Theme.Text,
		},
		Logger:   log,
		Observer: obs,
	}
}

// Factory adapts New to the HAL runners.
func Factory(ctx context.Context, opt Options, ready func(*Viewer)) func(hal.HAL) (func() error, error) {
	return func(h hal.HAL) (func() error, error) {
		v, err := New(ctx, h, opt)
		if err != nil {
			return nil, err
		}
		if ready != nil {
			ready(v)
		}
		return v.Step, nil
	}
}

func (v *Viewer) load() ([]plot.Plot, error) {
	ctx, cancel := context.WithTimeout(v.ctx, storeTimeout)
	defer cancel()
	plots, err := v.store.Load(ctx, v.loadLim)
	if err != nil {
		v.storeFailed("load", err)
		return nil, fmt.Errorf("load plots: %w", err)
	}
	return plots, nil
}

// Step applies pending gestures and commands, redraws when something changed and persists
// plot changes.
func (v *Viewer) Step() (err error) {
	select {
	case <-v.done:
		return hal.ErrQuit
	default:
	}
	defer v.recoverStep(&err)

	v.drainGestures()
	v.drainCommands()

	if v.dirty {
		v.dirty = false
		v.last = v.renderer.Frame(v.target, v.cam, v.list.Plots(), func(p plot.Plot, _ error) {
			_, _ = v.list.SetValid(p.ID, false)
		})
		v.frames++
		if err := v.target.Present(); err != nil {
			return fmt.Errorf("present: %w", err)
		}
	}

	v.persist()
	v.publish()
	return nil
}

func (v *Viewer) drainGestures() {
	for {
		select {
		case ev := <-v.gestures:
			v.apply(ev)
		default:
			return
		}
	}
}

func (v *Viewer) apply(ev hal.GestureEvent) {
	prev := v.cam
	switch ev.Kind {
	case hal.GesturePan:
		v.cam = v.cam.Panned(ev.DX, ev.DY)
	case hal.GestureZoom:
		v.cam = v.cam.Zoomed(ev.Factor)
	case hal.GestureResize:
		if r, ok := v.fb.(hal.Resizer); ok {
			r.Resize(ev.W, ev.H)
		}
		v.cam = v.cam.Resized(v.fb.Width(), v.fb.Height())
		v.dirty = true
	case hal.GestureReset:
		v.resetView()
	default:
		return
	}
	if v.cam != prev {
		v.dirty = true
	}
	v.log.Debug("gesture", "kind", ev.Kind.String(), "scale", v.cam.Scale)
}

func (v *Viewer) resetView() {
	v.cam = v.cam.Reset()
	v.renderer.ResetGrid()
	v.dirty = true
}

func (v *Viewer) drainCommands() {
	for {
		select {
		case c := <-v.cmds:
			c.reply <- v.run(c.fn)
		default:
			return
		}
	}
}

func (v *Viewer) run(fn func(*Session) error) (err error) {
	before := v.list.Plots()
	cam := v.cam
	defer func() {
		if r := recover(); r != nil {
			v.logPanic(r)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if v.cam != cam || !plot.Diff(before, v.list.Plots()).Empty() {
			v.dirty = true
		}
	}()
	return fn(&Session{v: v})
}

func (v *Viewer) persist() {
	cur := v.list.Plots()
	changes := plot.Diff(v.saved, cur)
	if changes.Empty() {
		return
	}
	v.saved = cur

	ctx, cancel := context.WithTimeout(v.ctx, storeTimeout)
	defer cancel()
	if err := plot.Sync(ctx, v.store, changes); err != nil {
		v.storeFailed("sync", err)
		return
	}
	v.log.Debug("plots saved",
		"added", len(changes.Added),
		"changed", len(changes.Changed),
		"removed", len(changes.Removed),
	)
}

func (v *Viewer) storeFailed(op string, err error) {
	v.log.Error("plot store failed", "op", op, "error", err)
	if v.onStore != nil {
		v.onStore(op, err)
	}
}

func (v *Viewer) publish() {
	s := Snapshot{
		Plots:  v.list.Plots(),
		Camera: v.cam,
		Grid:   v.renderer.Grid(),
		Frame:  v.last,
		Frames: v.frames,
	}
	v.mu.Lock()
	v.snap = s
	v.mu.Unlock()
}

// Snapshot returns the state published by the last step.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.snap
	s.Plots = append([]plot.Plot(nil), s.Plots...)
	return s
}

// Invalidate forces a redraw on the next step.
func (v *Viewer) Invalidate() error {
	return v.Do(context.Background(), func(s *Session) error {
		s.Redraw()
		return nil
	})
}

// Do runs fn on the stepping goroutine during the next step and waits for its result.
func (v *Viewer) Do(ctx context.Context, fn func(*Session) error) error {
	c := command{fn: fn, reply: make(chan error, 1)}
	select {
	case v.cmds <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-v.done:
		return ErrClosed
	}
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-v.done:
		return ErrClosed
	}
}

// Close stops the viewer; the next Step returns hal.ErrQuit. The store is left open.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() { close(v.done) })
}
