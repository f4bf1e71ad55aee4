package camera

import "math"

const (
	// DefaultPixelsPerUnit maps one mathematical unit to world pixels at scale 1.
	DefaultPixelsPerUnit = 100.0
	// DefaultMaxScale bounds zooming in; beyond it labels shrink below legibility.
	DefaultMaxScale = 30.0
	// MinScale bounds zooming out.
	MinScale = 1e-6
	// DefaultMajorEvery is the number of grid cells between labeled lines.
	DefaultMajorEvery = 5
)

// Vec is a 2D vector in pixels.
type Vec struct {
	X float64
	Y float64
}

// Rect is an axis aligned rectangle with MinY below MaxY.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// State is the camera: accumulated pan, accumulated scale and the viewport it looks through.
//
// State is a value; the reducer methods return an updated copy.
type State struct {
	Pan      Vec
	Scale    float64
	Width    int
	Height   int
	MaxScale float64
}

// New returns an unpanned, unzoomed camera for a w x h viewport.
func New(w, h int, maxScale float64) State {
	if maxScale <= 0 || math.IsNaN(maxScale) || math.IsInf(maxScale, 0) {
		maxScale = DefaultMaxScale
	}
	return State{Scale: 1, Width: w, Height: h, MaxScale: maxScale}
}

// Panned adds a pan delta in screen pixels.
func (s State) Panned(dx, dy float64) State {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return s
	}
	s.Pan.X += dx
	s.Pan.Y += dy
	return s
}

// Zoomed multiplies the scale by factor, clamped to [MinScale, MaxScale]. Non-positive and
// non-finite factors leave the state unchanged.
func (s State) Zoomed(factor float64) State {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return s
	}
	next := s.Scale * factor
	if s.MaxScale > 0 && next > s.MaxScale {
		next = s.MaxScale
	}
	if next < MinScale {
		next = MinScale
	}
	if next <= 0 || math.IsInf(next, 0) {
		return s
	}
	s.Scale = next
	return s
}

// Resized updates the viewport; the origin stays centered.
func (s State) Resized(w, h int) State {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.Width = w
	s.Height = h
	return s
}

// Reset drops pan and zoom and keeps the viewport.
func (s State) Reset() State {
	return New(s.Width, s.Height, s.MaxScale)
}

// StrokeWidth converts an on-screen width to world units.
func (s State) StrokeWidth(base float64) float64 { return base / s.Scale }

// TextSize converts an on-screen text size to world units.
func (s State) TextSize(base float64) float64 { return base / s.Scale }

// Transform composes pan, orientation and scale for drawing.
func (s State) Transform() Transform {
	return Transform{
		OffsetX: s.Pan.X + float64(s.Width)/2,
		OffsetY: s.Pan.Y + float64(s.Height)/2,
		Scale:   s.Scale,
		Width:   s.Width,
		Height:  s.Height,
	}
}

// Transform maps world pixels (y up, origin at the world origin) to screen pixels
// (y down, origin top-left).
type Transform struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
	Width   int
	Height  int
}

func (t Transform) ToScreen(wx, wy float64) (sx, sy float64) {
	return t.OffsetX + t.Scale*wx, t.OffsetY - t.Scale*wy
}

func (t Transform) ToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - t.OffsetX) / t.Scale, (t.OffsetY - sy) / t.Scale
}

// VisibleWorld returns the world rectangle covered by the viewport.
func (t Transform) VisibleWorld() Rect {
	x0, yTop := t.ToWorld(0, 0)
	x1, yBottom := t.ToWorld(float64(t.Width), float64(t.Height))
	return Rect{MinX: x0, MinY: yBottom, MaxX: x1, MaxY: yTop}
}
