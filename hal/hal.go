package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrQuit can be returned by a step function to stop the runner without an error.
var ErrQuit = errors.New("quit")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Resizer is implemented by framebuffers that follow the window size.
type Resizer interface {
	Resize(w, h int)
}

// GestureKind identifies a viewport gesture.
type GestureKind uint8

const (
	GestureUnknown GestureKind = iota
	// GesturePan carries an incremental drag in pixels.
	GesturePan
	// GestureZoom carries a multiplicative scale factor.
	GestureZoom
	// GestureResize carries the new viewport size.
	GestureResize
	// GestureReset asks for the initial camera.
	GestureReset
)

func (k GestureKind) String() string {
	switch k {
	case GesturePan:
		return "pan"
	case GestureZoom:
		return "zoom"
	case GestureResize:
		return "resize"
	case GestureReset:
		return "reset"
	}
	return "unknown"
}

// GestureEvent is one input event for the viewport. Only the fields of its Kind are set.
type GestureEvent struct {
	Kind   GestureKind
	DX, DY float64
	Factor float64
	W, H   int
}

// Pan, Zoom and Resize build events.
func Pan(dx, dy float64) GestureEvent  { return GestureEvent{Kind: GesturePan, DX: dx, DY: dy} }
func Zoom(factor float64) GestureEvent { return GestureEvent{Kind: GestureZoom, Factor: factor} }
func Resize(w, h int) GestureEvent     { return GestureEvent{Kind: GestureResize, W: w, H: h} }

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides viewport gestures (best-effort on each platform).
type Input interface {
	Gestures() <-chan GestureEvent
}

// HAL is the plotter's only contact point with the window system.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
}
