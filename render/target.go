package render

import (
	"image/color"

	"etherplot/camera"
)

// Target is a screen-space drawing surface. Coordinates are pixels with y down; lines may
// extend past the surface and are clipped by the implementation.
type Target interface {
	Size() (w, h int)
	Clear(c color.RGBA)
	Line(x0, y0, x1, y1, width float64, c color.RGBA)
	// Text draws s with its top-left corner at (x, y).
	Text(x, y float64, s string, c color.RGBA)
	TextSize(s string) (w, h float64)
}

// Canvas draws world-space primitives onto a Target through a camera transform.
type Canvas struct {
	t  Target
	tr camera.Transform
}

func NewCanvas(t Target, tr camera.Transform) Canvas {
	return Canvas{t: t, tr: tr}
}

func (c Canvas) Transform() camera.Transform { return c.tr }

// Line draws a world-space segment. width is in world units.
func (c Canvas) Line(wx0, wy0, wx1, wy1, width float64, col color.RGBA) {
	x0, y0 := c.tr.ToScreen(wx0, wy0)
	x1, y1 := c.tr.ToScreen(wx1, wy1)
	c.t.Line(x0, y0, x1, y1, width*c.tr.Scale, col)
}

// Polyline draws consecutive world-space points.
func (c Canvas) Polyline(pts []camera.Vec, width float64, col color.RGBA) {
	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width, col)
	}
}
