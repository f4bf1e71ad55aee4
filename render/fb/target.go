package fb

import (
	"image/color"
	"math"

	"etherplot/hal"

	"tinygo.org/x/tinyfont"
)

// maxWidth caps line thickness in pixels.
const maxWidth = 16

// Target draws onto an RGB565 framebuffer. Labels use the TomThumb bitmap font.
type Target struct {
	fb hal.Framebuffer
	d  *display

	font       tinyfont.Fonter
	fontHeight int16
	fontOffset int16
}

func New(fb hal.Framebuffer) *Target {
	return &Target{
		fb:         fb,
		d:          &display{fb: fb},
		font:       &tinyfont.TomThumb,
		fontHeight: 6,
		fontOffset: 5,
	}
}

func (t *Target) Size() (w, h int) {
	if t.fb == nil {
		return 0, 0
	}
	return t.fb.Width(), t.fb.Height()
}

func (t *Target) Clear(c color.RGBA) {
	if t.fb == nil {
		return
	}
	t.fb.ClearRGB(c.R, c.G, c.B)
}

// Present flushes the framebuffer.
func (t *Target) Present() error { return t.d.Display() }

func (t *Target) Line(x0, y0, x1, y1, width float64, c color.RGBA) {
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	for _, v := range [...]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	cx0, cy0, cx1, cy1, ok := clipLineToRect(x0, y0, x1, y1, 0, 0, float64(w-1), float64(h-1))
	if !ok {
		return
	}
	ix0, iy0 := roundInt(cx0), roundInt(cy0)
	ix1, iy1 := roundInt(cx1), roundInt(cy1)

	n := int(math.Round(width))
	if n < 1 {
		n = 1
	}
	if n > maxWidth {
		n = maxWidth
	}
	horizontal := absInt(ix1-ix0) >= absInt(iy1-iy0)
	for k := -(n - 1) / 2; k <= n/2; k++ {
		if horizontal {
			t.drawLine(ix0, iy0+k, ix1, iy1+k, c)
		} else {
			t.drawLine(ix0+k, iy0, ix1+k, iy1, c)
		}
	}
}

func (t *Target) Text(x, y float64, s string, c color.RGBA) {
	if s == "" || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	tinyfont.WriteLine(t.d, t.font, clampInt16(x), clampInt16(y)+t.fontOffset, s, c)
}

func (t *Target) TextSize(s string) (w, h float64) {
	_, outbox := tinyfont.LineWidth(t.font, s)
	return float64(outbox), float64(t.fontHeight)
}

// drawLine is Bresenham over integer pixels.
func (t *Target) drawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.d.set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipLineToRect is Liang-Barsky clipping.
func clipLineToRect(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx := x1 - x0
	dy := y1 - y0
	u1 := 0.0
	u2 := 1.0

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0 - xmin, xmax - x0, y0 - ymin, ymax - y0}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > u2 {
				return 0, 0, 0, 0, false
			}
			if r > u1 {
				u1 = r
			}
		} else {
			if r < u1 {
				return 0, 0, 0, 0, false
			}
			if r < u2 {
				u2 = r
			}
		}
	}

	cx0 = clampF(x0+u1*dx, xmin, xmax)
	cy0 = clampF(y0+u1*dy, ymin, ymax)
	cx1 = clampF(x0+u2*dx, xmin, xmax)
	cy1 = clampF(y0+u2*dy, ymin, ymax)
	return cx0, cy0, cx1, cy1, true
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func clampInt16(v float64) int16 {
	return int16(clampF(math.Round(v), math.MinInt16, math.MaxInt16))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
