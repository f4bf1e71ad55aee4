package fb

import (
	"image/color"

	"etherplot/hal"

	"tinygo.org/x/drivers"
)

// display adapts an RGB565 hal.Framebuffer to drivers.Displayer so tinyfont can draw on it.
type display struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*display)(nil)

func (d *display) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *display) SetPixel(x, y int16, c color.RGBA) {
	d.set(int(x), int(y), c)
}

func (d *display) set(ix, iy int, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	hal.PutRGB565(buf, iy*d.fb.StrideBytes()+ix*2, hal.RGB565(c))
}

func (d *display) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *display) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return nil
	}

	w := d.fb.Width()
	h := d.fb.Height()
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := hal.RGB565(c)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			hal.PutRGB565(buf, row+px*2, pixel)
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
