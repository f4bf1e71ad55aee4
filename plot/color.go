package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrBadColor = errors.New("bad color")

// Color is an opaque RGB color. It marshals as "#rrggbb".
type Color struct {
	R, G, B uint8
}

var (
	Red   = Color{R: 0xF4, G: 0x43, B: 0x36}
	Blue  = Color{R: 0x21, G: 0x96, B: 0xF3}
	Green = Color{R: 0x4C, G: 0xAF, B: 0x50}
)

// ParseColor accepts "#rgb" and "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// RandomColor picks a saturated, bright color spread around the hue wheel.
func RandomColor(rng *rand.Rand) Color {
	var h, s, v float64
	if rng == nil {
		h, s, v = rand.Float64(), rand.Float64(), rand.Float64()
	} else {
		h, s, v = rng.Float64(), rng.Float64(), rng.Float64()
	}
	c := colorful.Hsv(h*360, 0.8+s*0.2, 0.65+v*0.2)
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (c Color) Hex() string { return c.toColorful().Hex() }

func (c Color) String() string { return c.Hex() }

// RGBA converts to the image/color type used by render targets.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
