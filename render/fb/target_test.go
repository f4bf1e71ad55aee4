package fb

import (
	"image/color"
	"testing"

	"etherplot/camera"
	"etherplot/hal"
	"etherplot/plot"
	"etherplot/render"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func isWhite(fb *hal.MemFramebuffer, x, y int) bool {
	c := fb.Image().RGBAAt(x, y)
	return c.R == 255 && c.G == 255 && c.B == 255
}

func TestTarget_HorizontalLine(t *testing.T) {
	fb := hal.NewFramebuffer(20, 10)
	tg := New(fb)
	tg.Clear(color.RGBA{A: 255})
	tg.Line(2, 5, 17, 5, 1, white)

	for x := 2; x <= 17; x++ {
		if !isWhite(fb, x, 5) {
			t.Fatalf("pixel (%d,5) not set", x)
		}
	}
	if isWhite(fb, 1, 5) || isWhite(fb, 18, 5) || isWhite(fb, 5, 4) {
		t.Fatalf("line drawn past its ends")
	}
}

func TestTarget_ThickLine(t *testing.T) {
	fb := hal.NewFramebuffer(20, 10)
	tg := New(fb)
	tg.Line(10, 0, 10, 9, 3, white)
	for _, x := range []int{9, 10, 11} {
		if !isWhite(fb, x, 4) {
			t.Fatalf("pixel (%d,4) not set for width 3", x)
		}
	}
	if isWhite(fb, 8, 4) || isWhite(fb, 12, 4) {
		t.Fatalf("width 3 line too wide")
	}
}

func TestTarget_ClipsFarLines(t *testing.T) {
	fb := hal.NewFramebuffer(20, 10)
	tg := New(fb)
	tg.Line(-1e9, 5, 1e9, 5, 1, white)
	if !isWhite(fb, 0, 5) || !isWhite(fb, 19, 5) {
		t.Fatalf("clipped line missing at the edges")
	}

	// fully outside: nothing drawn, no panic
	fb.ClearRGB(0, 0, 0)
	tg.Line(-50, -50, -10, -10, 1, white)
	img := fb.Image()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("pixel set by an off-screen line")
		}
	}
}

func TestTarget_Text(t *testing.T) {
	fb := hal.NewFramebuffer(40, 12)
	tg := New(fb)

	w, h := tg.TextSize("12")
	if w <= 0 || h != 6 {
		t.Fatalf("TextSize=%vx%v", w, h)
	}

	tg.Text(1, 1, "8", white)
	img := fb.Image()
	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatalf("text drew no pixels")
	}
}

func TestTarget_RendererFrame(t *testing.T) {
	fb := hal.NewFramebuffer(200, 100)
	tg := New(fb)
	r := render.NewRenderer(render.Options{})
	cam := camera.New(200, 100, camera.DefaultMaxScale)

	red := plot.Color{R: 255}
	st := r.Frame(tg, cam, []plot.Plot{{ID: 1, Formula: "0", Color: red, Visible: true, Valid: true}}, nil)
	if st.Drawn != 1 {
		t.Fatalf("drawn=%d", st.Drawn)
	}
	// y = 0 lies on the x axis, drawn over it in the plot color
	c := fb.Image().RGBAAt(150, 50)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("curve pixel=%v, want red", c)
	}
	if err := tg.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
}
