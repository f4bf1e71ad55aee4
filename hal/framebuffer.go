package hal

import (
	"image"
	"image/color"
	"sync"
)

// MemFramebuffer is an in-memory RGB565 framebuffer. The window runner blits it; headless
// runs and tests read it back with Image.
type MemFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func NewFramebuffer(width, height int) *MemFramebuffer {
	f := &MemFramebuffer{}
	f.Resize(width, height)
	return f
}

func (f *MemFramebuffer) Width() int          { return f.width }
func (f *MemFramebuffer) Height() int         { return f.height }
func (f *MemFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *MemFramebuffer) StrideBytes() int    { return f.stride }
func (f *MemFramebuffer) Buffer() []byte      { return f.buf }
func (f *MemFramebuffer) Present() error      { return nil }

func (f *MemFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := RGB565(color.RGBA{R: r, G: g, B: b, A: 0xFF})
	for i := 0; i+1 < len(f.buf); i += 2 {
		PutRGB565(f.buf, i, pixel)
	}
}

// Resize reallocates the buffer. Contents are discarded.
func (f *MemFramebuffer) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if w == f.width && h == f.height {
		return
	}
	f.width = w
	f.height = h
	f.stride = w * 2
	f.buf = make([]byte, f.stride*h)
}

// Snapshot copies the raw buffer into dst and returns the size it was taken at.
func (f *MemFramebuffer) Snapshot(dst []byte) (w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
	return f.width, f.height
}

// Image converts the current contents to RGBA.
func (f *MemFramebuffer) Image() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	rgba565To888(img.Pix, f.buf)
	return img
}

func rgba565To888(dst, src []byte) {
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, g, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = g
		dst[j+2] = b
		dst[j+3] = 0xFF
	}
}
