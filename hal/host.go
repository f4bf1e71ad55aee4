package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// HostConfig sizes the host HAL.
type HostConfig struct {
	Width  int
	Height int
	// Log receives log lines; stderr when nil.
	Log io.Writer
	// Logger is a sink shared with the caller. It takes precedence over Log.
	Logger Logger
}

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Host  HostConfig
	Title string
	TPS   int
}

type hostHAL struct {
	logger   Logger
	fb       *MemFramebuffer
	gestures *gestureQueue
}

// New returns a host HAL implementation.
func New(cfg HostConfig) HAL {
	return newHost(cfg)
}

func newHost(cfg HostConfig) *hostHAL {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	logger := cfg.Logger
	if logger == nil {
		w := cfg.Log
		if w == nil {
			w = os.Stderr
		}
		logger = &hostLogger{w: w}
	}
	return &hostHAL{
		logger:   logger,
		fb:       NewFramebuffer(cfg.Width, cfg.Height),
		gestures: newGestureQueue(256),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return h.gestures }

type hostDisplay struct {
	fb *MemFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// NewLogger returns a line sink over w.
func NewLogger(w io.Writer) Logger {
	return &hostLogger{w: w}
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := make([]byte, len(b)+1)
	copy(line, b)
	line[len(b)] = '\n'
	l.w.Write(line)
}
