package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"etherplot/hal"
)

// New creates the application logger. Records go to sink one line each.
// It standardizes common keys (e.g., "error" -> "err").
func New(sink hal.Logger, level slog.Level, json bool) *slog.Logger {
	w := &lineWriter{sink: sink}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// UseJSON resolves a format name. "auto" picks text for terminals and JSON otherwise.
func UseJSON(format string, fd uintptr) (bool, error) {
	switch strings.ToLower(format) {
	case "", "auto":
		return !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)), nil
	case "text":
		return false, nil
	case "json":
		return true, nil
	}
	return false, fmt.Errorf("unknown log format %q", format)
}

// lineWriter adapts a line sink to io.Writer. Handlers write whole records, but partial
// writes are buffered until a newline arrives.
type lineWriter struct {
	mu   sync.Mutex
	sink hal.Logger
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if w.sink != nil {
			w.sink.WriteLineBytes(w.buf[:i])
		}
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) == 0 {
		w.buf = nil
	}
	return len(p), nil
}
