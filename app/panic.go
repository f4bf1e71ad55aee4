package app

import (
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"
)

// ErrPanic wraps a panic recovered while stepping or running a command.
var ErrPanic = errors.New("panic")

// recoverStep turns a panic during Step into an error and paints it on the screen.
func (v *Viewer) recoverStep(err *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := v.logPanic(r)
	v.drawPanic(r, stack)
	*err = fmt.Errorf("%w: %v", ErrPanic, r)
}

func (v *Viewer) logPanic(r any) []string {
	var lines []string
	for _, line := range strings.Split(string(debug.Stack()), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	v.log.Error("panic", "value", fmt.Sprint(r), "stack", strings.Join(lines, "\n"))
	return lines
}

func (v *Viewer) drawPanic(r any, stack []string) {
	t := v.target
	w, h := t.Size()
	charW, lineH := t.TextSize("0")
	if w <= 0 || h <= 0 || lineH <= 0 || charW <= 0 {
		return
	}

	fg := color.RGBA{A: 255}
	t.Clear(color.RGBA{R: 255, G: 255, B: 255, A: 255})

	lines := []string{"etherplot panic:", fmt.Sprintf("panic: %v", r)}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		lines = append(lines, stack...)
	} else {
		lines = append(lines, "stack: unavailable")
	}

	cols := int(float64(w) / charW)
	if cols <= 0 {
		cols = 1
	}
	y := 0.0
	for _, line := range lines {
		for len(line) > 0 {
			if y+lineH > float64(h) {
				_ = t.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			t.Text(0, y, chunk, fg)
			y += lineH
			line = strings.TrimLeft(rest, " \t")
		}
	}
	_ = t.Present()
}

// takeRunes splits s after at most n runes.
func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
