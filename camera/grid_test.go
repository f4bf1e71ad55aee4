package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linesWithin runs g.Lines and fails the test if it does not return in time.
func linesWithin(t *testing.T, g Grid, lo, hi float64) []Line {
	t.Helper()
	done := make(chan []Line, 1)
	go func() { done <- g.Lines(lo, hi) }()
	select {
	case lines := <-done:
		return lines
	case <-time.After(2 * time.Second):
		t.Fatalf("Lines(%g, %g) did not return", lo, hi)
		return nil
	}
}

func TestGrid_LinesFarFromOrigin(t *testing.T) {
	g := NewGrid(DefaultPixelsPerUnit, DefaultMajorEvery)
	g, changed := g.Update(0.4)
	require.True(t, changed)

	assert.Nil(t, linesWithin(t, g, 6e22, 1.4e23))
	assert.Nil(t, linesWithin(t, g, -1.4e23, -6e22))

	// still drawn well inside float64 precision
	lines := linesWithin(t, g, 1e12, 1e12+1000)
	require.NotEmpty(t, lines)
	assert.GreaterOrEqual(t, lines[0].Pos, 1e12)
}

func TestGrid_LinesAfterExtremeZoomOut(t *testing.T) {
	s := New(800, 600, DefaultMaxScale).Zoomed(1e-20)
	assert.Equal(t, MinScale, s.Scale)

	g := NewGrid(DefaultPixelsPerUnit, DefaultMajorEvery)
	for _, s := range []State{s.Panned(-1000, 0), s.Panned(-1e20, 3e19)} {
		g, _ = g.Update(s.Scale)
		view := s.Transform().VisibleWorld()
		lines := linesWithin(t, g, view.MinX, view.MaxX)
		assert.LessOrEqual(t, len(lines), maxLines)
		linesWithin(t, g, view.MinY, view.MaxY)
	}
}
