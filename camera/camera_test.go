package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_RoundTrip(t *testing.T) {
	s := New(800, 600, DefaultMaxScale).Panned(30, -12).Zoomed(2.5)
	tr := s.Transform()

	sx, sy := tr.ToScreen(0, 0)
	assert.Equal(t, 430.0, sx)
	assert.Equal(t, 288.0, sy)

	// y up in world space
	_, syUp := tr.ToScreen(0, 10)
	assert.Less(t, syUp, sy)

	for _, p := range [][2]float64{{0, 0}, {12.5, -7}, {-300, 410}} {
		sx, sy := tr.ToScreen(p[0], p[1])
		wx, wy := tr.ToWorld(sx, sy)
		assert.InDelta(t, p[0], wx, 1e-9)
		assert.InDelta(t, p[1], wy, 1e-9)
	}
}

func TestTransform_VisibleWorld(t *testing.T) {
	r := New(200, 100, DefaultMaxScale).Transform().VisibleWorld()
	assert.Equal(t, Rect{MinX: -100, MinY: -50, MaxX: 100, MaxY: 50}, r)

	r = New(200, 100, DefaultMaxScale).Zoomed(2).Panned(100, 0).Transform().VisibleWorld()
	assert.Equal(t, Rect{MinX: -100, MinY: -25, MaxX: 0, MaxY: 25}, r)
	assert.Equal(t, 100.0, r.Width())
	assert.Equal(t, 50.0, r.Height())
}

func TestState_Zoomed(t *testing.T) {
	s := New(10, 10, 30)

	assert.Equal(t, 2.0, s.Zoomed(2).Scale)
	assert.Equal(t, 30.0, s.Zoomed(100).Scale)
	assert.Equal(t, MinScale, s.Zoomed(1e-9).Zoomed(0.5).Scale)
	assert.Equal(t, 1.0, s.Zoomed(0).Scale)
	assert.Equal(t, 1.0, s.Zoomed(-3).Scale)
	assert.Equal(t, 1.0, s.Zoomed(math.NaN()).Scale)
	assert.Equal(t, 1.0, s.Zoomed(math.Inf(1)).Scale)

	// reducers do not mutate the receiver
	_ = s.Zoomed(4).Panned(5, 5)
	assert.Equal(t, New(10, 10, 30), s)
}

func TestState_ResetAndResize(t *testing.T) {
	s := New(10, 10, 30).Panned(4, 4).Zoomed(3).Resized(640, 480)
	assert.Equal(t, 640, s.Width)
	assert.Equal(t, 480, s.Height)

	r := s.Reset()
	assert.Equal(t, New(640, 480, 30), r)

	assert.Equal(t, 0, New(10, 10, 30).Resized(-1, -1).Width)
}

func TestState_StrokeAndTextSize(t *testing.T) {
	s := New(10, 10, 30).Zoomed(4)
	assert.Equal(t, 0.5, s.StrokeWidth(2))
	assert.Equal(t, 3.0, s.TextSize(12))
}

func TestGrid_HysteresisDoublingTwice(t *testing.T) {
	g := NewGrid(DefaultPixelsPerUnit, DefaultMajorEvery)
	s := New(800, 600, DefaultMaxScale)

	changes := 0
	for s.Scale*1.01 <= 4 {
		s = s.Zoomed(1.01)
		var changed bool
		g, changed = g.Update(s.Scale)
		if changed {
			changes++
		}
	}
	require.LessOrEqual(t, changes, 2)
	assert.Equal(t, 1, changes)
	assert.Equal(t, 0.5, g.Step)
}

func TestGrid_IgnoresJitter(t *testing.T) {
	g := NewGrid(DefaultPixelsPerUnit, DefaultMajorEvery)

	g, changed := g.Update(2.1)
	require.True(t, changed)
	require.Equal(t, 0.5, g.Step)

	for i := 0; i < 50; i++ {
		scale := 1.9
		if i%2 == 1 {
			scale = 2.3
		}
		var c bool
		g, c = g.Update(scale)
		if c {
			t.Fatalf("Update(%v) changed step at iteration %d", scale, i)
		}
	}
	assert.Equal(t, 0.5, g.Step)
}

func TestGrid_ZoomOutDoublesStep(t *testing.T) {
	g := NewGrid(DefaultPixelsPerUnit, DefaultMajorEvery)
	g, changed := g.Update(0.4)
	require.True(t, changed)
	assert.Equal(t, 2.0, g.Step)
	assert.Equal(t, 0.4, g.Baseline)
	assert.Equal(t, 200.0, g.Spacing())
}

func TestGrid_Lines(t *testing.T) {
	g := NewGrid(100, 5)
	lines := g.Lines(-250, 620)
	require.Len(t, lines, 9)
	assert.Equal(t, -200.0, lines[0].Pos)
	assert.Equal(t, -2.0, lines[0].Value)
	assert.Equal(t, 600.0, lines[8].Pos)

	for _, l := range lines {
		want := l.Index%5 == 0
		if l.Major != want {
			t.Fatalf("line %v major=%v, want %v", l.Pos, l.Major, want)
		}
	}
	assert.True(t, lines[2].Major) // origin

	assert.Nil(t, g.Lines(5, 5))
	assert.Nil(t, g.Lines(0, math.Inf(1)))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: 3, want: "3"},
		{in: -12, want: "-12"},
		{in: 0.5, want: "0.5"},
		{in: 0.25, want: "0.25"},
		{in: 0.125, want: "1.25e-01"},
		{in: 2097152, want: "2.10e+06"},
		{in: math.NaN(), want: ""},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Fatalf("Label(%v) got=%q, want %q", tt.in, got, tt.want)
		}
	}
}
