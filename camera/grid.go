package camera

import (
	"math"
	"strconv"
	"strings"
)

// maxLines bounds Lines for degenerate ranges.
const maxLines = 4096

// maxCell is the largest cell index Lines walks; beyond 2^53 consecutive indices are no longer
// distinct float64 values.
const maxCell = 1 << 53

// Grid tracks the grid step multiplier with hysteresis against the camera scale.
type Grid struct {
	// Step is a power of two.
	Step float64
	// Baseline is the scale recorded at the last Step change.
	Baseline float64

	PixelsPerUnit float64
	MajorEvery    int
}

func NewGrid(pixelsPerUnit float64, majorEvery int) Grid {
	if pixelsPerUnit <= 0 {
		pixelsPerUnit = DefaultPixelsPerUnit
	}
	if majorEvery <= 0 {
		majorEvery = DefaultMajorEvery
	}
	return Grid{Step: 1, Baseline: 1, PixelsPerUnit: pixelsPerUnit, MajorEvery: majorEvery}
}

// Update returns the grid adjusted for scale and whether Step changed. Step halves once the
// on-screen cell has doubled since Baseline and doubles once it has halved, so small zoom
// jitter never flips it.
func (g Grid) Update(scale float64) (Grid, bool) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return g, false
	}
	cell := g.PixelsPerUnit * g.Step
	prev := cell * g.Baseline
	cur := cell * scale
	zoomedIn := g.Baseline < scale

	switch {
	case zoomedIn && prev*2 < cur:
		g.Step /= 2
		g.Baseline = scale
		return g, true
	case !zoomedIn && prev/2 > cur:
		g.Step *= 2
		g.Baseline = scale
		return g, true
	}
	return g, false
}

// Spacing is the distance between grid lines in world pixels.
func (g Grid) Spacing() float64 { return g.PixelsPerUnit * g.Step }

// Line is one grid line.
type Line struct {
	// Pos is the world pixel coordinate.
	Pos float64
	// Value is the mathematical coordinate.
	Value float64
	// Index counts cells from the origin.
	Index int64
	Major bool
}

// Lines lists the grid lines in [lo, hi) along one axis, given in world pixels.
func (g Grid) Lines(lo, hi float64) []Line {
	sp := g.Spacing()
	if sp <= 0 || !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	major := int64(g.MajorEvery)
	if major <= 0 {
		major = DefaultMajorEvery
	}

	if math.Abs(lo/sp) > maxCell || math.Abs(hi/sp) > maxCell {
		return nil
	}

	first := int64(math.Floor(lo / sp))
	var out []Line
	for k := first; float64(k)*sp < hi && len(out) < maxLines; k++ {
		pos := float64(k) * sp
		if pos < lo {
			continue
		}
		out = append(out, Line{
			Pos:   pos,
			Value: pos / g.PixelsPerUnit,
			Index: k,
			Major: k%major == 0,
		})
	}
	return out
}

// Label formats a grid coordinate: integers without a fraction, up to two decimals as is,
// anything finer or very large in exponent form.
func Label(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if math.Abs(v) < 1e-12 {
		return "0"
	}
	av := math.Abs(v)
	if av >= 1e6 {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= 2 {
		return s
	}
	return strconv.FormatFloat(v, 'e', 2, 64)
}
