package render

import (
	"math"

	"etherplot/camera"
	"etherplot/expr"
)

const (
	// DefaultSlopeThreshold is the |dy/dx| above which an interval is treated as a jump.
	DefaultSlopeThreshold = 1000.0
	// DefaultMaxSamples bounds the columns sampled per plot per frame.
	DefaultMaxSamples = 8192
)

type PathKind uint8

const (
	// PathCurve is a polyline through consecutive samples.
	PathCurve PathKind = iota + 1
	// PathAsymptote is a vertical segment from a sample to the top or bottom edge.
	PathAsymptote
)

func (k PathKind) String() string {
	switch k {
	case PathCurve:
		return "curve"
	case PathAsymptote:
		return "asymptote"
	}
	return "unknown"
}

// Path is a run of world-pixel points.
type Path struct {
	Kind   PathKind
	Points []camera.Vec
}

// Trace is the sampled shape of one plot for one frame.
type Trace struct {
	Paths []Path
	// Samples counts evaluations.
	Samples int
}

// SampleOptions controls Sample. Zero fields fall back to defaults.
type SampleOptions struct {
	PixelsPerUnit  float64
	Step           float64
	SlopeThreshold float64
	MaxSamples     int
}

func (o SampleOptions) withDefaults() SampleOptions {
	if o.PixelsPerUnit <= 0 {
		o.PixelsPerUnit = camera.DefaultPixelsPerUnit
	}
	if o.Step <= 0 {
		o.Step = 1
	}
	if o.SlopeThreshold <= 0 {
		o.SlopeThreshold = DefaultSlopeThreshold
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	return o
}

// Sample walks ex across the visible world rectangle and returns the paths to draw.
//
// Sampling happens in world pixels: x is divided by the pixels-per-unit constant before
// evaluation and y multiplied by it after. Each interval looks one interval ahead: a slope
// steeper than the threshold whose next slope has the opposite sign is skipped, otherwise it
// becomes a vertical segment to the bottom edge when the slope exceeds the next slope and to
// the top edge when it does not. Non-finite samples break the curve.
//
// An evaluation error aborts sampling; the partial trace must not be drawn.
func Sample(ex *expr.Expr, view camera.Rect, opt SampleOptions) (Trace, error) {
	opt = opt.withDefaults()
	ppu := opt.PixelsPerUnit

	lo, hi := view.MinX, view.MaxX
	if dom, ok := ex.Domain(); ok {
		lo = math.Max(lo, dom.Lower*ppu)
		hi = math.Min(hi, dom.Upper*ppu)
	}

	var tr Trace
	eval := func(wx float64) (float64, error) {
		tr.Samples++
		v, err := ex.EvalAt(wx / ppu)
		return v * ppu, err
	}

	if !ex.Valid() {
		_, err := ex.Eval()
		return tr, err
	}
	if !(lo < hi) {
		return tr, nil
	}

	step := opt.Step
	if n := (hi - lo) / step; n > float64(opt.MaxSamples) {
		step = (hi - lo) / float64(opt.MaxSamples)
	}

	var cur []camera.Vec
	flush := func() {
		if len(cur) >= 2 {
			tr.Paths = append(tr.Paths, Path{Kind: PathCurve, Points: cur})
		}
		cur = nil
	}

	// each column is evaluated once; yAfter becomes yNext of the following interval
	yCur, err := eval(lo)
	if err != nil {
		return tr, err
	}
	yNext, err := eval(lo + step)
	if err != nil {
		return tr, err
	}
	var yAfter float64
	for i := 0; ; i, yCur, yNext = i+1, yNext, yAfter {
		xCur := lo + float64(i)*step
		if xCur >= hi {
			break
		}
		xNext := xCur + step
		if yAfter, err = eval(xNext + step); err != nil {
			return tr, err
		}

		if !finite(yCur) || !finite(yNext) {
			flush()
			continue
		}

		slope := (yNext - yCur) / step
		if math.Abs(slope) > opt.SlopeThreshold {
			flush()
			nextSlope := (yAfter - yNext) / step
			if !(slope*nextSlope < 0) {
				edge := view.MaxY
				if slope > nextSlope {
					edge = view.MinY
				}
				tr.Paths = append(tr.Paths, Path{
					Kind:   PathAsymptote,
					Points: []camera.Vec{{X: xCur, Y: yCur}, {X: xCur, Y: edge}},
				})
			}
			continue
		}

		if len(cur) == 0 {
			cur = append(cur, camera.Vec{X: xCur, Y: yCur})
		}
		cur = append(cur, camera.Vec{X: xNext, Y: yNext})
	}
	flush()
	return tr, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
