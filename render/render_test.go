package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etherplot/camera"
	"etherplot/expr"
	"etherplot/plot"
)

type recLine struct {
	x0, y0, x1, y1, w float64
	c                 color.RGBA
}

type recText struct {
	x, y float64
	s    string
}

type recTarget struct {
	w, h   int
	clears int
	lines  []recLine
	texts  []recText
}

func (r *recTarget) Size() (int, int)    { return r.w, r.h }
func (r *recTarget) Clear(c color.RGBA) { r.clears++ }
func (r *recTarget) Line(x0, y0, x1, y1, w float64, c color.RGBA) {
	r.lines = append(r.lines, recLine{x0, y0, x1, y1, w, c})
}
func (r *recTarget) Text(x, y float64, s string, c color.RGBA) {
	r.texts = append(r.texts, recText{x, y, s})
}
func (r *recTarget) TextSize(s string) (float64, float64) { return float64(4 * len(s)), 6 }

func (r *recTarget) linesOf(c color.RGBA) int {
	n := 0
	for _, l := range r.lines {
		if l.c == c {
			n++
		}
	}
	return n
}

var unitView = camera.Rect{MinX: 0, MinY: -50, MaxX: 2, MaxY: 50}

func sampleUnit(t *testing.T, formula string) Trace {
	t.Helper()
	ex := expr.Compile(formula)
	require.True(t, ex.Valid(), "%q: %v", formula, ex.Err())
	tr, err := Sample(ex, unitView, SampleOptions{PixelsPerUnit: 1, Step: 1})
	require.NoError(t, err)
	return tr
}

func TestSample_SkipsIntervalOnSlopeSignFlip(t *testing.T) {
	// y: 0, 2000, 0, -6000 at x = 0..3
	tr := sampleUnit(t, "2000*x*(2-x)")

	for _, p := range tr.Paths {
		require.NotEqual(t, PathCurve, p.Kind)
		for _, pt := range p.Points {
			if pt.X < 1 {
				t.Fatalf("path %v touches the skipped interval [0,1): %+v", p.Kind, p.Points)
			}
		}
	}
	// the following interval keeps its slope sign and becomes an asymptote
	require.Len(t, tr.Paths, 1)
	assert.Equal(t, PathAsymptote, tr.Paths[0].Kind)
}

func TestSample_VerticalAsymptoteEndsAtEdge(t *testing.T) {
	tests := []struct {
		formula string
		edge    float64
	}{
		// slope 2000, next 14000: rising faster, ends at the top
		{formula: "2000*x^3", edge: unitView.MaxY},
		// slope -2000, next -14000: ends at the bottom
		{formula: "-2000*x^3", edge: unitView.MinY},
	}
	for _, tt := range tests {
		tr := sampleUnit(t, tt.formula)
		var asym []Path
		for _, p := range tr.Paths {
			if p.Kind == PathAsymptote {
				asym = append(asym, p)
			}
		}
		require.NotEmpty(t, asym, tt.formula)
		first := asym[0]
		require.Len(t, first.Points, 2)
		assert.Equal(t, 0.0, first.Points[0].X, tt.formula)
		assert.Equal(t, first.Points[0].X, first.Points[1].X, tt.formula)
		assert.Equal(t, tt.edge, first.Points[1].Y, tt.formula)
	}

	cam := camera.New(200, 100, camera.DefaultMaxScale)
	view := cam.Transform().VisibleWorld()
	_, top := cam.Transform().ToScreen(0, view.MaxY)
	_, bottom := cam.Transform().ToScreen(0, view.MinY)
	assert.Equal(t, 0.0, top)
	assert.Equal(t, 100.0, bottom)
}

func TestSample_SmoothCurveIsOnePolyline(t *testing.T) {
	ex := expr.Compile("x^2")
	view := camera.Rect{MinX: -300, MinY: -300, MaxX: 300, MaxY: 300}
	tr, err := Sample(ex, view, SampleOptions{PixelsPerUnit: 100, Step: 1})
	require.NoError(t, err)
	require.Len(t, tr.Paths, 1)
	p := tr.Paths[0]
	assert.Equal(t, PathCurve, p.Kind)
	assert.Equal(t, -300.0, p.Points[0].X)
	assert.Equal(t, 601, len(p.Points))
	assert.Equal(t, 900.0, p.Points[0].Y)
}

func TestSample_NonFiniteBreaksCurve(t *testing.T) {
	ex := expr.Compile("sqrt(x)")
	tr, err := Sample(ex, camera.Rect{MinX: -5, MinY: -10, MaxX: 5, MaxY: 10}, SampleOptions{PixelsPerUnit: 1, Step: 1})
	require.NoError(t, err)
	require.Len(t, tr.Paths, 1)
	assert.Equal(t, 0.0, tr.Paths[0].Points[0].X)
}

func TestSample_Domain(t *testing.T) {
	view := camera.Rect{MinX: -500, MinY: -500, MaxX: 500, MaxY: 500}
	tr, err := Sample(expr.Compile("x, [0; 1]"), view, SampleOptions{PixelsPerUnit: 100, Step: 1})
	require.NoError(t, err)
	require.Len(t, tr.Paths, 1)
	pts := tr.Paths[0].Points
	assert.Equal(t, 0.0, pts[0].X)
	assert.Equal(t, 100.0, pts[len(pts)-1].X)

	tr, err = Sample(expr.Compile("x, [1; -1]"), view, SampleOptions{})
	require.NoError(t, err)
	assert.Empty(t, tr.Paths)
	assert.Zero(t, tr.Samples)
}

func TestSample_MaxSamples(t *testing.T) {
	view := camera.Rect{MinX: 0, MinY: -1, MaxX: 10000, MaxY: 1}
	tr, err := Sample(expr.Compile("0"), view, SampleOptions{PixelsPerUnit: 1, Step: 1, MaxSamples: 100})
	require.NoError(t, err)
	assert.LessOrEqual(t, tr.Samples, 100+2)
}

func TestSample_EvaluatesEachColumnOnce(t *testing.T) {
	view := camera.Rect{MinX: 0, MinY: -100, MaxX: 10, MaxY: 100}
	tr, err := Sample(expr.Compile("x"), view, SampleOptions{PixelsPerUnit: 1, Step: 1})
	require.NoError(t, err)
	// ten intervals plus the two lookahead columns past the last one
	assert.Equal(t, 12, tr.Samples)
	require.Len(t, tr.Paths, 1)
	assert.Len(t, tr.Paths[0].Points, 11)
}

func TestSample_Errors(t *testing.T) {
	_, err := Sample(expr.Compile("y"), unitView, SampleOptions{})
	assert.ErrorIs(t, err, expr.ErrInvalidExpression)

	_, err = Sample(expr.Compile("3+"), unitView, SampleOptions{})
	assert.ErrorIs(t, err, expr.ErrInvalidExpression)

	_, err = Sample(expr.Compile(") 5 + 3"), unitView, SampleOptions{})
	assert.ErrorIs(t, err, expr.ErrInvalidExpression)
}

// A NaN first sample is a value, not a failure: the curve starts where the function is defined.
func TestSample_NaNFirstSampleIsNotInvalid(t *testing.T) {
	view := camera.Rect{MinX: -100, MinY: -1000, MaxX: 100, MaxY: 1000}
	for _, formula := range []string{"sqrt(x)", "ln(x)"} {
		tr, err := Sample(expr.Compile(formula), view, SampleOptions{PixelsPerUnit: 1, Step: 1})
		require.NoError(t, err, formula)
		require.NotEmpty(t, tr.Paths, formula)
		for _, p := range tr.Paths {
			for _, pt := range p.Points {
				if pt.X < 0 {
					t.Fatalf("%s: point %+v left of the domain", formula, pt)
				}
			}
		}
	}

	r := NewRenderer(Options{})
	plots := []plot.Plot{{ID: 1, Formula: "sqrt(x)", Visible: true, Valid: true}}
	st := r.Frame(&recTarget{w: 400, h: 300}, camera.New(400, 300, camera.DefaultMaxScale), plots, func(p plot.Plot, err error) {
		t.Fatalf("plot %d reported invalid: %v", p.ID, err)
	})
	assert.Equal(t, 1, st.Drawn)
	assert.Zero(t, st.Invalid)
}

type countingObserver struct{ frames []FrameStats }

func (o *countingObserver) ObserveFrame(st FrameStats) { o.frames = append(o.frames, st) }

func TestRenderer_Frame(t *testing.T) {
	obs := &countingObserver{}
	r := NewRenderer(Options{Observer: obs})
	target := &recTarget{w: 400, h: 300}
	cam := camera.New(400, 300, camera.DefaultMaxScale)

	good := plot.Color{R: 1, G: 2, B: 3}
	hidden := plot.Color{R: 4, G: 5, B: 6}
	plots := []plot.Plot{
		{ID: 1, Formula: "x^2", Color: good, Visible: true, Valid: true},
		{ID: 2, Formula: "y + 1", Color: good, Visible: true, Valid: true},
		{ID: 3, Formula: "x", Color: hidden, Visible: false, Valid: true},
		{ID: 4, Formula: "(", Color: good, Visible: true, Valid: true},
		{ID: 5, Formula: "x", Color: hidden, Visible: true, Valid: false},
	}

	var invalid []int64
	st := r.Frame(target, cam, plots, func(p plot.Plot, err error) {
		assert.True(t, errors.Is(err, expr.ErrInvalidExpression))
		// labels are drawn last, so the frame is complete
		assert.NotEmpty(t, target.texts)
		invalid = append(invalid, p.ID)
	})

	assert.Equal(t, []int64{2, 4}, invalid)
	assert.Equal(t, 1, target.clears)
	assert.Equal(t, 5, st.Plots)
	assert.Equal(t, 1, st.Drawn)
	assert.Equal(t, 2, st.Invalid)
	assert.Greater(t, target.linesOf(good.RGBA()), 0)
	assert.Equal(t, 0, target.linesOf(hidden.RGBA()))
	assert.Equal(t, 3, r.Cache().Len())
	require.Len(t, obs.frames, 1)

	// the cache drops formulas that left the list
	st = r.Frame(target, cam, plots[:1], nil)
	assert.Equal(t, 2, st.Evicted)
	assert.Equal(t, 1, r.Cache().Len())
}

func TestRenderer_LabelsStayOnScreen(t *testing.T) {
	r := NewRenderer(Options{})
	target := &recTarget{w: 400, h: 300}
	// origin scrolled far off the top-left
	cam := camera.New(400, 300, camera.DefaultMaxScale).Panned(-2000, -2000)
	r.Frame(target, cam, nil, nil)

	require.NotEmpty(t, target.texts)
	for _, tx := range target.texts {
		if tx.s == "0" {
			continue
		}
		w, h := target.TextSize(tx.s)
		inX := tx.x >= -w && tx.x <= 400
		inY := tx.y >= 0 && tx.y <= 300-h+labelPad
		if !inX || !inY {
			t.Fatalf("label %q at (%v,%v) off screen", tx.s, tx.x, tx.y)
		}
	}
}

func TestRenderer_GridStepFollowsZoom(t *testing.T) {
	r := NewRenderer(Options{})
	target := &recTarget{w: 100, h: 100}
	cam := camera.New(100, 100, camera.DefaultMaxScale)

	r.Frame(target, cam.Zoomed(2.5), nil, nil)
	assert.Equal(t, 0.5, r.Grid().Step)

	r.ResetGrid()
	assert.Equal(t, 1.0, r.Grid().Step)
}
