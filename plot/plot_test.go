package plot

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etherplot/expr"
)

func TestList_Operations(t *testing.T) {
	l := NewList(Defaults(), rand.New(rand.NewSource(1)))
	require.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"x^2", "x^3", "x^4"}, l.Formulas())

	p := l.Add("sin(x)")
	assert.Equal(t, int64(4), p.ID)
	assert.True(t, p.Visible)
	assert.True(t, p.Valid)

	_, err := l.SetValid(p.ID, false)
	require.NoError(t, err)
	got, err := l.SetFormula(p.ID, "cos(x)")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "cos(x)", got.Formula)
	assert.True(t, got.Valid, "editing the formula revalidates the plot")

	got, err = l.SetVisible(1, false)
	require.NoError(t, err)
	assert.False(t, got.Drawable())

	got, err = l.SetColor(2, Green)
	require.NoError(t, err)
	assert.Equal(t, Green, got.Color)

	removed, err := l.Remove(3)
	require.NoError(t, err)
	assert.Equal(t, "x^4", removed.Formula)
	assert.Equal(t, []string{"x^2", "x^3", "cos(x)"}, l.Formulas())

	_, err = l.Remove(3)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = l.SetFormula(99, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	// IDs are never reused
	assert.Equal(t, int64(5), l.Add("x").ID)
}

func TestList_ReplaceKeepsIDs(t *testing.T) {
	l := NewList([]Plot{{ID: 7, Formula: "x"}, {Formula: "x^2"}}, nil)
	ps := l.Plots()
	assert.Equal(t, int64(7), ps[0].ID)
	assert.Equal(t, int64(8), ps[1].ID)
}

func TestDiff(t *testing.T) {
	prev := []Plot{
		{ID: 1, Formula: "x", Visible: true, Valid: true},
		{ID: 2, Formula: "x^2", Visible: true, Valid: true},
		{ID: 3, Formula: "x^3", Visible: true, Valid: true},
	}
	next := []Plot{
		{ID: 3, Formula: "x^3", Visible: true, Valid: true},
		{ID: 1, Formula: "x+1", Visible: true, Valid: true},
		{ID: 4, Formula: "ln(x)", Visible: true, Valid: true},
	}
	want := Changes{
		Added:   []Plot{next[2]},
		Removed: []Plot{prev[1]},
		Changed: []Plot{next[1]},
	}
	if diff := cmp.Diff(want, Diff(prev, next)); diff != "" {
		t.Fatalf("Diff mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, Diff(prev, prev).Empty())
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0xFF, G: 0x80, B: 0x00}, c)
	assert.Equal(t, "#ff8000", c.Hex())

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, Color{G: 0xFF}, c)

	_, err = ParseColor("green")
	assert.ErrorIs(t, err, ErrBadColor)

	b, err := json.Marshal(Plot{ID: 1, Formula: "x", Color: Red, Visible: true, Valid: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"formula":"x","color":"#f44336","visible":true,"valid":true}`, string(b))

	var p Plot
	require.NoError(t, json.Unmarshal(b, &p))
	assert.Equal(t, Red, p.Color)
}

func TestRandomColor_Deterministic(t *testing.T) {
	a := RandomColor(rand.New(rand.NewSource(42)))
	b := RandomColor(rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, Color{}, a)
}

func TestQuickFunctionsCompile(t *testing.T) {
	require.Len(t, QuickFunctions, 9)
	for _, q := range QuickFunctions {
		ex := expr.Compile(q.Formula)
		if !ex.Valid() {
			t.Fatalf("quick function %s (%q) invalid: %v", q.Name, q.Formula, ex.Err())
		}
	}

	q, ok := Quick("square root")
	require.True(t, ok)
	assert.Equal(t, "sqrt(x)", q.Formula)
	_, ok = Quick("hyperbolic")
	assert.False(t, ok)
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	defer s.Close()

	for i := int64(1); i <= 12; i++ {
		require.NoError(t, s.Save(ctx, Plot{ID: i, Formula: "x", Visible: true, Valid: true}))
	}
	got, err := s.Load(ctx, DefaultLoadLimit)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(12), got[9].ID)

	require.NoError(t, s.Save(ctx, Plot{ID: 12, Formula: "x^2"}))
	require.NoError(t, s.Delete(ctx, 11))
	got, err = s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 11)
	assert.Equal(t, "x^2", got[10].Formula)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	prev := []Plot{{ID: 1, Formula: "x"}, {ID: 2, Formula: "x^2"}}
	require.NoError(t, Sync(ctx, s, Diff(nil, prev)))

	next := []Plot{{ID: 2, Formula: "x^3"}}
	require.NoError(t, Sync(ctx, s, Diff(prev, next)))

	got, err := s.Load(ctx, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(next, got); diff != "" {
		t.Fatalf("store after sync (-want +got):\n%s", diff)
	}
}
