package plot

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrNotFound = errors.New("plot not found")

// Plot is one formula on the canvas. ID stays the same across formula edits.
type Plot struct {
	ID      int64  `json:"id"`
	Formula string `json:"formula"`
	Color   Color  `json:"color"`
	Visible bool   `json:"visible"`
	Valid   bool   `json:"valid"`
}

// Drawable reports whether the renderer should sample p.
func (p Plot) Drawable() bool { return p.Visible && p.Valid }

// List is the ordered plot list. It is not safe for concurrent use.
type List struct {
	plots  []Plot
	nextID int64
	rng    *rand.Rand
}

// NewList starts a list from plots, e.g. ones loaded from a Store. Plots without an ID get one.
func NewList(plots []Plot, rng *rand.Rand) *List {
	l := &List{nextID: 1, rng: rng}
	l.Replace(plots)
	return l
}

// Replace swaps the whole list.
func (l *List) Replace(plots []Plot) {
	l.plots = make([]Plot, 0, len(plots))
	for _, p := range plots {
		if p.ID >= l.nextID {
			l.nextID = p.ID + 1
		}
	}
	for _, p := range plots {
		if p.ID == 0 {
			p.ID = l.nextID
			l.nextID++
		}
		l.plots = append(l.plots, p)
	}
}

// Plots returns a copy of the list in order.
func (l *List) Plots() []Plot {
	out := make([]Plot, len(l.plots))
	copy(out, l.plots)
	return out
}

func (l *List) Len() int { return len(l.plots) }

// Formulas lists the formula of every plot, in order.
func (l *List) Formulas() []string { return Formulas(l.plots) }

// Formulas lists the formula of each plot, in order.
func Formulas(plots []Plot) []string {
	out := make([]string, len(plots))
	for i, p := range plots {
		out[i] = p.Formula
	}
	return out
}

func (l *List) Get(id int64) (Plot, error) {
	i, err := l.index(id)
	if err != nil {
		return Plot{}, err
	}
	return l.plots[i], nil
}

// Add appends a visible plot with a random color.
func (l *List) Add(formula string) Plot {
	return l.AddColored(formula, RandomColor(l.rng))
}

func (l *List) AddColored(formula string, c Color) Plot {
	p := Plot{ID: l.nextID, Formula: formula, Color: c, Visible: true, Valid: true}
	l.nextID++
	l.plots = append(l.plots, p)
	return p
}

// SetFormula edits the formula and marks the plot valid again.
func (l *List) SetFormula(id int64, formula string) (Plot, error) {
	return l.update(id, func(p *Plot) {
		p.Formula = formula
		p.Valid = true
	})
}

func (l *List) SetVisible(id int64, visible bool) (Plot, error) {
	return l.update(id, func(p *Plot) { p.Visible = visible })
}

func (l *List) SetColor(id int64, c Color) (Plot, error) {
	return l.update(id, func(p *Plot) { p.Color = c })
}

func (l *List) SetValid(id int64, valid bool) (Plot, error) {
	return l.update(id, func(p *Plot) { p.Valid = valid })
}

func (l *List) Remove(id int64) (Plot, error) {
	i, err := l.index(id)
	if err != nil {
		return Plot{}, err
	}
	p := l.plots[i]
	l.plots = append(l.plots[:i], l.plots[i+1:]...)
	return p, nil
}

func (l *List) update(id int64, fn func(p *Plot)) (Plot, error) {
	i, err := l.index(id)
	if err != nil {
		return Plot{}, err
	}
	fn(&l.plots[i])
	return l.plots[i], nil
}

func (l *List) index(id int64) (int, error) {
	for i := range l.plots {
		if l.plots[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Changes is the result of Diff.
type Changes struct {
	Added   []Plot
	Removed []Plot
	Changed []Plot
}

func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff compares two lists by ID. Changed holds the new version of each plot whose fields
// differ. Order changes alone are not reported.
func Diff(prev, next []Plot) Changes {
	old := make(map[int64]Plot, len(prev))
	for _, p := range prev {
		old[p.ID] = p
	}
	var c Changes
	seen := make(map[int64]struct{}, len(next))
	for _, p := range next {
		seen[p.ID] = struct{}{}
		o, ok := old[p.ID]
		switch {
		case !ok:
			c.Added = append(c.Added, p)
		case o != p:
			c.Changed = append(c.Changed, p)
		}
	}
	for _, p := range prev {
		if _, ok := seen[p.ID]; !ok {
			c.Removed = append(c.Removed, p)
		}
	}
	return c
}
