package app

import (
	"context"
	"errors"
	"strings"

	"etherplot/camera"
	"etherplot/plot"
)

// ErrEmptyFormula rejects blank formulas before they reach the list.
var ErrEmptyFormula = errors.New("empty formula")

// Session gives a Do callback access to the viewer state. It must not escape the callback.
type Session struct {
	v *Viewer
}

func (s *Session) Plots() *plot.List { return s.v.list }

func (s *Session) Camera() camera.State { return s.v.cam }

func (s *Session) SetCamera(c camera.State) { s.v.cam = c }

// ResetView restores the initial camera and grid.
func (s *Session) ResetView() { s.v.resetView() }

// Redraw forces a frame even if nothing changed.
func (s *Session) Redraw() { s.v.dirty = true }

// PlotUpdate lists the fields to change; nil fields are left alone.
type PlotUpdate struct {
	Formula *string     `json:"formula,omitempty"`
	Visible *bool       `json:"visible,omitempty"`
	Color   *plot.Color `json:"color,omitempty"`
}

// AddPlot appends a visible plot. A nil color picks a random one.
func (v *Viewer) AddPlot(ctx context.Context, formula string, c *plot.Color) (plot.Plot, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return plot.Plot{}, ErrEmptyFormula
	}
	var p plot.Plot
	err := v.Do(ctx, func(s *Session) error {
		if c != nil {
			p = s.Plots().AddColored(formula, *c)
		} else {
			p = s.Plots().Add(formula)
		}
		return nil
	})
	return p, err
}

// UpdatePlot applies u to the plot with the given ID.
func (v *Viewer) UpdatePlot(ctx context.Context, id int64, u PlotUpdate) (plot.Plot, error) {
	if u.Formula != nil {
		f := strings.TrimSpace(*u.Formula)
		if f == "" {
			return plot.Plot{}, ErrEmptyFormula
		}
		u.Formula = &f
	}
	var p plot.Plot
	err := v.Do(ctx, func(s *Session) error {
		l := s.Plots()
		var err error
		if p, err = l.Get(id); err != nil {
			return err
		}
		if u.Formula != nil && *u.Formula != p.Formula {
			if p, err = l.SetFormula(id, *u.Formula); err != nil {
				return err
			}
		}
		if u.Visible != nil {
			if p, err = l.SetVisible(id, *u.Visible); err != nil {
				return err
			}
		}
		if u.Color != nil {
			if p, err = l.SetColor(id, *u.Color); err != nil {
				return err
			}
		}
		return nil
	})
	return p, err
}

func (v *Viewer) RemovePlot(ctx context.Context, id int64) error {
	return v.Do(ctx, func(s *Session) error {
		_, err := s.Plots().Remove(id)
		return err
	})
}

func (v *Viewer) ResetCamera(ctx context.Context) error {
	return v.Do(ctx, func(s *Session) error {
		s.ResetView()
		return nil
	})
}
