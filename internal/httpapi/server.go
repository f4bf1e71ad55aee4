// Package httpapi serves a small JSON API for inspecting and editing a running plotter.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"etherplot/app"
	"etherplot/expr"
	"etherplot/internal/buildinfo"
	"etherplot/plot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Controller is the part of app.Viewer the API drives.
type Controller interface {
	Snapshot() app.Snapshot
	AddPlot(ctx context.Context, formula string, c *plot.Color) (plot.Plot, error)
	UpdatePlot(ctx context.Context, id int64, u app.PlotUpdate) (plot.Plot, error)
	RemovePlot(ctx context.Context, id int64) error
	ResetCamera(ctx context.Context) error
}

var _ Controller = (*app.Viewer)(nil)

type Server struct {
	ctrl Controller
	log  *slog.Logger
}

// NewHandler routes the API. metrics may be nil.
func NewHandler(ctrl Controller, metrics http.Handler, log *slog.Logger) http.Handler {
	s := &Server{ctrl: ctrl, log: log}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Get("/state", s.State)
	r.Get("/quick", s.QuickFunctions)
	r.Route("/plots", func(r chi.Router) {
		r.Get("/", s.ListPlots)
		r.Post("/", s.AddPlot)
		r.Patch("/{id}", s.UpdatePlot)
		r.Delete("/{id}", s.RemovePlot)
	})
	r.Post("/camera/reset", s.ResetCamera)
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("http api listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}

type plotRequest struct {
	Formula string      `json:"formula"`
	Quick   string      `json:"quick,omitempty"`
	Color   *plot.Color `json:"color,omitempty"`
}

type plotResponse struct {
	plot.Plot
	// Error is the compile error of the formula, if any.
	Error string `json:"error,omitempty"`
}

func respondPlot(p plot.Plot) plotResponse {
	r := plotResponse{Plot: p}
	if err := expr.Compile(p.Formula).Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Short(),
		"frames":  s.ctrl.Snapshot().Frames,
	})
}

func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) QuickFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, plot.QuickFunctions)
}

func (s *Server) ListPlots(w http.ResponseWriter, r *http.Request) {
	plots := s.ctrl.Snapshot().Plots
	out := make([]plotResponse, len(plots))
	for i, p := range plots {
		out[i] = respondPlot(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) AddPlot(w http.ResponseWriter, r *http.Request) {
	var body plotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	formula := body.Formula
	if body.Quick != "" {
		q, ok := plot.Quick(body.Quick)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown quick function %q", body.Quick), http.StatusBadRequest)
			return
		}
		formula = q.Formula
	}

	p, err := s.ctrl.AddPlot(r.Context(), formula, body.Color)
	if err != nil {
		s.fail(w, "add plot", err)
		return
	}
	writeJSON(w, http.StatusCreated, respondPlot(p))
}

func (s *Server) UpdatePlot(w http.ResponseWriter, r *http.Request) {
	id, ok := plotID(w, r)
	if !ok {
		return
	}
	var body app.PlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.ctrl.UpdatePlot(r.Context(), id, body)
	if err != nil {
		s.fail(w, "update plot", err)
		return
	}
	writeJSON(w, http.StatusOK, respondPlot(p))
}

func (s *Server) RemovePlot(w http.ResponseWriter, r *http.Request) {
	id, ok := plotID(w, r)
	if !ok {
		return
	}
	if err := s.ctrl.RemovePlot(r.Context(), id); err != nil {
		s.fail(w, "remove plot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ResetCamera(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ResetCamera(r.Context()); err != nil {
		s.fail(w, "reset camera", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func plotID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid plot id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plot.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrEmptyFormula):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("http api request failed", "op", op, "error", err)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
