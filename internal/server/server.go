// Package server exposes the recap over HTTP: a JSON view of the table and
// the same workbook the export command writes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/recap"
	"github.com/Veraticus/visit-recap/internal/xlsx"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Source produces recap tables. *recap.Service implements it.
type Source interface {
	Table(ctx context.Context, refresh bool) (*recap.Result, error)
}

// Config holds the HTTP listener settings.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Server serves recap requests.
type Server struct {
	source Source
	logger *slog.Logger
}

// New creates a server backed by source.
func New(source Source, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{source: source, logger: logger}
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/recap", s.handleRecap)
	r.Get("/recap.xlsx", s.handleWorkbook)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}

// RecapResponse is the JSON form of a recap table.
type RecapResponse struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Columns   []string  `json:"columns"`
	Rows      [][]any   `json:"rows"`
	FromCache bool      `json:"fromCache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	result, err := s.source.Table(r.Context(), wantsRefresh(r))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecapResponse{
		Columns:   result.Table.Columns,
		Rows:      lo.Map(result.Table.Rows, func(row model.Row, _ int) []any { return rowValues(row) }),
		FetchedAt: result.FetchedAt,
		FromCache: result.FromCache,
	})
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	result, err := s.source.Table(r.Context(), wantsRefresh(r))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	data, err := xlsx.Encode(result.Table)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsx.DefaultFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to send workbook", "error", err)
	}
}

func rowValues(row model.Row) []any {
	return lo.Map(row, func(c model.Cell, _ int) any { return c.Value() })
}

func wantsRefresh(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

// ListenAndServe serves handler until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, cfg Config, handler http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return Serve(ctx, cfg, listener, handler, logger)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, cfg Config, listener net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("recap server started", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info("recap server stopped")
	return nil
}
