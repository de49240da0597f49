// ABOUTME: Web UI and JSON API server with embedded templates
// ABOUTME: Serves contacts, calendar downloads, public profiles and the local-to-account import
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/store"
)

//go:embed templates/*
var templatesFS embed.FS

// SessionHeader carries the signed-in user id, set by the authenticating proxy.
const SessionHeader = "X-Networkia-User"

type Options struct {
	Theme         string
	UpcomingDays  int
	Logger        *zap.Logger
	AgendaOptions []agenda.Option
}

type Server struct {
	selector  *store.Selector
	templates *template.Template
	logger    *zap.Logger
	opts      Options
}

func NewServer(sel *store.Selector, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = agenda.DefaultWindow
	}
	if opts.Theme == "" {
		opts.Theme = "light"
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"join": strings.Join,
		"neg":  func(n int) int { return -n },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		selector:  sel,
		templates: tmpl,
		logger:    opts.Logger,
		opts:      opts,
	}, nil
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleContacts)
	mux.HandleFunc("GET /contacts/{id}", s.handleContact)
	mux.HandleFunc("POST /contacts/{id}/log", s.handleQuickLog)
	mux.HandleFunc("GET /p/{slug}", s.handleProfile)

	// Downloads
	mux.HandleFunc("GET /export.ics", s.handleExport)
	mux.HandleFunc("GET /api/contacts/{id}/export.ics", s.handleExportContact)
	mux.HandleFunc("GET /graph/circles", s.handleCircleGraph)

	// JSON API
	mux.HandleFunc("GET /api/contacts", s.handleAPIListContacts)
	mux.HandleFunc("POST /api/contacts", s.handleAPICreateContact)
	mux.HandleFunc("GET /api/contacts/{id}", s.handleAPIGetContact)
	mux.HandleFunc("PUT /api/contacts/{id}", s.handleAPIUpdateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", s.handleAPIDeleteContact)
	mux.HandleFunc("POST /api/contacts/{id}/notes", s.handleAPIAddNote)
	mux.HandleFunc("POST /api/contacts/{id}/interactions", s.handleAPILogInteraction)
	mux.HandleFunc("GET /api/upcoming", s.handleAPIUpcoming)
	mux.HandleFunc("GET /api/circles", s.handleAPIListCircles)
	mux.HandleFunc("POST /api/circles", s.handleAPISaveCircle)
	mux.HandleFunc("POST /api/import", s.handleAPIImport)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return s.logRequests(mux)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

func sessionFrom(r *http.Request) store.Session {
	return store.Session{UserID: r.Header.Get(SessionHeader)}
}

// agendaFor builds the agenda over the store chosen for the request's session.
func (s *Server) agendaFor(r *http.Request) *agenda.Agenda {
	opts := append([]agenda.Option{agenda.WithLogger(s.logger)}, s.opts.AgendaOptions...)
	return agenda.New(s.selector.For(sessionFrom(r)), opts...)
}

func (s *Server) windowFrom(r *http.Request) int {
	if days, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && days > 0 {
		return days
	}
	return s.opts.UpcomingDays
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Bool("signed_in", sessionFrom(r).Authenticated()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data map[string]interface{}) {
	data["Theme"] = s.opts.Theme
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Execute the specified template (usually layout.html)
	// The data map includes ContentTemplate to specify which content block to render
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
