// internal/dashboard/web/server.go
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"churn-dashboard/pkg/registry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Server is the dashboard HTTP surface.
type Server struct {
	config     *Config
	sessions   *Sessions
	registry   *registry.FieldRegistry
	page       *template.Template
	logger     Logger
	httpServer *http.Server
}

func NewServer(cfg *Config, sessions *Sessions, reg *registry.FieldRegistry, log Logger) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		sessions: sessions,
		registry: reg,
		page:     page,
		logger:   log,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /dismiss", s.handleDismiss)

	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("POST /api/fields", s.handleAPIField)
	mux.HandleFunc("POST /api/submit", s.handleAPISubmit)
	mux.HandleFunc("POST /api/reset", s.handleAPIReset)
	mux.HandleFunc("POST /api/dismiss", s.handleAPIDismiss)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return chain(s.withRequestLogging, s.withRecovery)(mux)
}

// ListenAndServe starts the session sweeper and blocks serving HTTP until
// Shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.sessions.Run(ctx)

	s.logger.Info("dashboard listening", map[string]interface{}{"address": s.config.Address})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// every view.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.sessions.CloseAll()
	return err
}
