// Package kakao serves the Kakao i Open Builder skill webhook plus the
// bot's operational endpoints.
package kakao

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

// Processor answers one user message.
type Processor interface {
	ProcessMessage(ctx context.Context, text, userID string) models.Reply
}

// Reloader rebuilds the answer corpus and reports its new size.
type Reloader interface {
	Reload(ctx context.Context) error
	Size() int
}

type Config struct {
	Address        string
	AllowedOrigins []string
	AdminToken     string
	ServiceName    string
	Version        string
	RequestTimeout time.Duration
}

type Server struct {
	cfg       Config
	processor Processor
	reloader  Reloader
	metrics   http.Handler
	logger    *zap.Logger
}

// NewServer wires the HTTP surface. metricsHandler may be nil.
func NewServer(cfg Config, processor Processor, reloader Reloader, metricsHandler http.Handler, logger *zap.Logger) *Server {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "wasuk_chatbot"
	}
	if cfg.Version == "" {
		cfg.Version = "2.0"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 4 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{
		cfg:       cfg,
		processor: processor,
		reloader:  reloader,
		metrics:   metricsHandler,
		logger:    logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Post("/webhook", s.webhook)
	router.Post("/test", s.test)
	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	router.Route("/admin", func(r chi.Router) {
		r.Use(adminAuth(s.cfg.AdminToken))
		r.Post("/reload", s.reload)
	})

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("address", s.cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
