package http

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	githubctrl "github.com/m-mizutani/slipway/pkg/controller/github"
	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	verifier      interfaces.TokenVerifier
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithTokenVerifier enables the direct dispatch endpoint. Without a verifier
// the endpoint is not mounted at all.
func WithTokenVerifier(v interfaces.TokenVerifier) Option {
	return func(c *config) {
		c.verifier = v
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	publisher interfaces.Publisher,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// Runtime counters
	router.Get("/metrics", expvar.Handler().ServeHTTP)

	// Webhook endpoint
	processor := githubctrl.NewEventProcessor(publisher)
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC, processor)
	router.Post("/hooks/github/app", webhookHandler.Handle)

	// Direct dispatch endpoint for GitHub Actions jobs
	if cfg.verifier != nil {
		dispatchHandler := NewDispatchHandler(cfg.verifier, publisher)
		router.Post("/api/v1/dispatch", dispatchHandler.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
