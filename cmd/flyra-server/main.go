// Flyra API Server
// Serves flight status, route search, and AI calming-message endpoints
// for the mobile client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/flyra-app/flyra-server/internal/auth"
	"github.com/flyra-app/flyra-server/pkg/ai"
	"github.com/flyra-app/flyra-server/pkg/config"
	"github.com/flyra-app/flyra-server/pkg/flight"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
)

// Server holds the HTTP server and its dependencies
type Server struct {
	router  *chi.Mux
	flights *flight.Service
	ai      *ai.Client
	authSvc *auth.Service
	cfg     *config.Config
}

func main() {
	flag.Parse()

	log.Println("🛫 Starting Flyra API Server...")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Flight aggregation service over the configured provider
	flights := flight.Default(cfg)
	log.Printf("✈️  Flight data provider: %s", flights.Source())

	// AI generation client; starts without a key, AI endpoints degrade
	aiClient := ai.NewClient(ai.ClientConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: &cfg.OpenAI.Temperature,
	})
	if cfg.OpenAI.APIKey == "" {
		log.Println("⚠️  OPENAI_KEY not set; AI endpoints will return 400")
	}

	// Session tokens, active only when a secret is configured
	authSvc := auth.NewService(auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: time.Duration(cfg.Auth.TokenDurationHours) * time.Hour,
	})
	if cfg.Auth.Enabled {
		log.Println("🔐 Bearer-token auth enabled for /api routes")
	}

	srv := &Server{
		router:  chi.NewRouter(),
		flights: flights,
		ai:      aiClient,
		authSvc: authSvc,
		cfg:     cfg,
	}
	srv.setupRoutes()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI generation can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("📡 Server listening on http://%s:%s", cfg.Server.Host, cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n👋 Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	// CORS: the mobile client ships no Origin, browsers testing do
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/api/auth/token", s.handleIssueToken)

	// API routes, bearer-protected when a secret is configured
	r.Group(func(r chi.Router) {
		if s.cfg.Auth.Enabled {
			r.Use(s.authSvc.Middleware)
		}

		r.Get("/api/flight", s.handleGetFlight)
		r.Get("/api/flights/search", s.handleSearchFlights)
		r.Get("/api/flight/{flight_id}/calming-message", s.handleCalmingMessage)
		r.Post("/api/ai/chat", s.handleChat)
	})
}
