package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"telegram_booking_assistant/internal/bot/dispatcher"
	"telegram_booking_assistant/internal/config"
	"telegram_booking_assistant/internal/middleware"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP front of the bot: the Telegram webhook plus the
// health and metrics endpoints
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	log           *logger.Logger
	rateLimiter   *middleware.RateLimiter
	healthChecker *HealthChecker
	dispatcher    *dispatcher.Dispatcher
	telegramBot   *tgbot.Bot
}

// New creates the HTTP server
func New(
	cfg *config.Config,
	log *logger.Logger,
	healthChecker *HealthChecker,
	disp *dispatcher.Dispatcher,
	telegramBot *tgbot.Bot,
) *Server {
	server := &Server{
		config:        cfg,
		log:           log,
		rateLimiter:   middleware.NewRateLimiter(100, time.Minute, log),
		healthChecker: healthChecker,
		dispatcher:    disp,
		telegramBot:   telegramBot,
	}

	server.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        server.setupRoutes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return server
}

// setupRoutes wires routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthChecker.HealthHandler)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.Handle("/metrics", promhttp.Handler())

	// Applied in reverse order: rate limiting runs first, metrics record
	// the final status
	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.HTTPRateLimitMiddleware(s.rateLimiter)(handler)

	return handler
}

// handleWebhook processes one Telegram webhook delivery
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgmodels.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.log.Error("Failed to decode Telegram update",
			logger.Error(err),
		)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Server.UpdateTimeout)
	defer cancel()

	s.dispatcher.HandleUpdate(ctx, s.telegramBot, &update)

	s.log.Debug("Webhook processed",
		logger.Int64("update_id", update.ID),
		logger.Int64("processing_time_ms", time.Since(start).Milliseconds()),
	)

	w.WriteHeader(http.StatusOK)
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server",
		logger.String("addr", s.httpServer.Addr),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Error during server shutdown",
			logger.Error(err),
		)
		return err
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}
