// Package server provides the HTTP REST API for the career advisor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-advisor/internal/catalog"
	"github.com/jonathan/career-advisor/internal/db"
	"github.com/jonathan/career-advisor/internal/identity"
	"github.com/jonathan/career-advisor/internal/pipeline"
	"github.com/jonathan/career-advisor/internal/quota"
	"github.com/jonathan/career-advisor/internal/server/ratelimit"
)

// PurchaseStore persists entitling purchases delivered by the checkout
// webhook and reads them back for the purchase history endpoint. *db.DB
// satisfies it.
type PurchaseStore interface {
	SavePurchase(ctx context.Context, userID uuid.UUID, sku, checkoutRef string) (uuid.UUID, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]db.Purchase, error)
}

// Options holds the dependencies a Server runs on. Tests inject fakes
// through the same struct. WebhookSecret authenticates checkout webhook
// deliveries and is required whenever Purchases is set.
type Options struct {
	Port          int
	Pipeline      *pipeline.Pipeline
	Library       *catalog.Library
	Ledger        *quota.Ledger
	Resolver      *identity.Resolver
	Tokens        *identity.TokenService
	Purchases     PurchaseStore
	WebhookSecret []byte
	RateLimiter   *ratelimit.Limiter
	Log           *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	pipe          *pipeline.Pipeline
	library       *catalog.Library
	ledger        *quota.Ledger
	resolver      *identity.Resolver
	tokens        *identity.TokenService
	purchases     PurchaseStore
	webhookSecret []byte
	rateLimiter   *ratelimit.Limiter
	validate      *validator.Validate
	log           *zap.Logger
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if opts.Library == nil {
		return nil, fmt.Errorf("role library is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("quota ledger is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if opts.Purchases != nil && len(opts.WebhookSecret) == 0 {
		return nil, fmt.Errorf("webhook secret is required when checkout is configured")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	s := &Server{
		pipe:          opts.Pipeline,
		library:       opts.Library,
		ledger:        opts.Ledger,
		resolver:      opts.Resolver,
		tokens:        opts.Tokens,
		purchases:     opts.Purchases,
		webhookSecret: opts.WebhookSecret,
		rateLimiter:   opts.RateLimiter,
		validate:      validator.New(),
		log:           opts.Log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler builds the routed and middleware-wrapped handler. Exposed so
// tests can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /assess", s.handleAssess)
	mux.HandleFunc("POST /assess/regenerate", s.handleRegenerate)
	mux.HandleFunc("GET /quota", s.handleQuota)
	mux.HandleFunc("GET /purchases", s.handleListPurchases)
	mux.HandleFunc("POST /webhooks/checkout", s.handleCheckoutWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.rateLimiter.Stop()
		return nil
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.jsonResponse(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
				Kind:    kindRateLimitExceeded,
				Message: "rate limit exceeded, please try again later",
			}})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse maps an error to its status and kind and writes it.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status, detail := classifyError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody{Error: detail})
}

// badRequest writes a 400 with the invalid_request kind.
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.jsonResponse(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Kind:    kindInvalidRequest,
		Message: message,
	}})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately
// ignored since it is client-controlled.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}
