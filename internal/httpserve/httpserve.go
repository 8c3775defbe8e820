// Package httpserve provides the shared HTTP ingress for the MCP servers:
// a chi router with the canonical middleware stack, the MCP transport
// endpoints, health and metrics, and graceful shutdown.
package httpserve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agentground/agentground/internal/logging"
	"github.com/agentground/agentground/internal/metrics"
)

// Config configures the HTTP ingress.
type Config struct {
	// Addr is the listen address, e.g. ":9000".
	Addr string
	// RateLimitRPS bounds requests per second per client IP. Zero disables
	// rate limiting.
	RateLimitRPS int
	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
	// Logger receives request logs.
	Logger zerolog.Logger
}

// requestIDHeader carries the request ID back to clients.
const requestIDHeader = "X-Request-Id"

// NewRouter builds the ingress router for an MCP server. The server is
// mounted at /mcp (streamable HTTP) and /sse (legacy HTTP+SSE); /healthz
// and /metrics serve operational traffic.
func NewRouter(cfg Config, server *mcp.Server) *chi.Mux {
	r := chi.NewRouter()

	// The recoverer sits inside the logger so that panics still produce a
	// logged, counted 500 response.
	r.Use(requestID)
	r.Use(requestLogger(cfg.Logger))
	r.Use(recoverer(cfg.Logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))
	}

	getServer := func(*http.Request) *mcp.Server { return server }
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(getServer, nil))
	r.Handle("/mcp/*", mcp.NewStreamableHTTPHandler(getServer, nil))
	sse := mcp.NewSSEHandler(getServer, nil)
	r.Handle("/sse", sse)
	r.Handle("/sse/*", sse)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe runs the router until the context is cancelled or an
// interrupt arrives, then shuts down gracefully.
func ListenAndServe(ctx context.Context, cfg Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		cfg.Logger.Info().Str("addr", cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg.Logger.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// recoverer converts handler panics into 500 responses.
func recoverer(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).
						Str("path", r.URL.Path).
						Msg("handler panic")
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestID assigns a ULID request ID to every request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLogger logs completed requests and feeds the HTTP metrics.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			class := strconv.Itoa(rec.status/100) + "xx"
			metrics.ObserveHTTPRequest(r.URL.Path, class)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Str("request_id", logging.RequestIDFromContext(r.Context())).
				Msg("request completed")
		})
	}
}
