package diagnostics

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server is the opt-in diagnostics HTTP server exposing /healthz and
// /metrics for long `simulate` runs.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a diagnostics server bound to addr, gated by auth when
// auth.Enabled.
func NewServer(addr string, auth AuthConfig, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", Healthz)
	mux.Handle("/metrics", Handler())

	handler := requestLogger(logger, authMiddleware(auth)(mux))

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: handler},
		logger:     logger,
	}
}

// ListenAndServe blocks serving diagnostics traffic until the server is
// shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting up to the context's
// deadline for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("diagnostics request",
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP(r),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
