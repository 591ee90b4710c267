// Package server exposes the bridge's HTTP surface: memory telemetry and
// optimization, GPU capability and compute, module status, and a WebSocket
// status stream. Every handler delegates to the capability facade; no
// business logic lives here.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/config"
	"github.com/teranos/accelbridge/facade"
)

// Server serves the bridge HTTP API.
type Server struct {
	facade *facade.Facade
	logger *zap.SugaredLogger
	addr   string

	// Memory endpoint self-throttle: repeated queries inside the window get
	// the prior response plus a time-remaining hint instead of a live read.
	throttleMu       sync.Mutex
	throttle         *rate.Limiter
	throttleInterval time.Duration
	lastMemory       *bridge.MemorySnapshot
	lastMemoryAt     time.Time

	// WebSocket status stream cadence
	statusInterval time.Duration

	httpServer *http.Server
}

// New builds a server over the facade with the given server and memory
// throttle configuration.
func New(f *facade.Facade, cfg config.ServerConfig, throttle time.Duration, logger *zap.SugaredLogger) *Server {
	if throttle <= 0 {
		throttle = 3 * time.Second
	}
	return &Server{
		facade:           f,
		logger:           logger,
		addr:             fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		throttle:         rate.NewLimiter(rate.Every(throttle), 1),
		throttleInterval: throttle,
		statusInterval:   5 * time.Second,
	}
}

// SetThrottleInterval replaces the memory self-throttle window (config
// hot-reload). The cached response survives; only the window changes.
func (s *Server) SetThrottleInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.throttleMu.Lock()
	s.throttle = rate.NewLimiter(rate.Every(interval), 1)
	s.throttleInterval = interval
	s.throttleMu.Unlock()
}

// Routes returns the configured request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/memory", s.handleMemory)
	mux.HandleFunc("/gpu", s.handleGPU)
	mux.HandleFunc("/gpu/acceleration", s.handleGPUAcceleration)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Bridge HTTP server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
