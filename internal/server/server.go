// Package server implements todayd, the HTTP API the today client syncs with.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"today/internal/config"
	"today/internal/metrics"
	"today/internal/server/store"
)

const (
	// SessionCookie carries the session token.
	SessionCookie = "session"

	stateCookie    = "oauth_state"
	redirectCookie = "oauth_redirect"
	stateMaxAge    = 600

	shutdownTimeout = 10 * time.Second

	userKey    = "user"
	sessionKey = "session"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg      *config.ServerConfig
	store    *store.Store
	auth     Authenticator
	sessions *Sessions
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a server.
func New(cfg *config.ServerConfig, st *store.Store, auth Authenticator, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		auth:     auth,
		sessions: NewSessions(cfg.SessionSecret, cfg.SessionTTL, nil),
		metrics:  m,
		logger:   logger,
	}
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	auth := r.Group("/auth")
	auth.GET("/google", s.beginLogin)
	auth.GET("/google/callback", s.completeLogin)
	auth.GET("/me", s.requireUser, s.currentUser)
	auth.GET("/logout", s.logout)

	api := r.Group("/api", s.requireUser)
	api.GET("/user", s.currentUser)
	api.GET("/todos", s.listTodos)
	api.POST("/todos", s.createTodo)
	api.PUT("/todos/:id", s.updateTodo)
	api.DELETE("/todos/:id", s.deleteTodo)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// observe logs and measures every request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)

		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, c.FullPath(), strconv.Itoa(status), d)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", d),
			slog.String("client", c.ClientIP()),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func abortMessage(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"message": msg})
}
