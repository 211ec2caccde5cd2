// Package chatproxy is the HTTP endpoint the chat overlay talks to. It adds
// the tutor system prompt and forwards the conversation to a model provider.
package chatproxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/logger"
)

// Options configures a Server.
type Options struct {
	Provider llm.Provider
	Logger   *logger.Logger

	// Mode is the gin mode: release, debug or test.
	Mode           string
	AllowedOrigins []string

	// RateLimit is requests per minute per client IP on the chat route.
	// Zero disables limiting.
	RateLimit int
	Burst     int

	// Timeout bounds one model call including retries. Zero means none.
	Timeout time.Duration
}

type Server struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logger.Logger
	metrics  *metrics
	engine   *gin.Engine
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Mode == "" {
		opts.Mode = gin.ReleaseMode
	}
	gin.SetMode(opts.Mode)

	s := &Server{
		provider: opts.Provider,
		timeout:  opts.Timeout,
		log:      opts.Logger.With("component", "chatproxy"),
		metrics:  newMetrics(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.metrics.middleware(), s.accessLog())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		}))
	}

	chat := []gin.HandlerFunc{s.tutorChat}
	if opts.RateLimit > 0 {
		chat = append([]gin.HandlerFunc{newRateLimiter(opts.RateLimit, opts.Burst).middleware()}, chat...)
	}
	r.POST("/api/tutor-chat", chat...)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", s.metrics.handler())

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("chat proxy listening", "addr", addr, "model", s.provider.ModelID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("chat proxy shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
