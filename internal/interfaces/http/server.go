// Package http provides the HTTP adapter for the application layer. Handlers
// are thin: they bind JSON, resolve the actor via the identity middleware, call
// the application services, and translate typed errors to status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/application/service"
	appworkflow "github.com/openmuni/casework/internal/application/workflow"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	workflowService appworkflow.Service,
	requestService service.RequestService,
	caseService service.CaseService,
	benefitService service.BenefitService,
	identity port.Identity,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())

	handlers := NewHandlers(workflowService, requestService, caseService, benefitService, identity, logger)

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.POST("/auth/token", handlers.IssueToken)

	authorized := api.Group("")
	authorized.Use(AuthMiddleware(identity, logger))
	{
		authorized.POST("/cases", handlers.CreateCase)
		authorized.GET("/cases", handlers.ListCases)
		authorized.GET("/cases/:id", handlers.GetCase)
		authorized.GET("/cases/:id/benefits", handlers.ListCaseBenefits)
		authorized.GET("/cases/:id/requests", handlers.ListCaseRequests)

		authorized.POST("/benefits", handlers.CreateBenefit)
		authorized.GET("/benefits/:id", handlers.GetBenefit)

		authorized.POST("/requests", handlers.CreateDraft)
		authorized.GET("/requests/:id", handlers.GetRequest)
		authorized.GET("/requests/:id/history", handlers.GetRequestHistory)

		authorized.POST("/requests/:id/submit", handlers.Submit)
		authorized.POST("/requests/:id/start-review", handlers.StartReview)
		authorized.POST("/requests/:id/approve", handlers.Approve)
		authorized.POST("/requests/:id/reject", handlers.Reject)
		authorized.POST("/requests/:id/request-documents", handlers.RequestDocuments)
		authorized.POST("/requests/:id/resubmit", handlers.Resubmit)
		authorized.POST("/requests/:id/fast-track", handlers.FastTrackApprove)
		authorized.POST("/requests/:id/confirm-fast-track", handlers.ConfirmFastTrack)
		authorized.POST("/requests/:id/cancel", handlers.Cancel)
		authorized.POST("/requests/:id/revoke", handlers.Revoke)
		authorized.POST("/requests/:id/expire", handlers.Expire)
	}

	return server
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
