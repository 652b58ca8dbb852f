// internal/server/server.go
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"icebreaker-service/internal/common/cache"
	"icebreaker-service/internal/common/config"
	"icebreaker-service/internal/common/errors"
	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/common/metrics"
	"icebreaker-service/internal/synthesis"
)

// Runner is the pipeline entry point the HTTP boundary drives.
type Runner interface {
	Run(ctx context.Context, requesterName, targetName string) (*synthesis.Summary, string, error)
}

// Server is the HTTP boundary of the icebreaker service.
type Server struct {
	config     *config.Config
	runner     Runner
	cache      *cache.Client
	logger     logger.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New creates the server and registers all routes. cacheClient may be nil
// when caching is disabled.
func New(cfg *config.Config, runner Runner, cacheClient *cache.Client, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		runner: runner,
		cache:  cacheClient,
		logger: log.With(map[string]interface{}{"component": "server"}),
		engine: gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestIDMiddleware())

	s.engine.POST("/process", s.handleProcess)
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.config.HTTP.Address,
		Handler:     s.engine,
		ReadTimeout: time.Duration(s.config.HTTP.ReadTimeout) * time.Millisecond,
	}

	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.config.HTTP.Address,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

type processRequest struct {
	MyName     string `form:"my_name" json:"my_name"`
	TargetName string `form:"target_name" json:"target_name"`
}

func (s *Server) handleProcess(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("requestID")

	var req processRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}

	myName := strings.TrimSpace(req.MyName)
	targetName := strings.TrimSpace(req.TargetName)
	if myName == "" || targetName == "" {
		s.respondError(c, errors.NewInvalidRequestError("my_name and target_name are required"))
		return
	}

	s.logger.Info("processing icebreaker request", map[string]interface{}{
		"requestId": requestID,
		"myName":    myName,
		"target":    targetName,
	})

	summary, photoURL, err := s.runner.Run(c.Request.Context(), myName, targetName)
	if err != nil {
		s.logger.Error("pipeline failed", map[string]interface{}{
			"requestId": requestID,
			"error":     err.Error(),
		})
		s.respondError(c, translatePipelineError(err))
		return
	}

	metrics.RequestsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("icebreaker request completed", map[string]interface{}{
		"requestId": requestID,
		"duration":  time.Since(start).String(),
	})

	c.JSON(http.StatusOK, gin.H{
		"summary_and_facts": summary.ToMap(),
		"photoUrl":          photoURL,
	})
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusBadRequest {
		metrics.RequestsTotal.WithLabelValues("invalid").Inc()
	} else {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
	}
	c.JSON(status, errors.HTTPBody(err))
}

// translatePipelineError maps pipeline sentinels to standard errors so the
// boundary returns the right status code.
func translatePipelineError(err error) error {
	switch {
	case stderrors.Is(err, synthesis.ErrSynthesisTimeout):
		return errors.NewSynthesisTimeoutError()
	case stderrors.Is(err, synthesis.ErrSynthesisFailed):
		return errors.NewSynthesisFailedError(err)
	default:
		return errors.NewInternalError(err)
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "healthy",
		"service": s.config.App.Name,
		"version": s.config.App.Version,
	}

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.cache.Ping(ctx); err != nil {
			// Cache problems degrade to live fetches, so the service stays
			// healthy. Report the dependency state for operators.
			body["cache"] = "unavailable"
		} else {
			body["cache"] = "ok"
		}
	}

	c.JSON(status, body)
}
