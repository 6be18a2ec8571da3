package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"tabstat/app"
	"tabstat/internal"
	"tabstat/internal/config"
	"tabstat/internal/errors"
)

// Server is the HTTP front end of the analysis service
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	limiter *semaphore.Weighted
	cfg     config.ServerConfig
	logger  *internal.Logger
}

// NewServer creates a server over service. Analyses beyond
// cfg.MaxConcurrentAnalyses wait for a free slot.
func NewServer(service *app.AnalysisService, cfg config.ServerConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	slots := cfg.MaxConcurrentAnalyses
	if slots < 1 {
		slots = 1
	}
	return &Server{
		router:  gin.New(),
		service: service,
		limiter: semaphore.NewWeighted(int64(slots)),
		cfg:     cfg,
		logger:  logger.WithComponent("Server"),
	}
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() {
	s.setupMiddleware()
	s.setupRoutes()
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until it fails
func (s *Server) Start(addr string) error {
	log.Printf("Starting tabstat server on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.MaxMultipartMemory = s.uploadLimit()
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/datasets", s.handleUpload)
		api.GET("/datasets", s.handleListDatasets)
		api.GET("/datasets/:id", s.handleGetDataset)
		api.DELETE("/datasets/:id", s.handleResetDataset)

		analyses := api.Group("/datasets/:id", s.limitAnalyses)
		analyses.POST("/stats", s.handleStats)
		analyses.GET("/histograms", s.handleHistograms)
		analyses.POST("/boxplots", s.handleBoxPlots)
		analyses.POST("/clusters", s.handleCluster)
		analyses.POST("/quadrants", s.handleQuadrants)
		analyses.GET("/report", s.handleReport)
	}
}

// limitAnalyses holds one limiter slot for the rest of the chain
func (s *Server) limitAnalyses(c *gin.Context) {
	if err := s.limiter.Acquire(c.Request.Context(), 1); err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled while waiting for an analysis slot"})
		return
	}
	defer s.limiter.Release(1)
	c.Next()
}

func (s *Server) uploadLimit() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

// respondError maps an error code onto an HTTP status
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodePrecondition:
		status = http.StatusUnprocessableEntity
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeTooLarge:
		status = http.StatusRequestEntityTooLarge
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
