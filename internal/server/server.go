// Package server exposes grid path searches over HTTP.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/config"
)

const requestIDHeader = "X-Request-ID"

// Server wires the grid store to a gin engine.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *Store
	engine *gin.Engine
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  NewStore(cfg.SessionTTL, cfg.MaxSessions, cfg.Workers),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	if len(cfg.AllowOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if slices.Contains(cfg.AllowOrigins, "*") {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.AllowOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
		corsConfig.ExposeHeaders = []string{requestIDHeader}
		if err := corsConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid CORS settings: %w", err)
		}
		s.engine.Use(cors.New(corsConfig))
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.GET("/grids", s.handleListGrids)
	api.POST("/grids", s.handleCreateGrid)
	api.GET("/grids/:id", s.handleGetGrid)
	api.DELETE("/grids/:id", s.handleDeleteGrid)
	api.POST("/grids/:id/path", s.handleFindPath)
	api.POST("/grids/:id/batch", s.handleBatch)
	api.POST("/grids/:id/sessions", s.handleCreateSession)
	api.POST("/sessions/:id/next", s.handleNextStep)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Store() *Store { return s.store }

// LoadGridFiles registers each ASCII map under its configured name.
func (s *Server) LoadGridFiles(files []config.GridFile) error {
	for _, file := range files {
		g, err := loadGridFile(file.Path)
		if err != nil {
			return fmt.Errorf("failed to load grid %s: %w", file.Name, err)
		}
		if g.Len() > s.cfg.MaxGridCells {
			return fmt.Errorf("grid %s has %d cells, limit is %d", file.Name, g.Len(), s.cfg.MaxGridCells)
		}
		s.store.PutGrid(file.Name, file.Name, g)
		s.logger.Info("grid loaded",
			slog.String("name", file.Name),
			slog.String("path", file.Path),
			slog.Int("width", g.Width()),
			slog.Int("height", g.Height()))
	}
	return nil
}

func loadGridFile(path string) (*astar.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return astar.ParseGrid(file)
}

// searchOptions are applied to every search the server runs over entry.
func (s *Server) searchOptions(c *gin.Context, entry *GridEntry) []astar.Option {
	return []astar.Option{
		astar.WithScratchPool(entry.Scratch()),
		astar.WithExpansionLimit(s.cfg.ExpansionLimit),
		astar.WithLogger(s.logger.With(slog.String("request_id", c.GetString("requestID")))),
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(requestIDHeader, requestID)

		started := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(started)),
		)
	}
}
