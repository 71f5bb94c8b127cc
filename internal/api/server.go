// Package api serves the artifacts of the latest pipeline run over HTTP: the
// observation table from the data directory and the grid product and figures
// from the results directory.
package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zerotwo/dwd-krige/internal/config"
	"github.com/zerotwo/dwd-krige/internal/dataset"
)

// figures whitelists the PNGs the API is willing to serve.
var figures = map[string]bool{
	"kriging.png":   true,
	"variogram.png": true,
	"trend.png":     true,
}

// Server bundles router and configuration for the results API.
type Server struct {
	cfg    config.Config
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{cfg: cfg, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/observations", s.handleObservations)
	s.engine.GET("/grid/latest", s.handleGridLatest)
	s.engine.GET("/figures/:name", s.handleFigure)
}

func (s *Server) handleObservations(c *gin.Context) {
	path := filepath.Join(s.cfg.DataDir, dataset.ObservationsFile)
	obs, err := dataset.ReadObservations(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no observation table; run the download step first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(obs),
		"observations": obs,
	})
}

func (s *Server) handleGridLatest(c *gin.Context) {
	path := filepath.Join(s.cfg.ResultsDir, dataset.GridProductFile)
	product, err := dataset.ReadGridProduct(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no grid product; run the krige step first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) handleFigure(c *gin.Context) {
	name := c.Param("name")
	if !figures[name] {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown figure"})
		return
	}

	path := filepath.Join(s.cfg.ResultsDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "figure not rendered yet"})
		return
	}
	c.File(path)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
