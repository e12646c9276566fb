package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the prebuilt dashboard frontend from the configured
// directory. When the directory is absent the server runs in API-only mode,
// which is how the tests exercise it.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing; API only mode", "path", s.staticDir)
		return
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if fileExists(indexPath) {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		// Client-side routing: unknown non-API paths fall back to the shell.
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
				return
			}
			c.File(indexPath)
		})
	} else {
		s.logger.Warn("index.html not found", "path", indexPath)
	}

	assetsDir := filepath.Join(s.staticDir, "assets")
	if info, err := os.Stat(assetsDir); err == nil && info.IsDir() {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, true))
	}

	if favicon := filepath.Join(s.staticDir, "favicon.ico"); fileExists(favicon) {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
