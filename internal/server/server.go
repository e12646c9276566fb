package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cuddley/internal/auth"
	"cuddley/internal/storage/sqlite"
	"cuddley/internal/todo"
)

// sessionCookie is the name of the HttpOnly cookie carrying the opaque
// session token.
const sessionCookie = "cuddley_session"

// ctxUserID is the gin context key the auth middleware stores the resolved
// user id under.
const ctxUserID = "userID"

// Server provides HTTP handlers for the to-do backend.
type Server struct {
	engine     *gin.Engine
	svc        *todo.Service
	sessions   *auth.SessionManager
	logger     *slog.Logger
	staticDir  string
	sessionTTL time.Duration
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *todo.Service, sessions *auth.SessionManager, logger *slog.Logger, staticDir string, sessionTTL time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:     router,
		svc:        svc,
		sessions:   sessions,
		logger:     logger,
		staticDir:  staticDir,
		sessionTTL: sessionTTL,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together. Every list,
// task and dashboard route sits behind requireAuth; sign-up, login and the
// health check do not.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/sign-up", s.handleSignUp)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.requireAuth, s.handleLogout)
		}

		protected := api.Group("", s.requireAuth)
		{
			protected.GET("/dashboard", s.handleDashboard)

			protected.GET("/lists", s.handleListLists)
			protected.POST("/lists", s.handleCreateList)
			protected.PUT("/lists/:id", s.handleRenameList)
			protected.DELETE("/lists/:id", s.handleDeleteList)
			protected.GET("/lists/:id/tasks", s.handleListTasks)
			protected.POST("/lists/:id/tasks", s.handleCreateTask)

			protected.PUT("/tasks/:id", s.handleUpdateTask)
			protected.DELETE("/tasks/:id", s.handleDeleteTask)
			protected.POST("/tasks/:id/progress", s.handleToggleProgress)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAuth resolves the session cookie to a user id and aborts with 401
// when there is no valid session. Handlers behind it read the identity via
// currentUserID.
func (s *Server) requireAuth(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	userID, ok := s.sessions.Resolve(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.Set(ctxUserID, userID)
	c.Next()
}

// currentUserID returns the identity requireAuth placed on the context.
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// setSessionCookie binds the token to the client. HttpOnly keeps it away
// from scripts; SameSite=Lax plus mutation-only non-GET verbs is the
// request-forgery defence.
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.sessionTTL.Seconds()), "/", "", false, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondServiceError translates service and storage failures into HTTP
// status codes.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err)
	case errors.Is(err, todo.ErrForbidden):
		s.respondError(c, http.StatusForbidden, err)
	case errors.Is(err, todo.ErrDuplicateList), errors.Is(err, todo.ErrEmailTaken):
		s.respondError(c, http.StatusConflict, err)
	case errors.Is(err, todo.ErrInvalidCredentials):
		s.respondError(c, http.StatusUnauthorized, err)
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
