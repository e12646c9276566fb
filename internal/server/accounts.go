package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Confirm  string `json:"confirm" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// handleSignUp creates an account and logs the new user straight in.
func (s *Server) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.svc.SignUp(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	s.setSessionCookie(c, s.sessions.Create(user.ID))
	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

// handleLogin authenticates by email and password and establishes a session.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	s.setSessionCookie(c, s.sessions.Create(user.ID))
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// handleLogout invalidates the session server-side and clears the cookie.
func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(token)
	}
	s.clearSessionCookie(c)
	respondSuccess(c, http.StatusOK, gin.H{"status": "logged out"})
}
