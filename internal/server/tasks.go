package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type taskRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

// handleListTasks fetches the tasks of one of the session user's lists.
func (s *Server) handleListTasks(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	tasks, err := s.svc.ListTasks(c.Request.Context(), currentUserID(c), listID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask inserts a new task into a list. The deadline is free
// text and passed through untouched.
func (s *Server) handleCreateTask(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.svc.CreateTask(c.Request.Context(), currentUserID(c), listID, req.Name, req.Description, req.Deadline)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask edits name, description and deadline. The parent list
// cannot be changed.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.svc.UpdateTask(c.Request.Context(), currentUserID(c), id, req.Name, req.Description, req.Deadline)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteTask(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleToggleProgress flips the completion flag.
func (s *Server) handleToggleProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.ToggleProgress(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}
