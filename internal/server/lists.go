package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type listRequest struct {
	Name string `json:"name" binding:"required"`
}

// handleListLists returns the lists owned by the session user.
func (s *Server) handleListLists(c *gin.Context) {
	lists, err := s.svc.Lists(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"lists": lists})
}

// handleCreateList creates a list plus its placeholder task.
func (s *Server) handleCreateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	list, err := s.svc.CreateList(c.Request.Context(), currentUserID(c), req.Name)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"list": list})
}

// handleRenameList renames an existing list of the session user.
func (s *Server) handleRenameList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	list, err := s.svc.RenameList(c.Request.Context(), currentUserID(c), id, req.Name)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"list": list})
}

// handleDeleteList removes a list and all tasks under it.
func (s *Server) handleDeleteList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteList(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
