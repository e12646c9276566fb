package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleDashboard returns the session user's lists, tasks and counts. The
// aggregation always answers for the authenticated identity; there is no
// way to request another user's view.
func (s *Server) handleDashboard(c *gin.Context) {
	dashboard, err := s.svc.Dashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"dashboard": dashboard})
}
