package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// integrationUser passes a user lookup through to the user-service.
func (s *server) integrationUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if s.deps.Users == nil {
		s.writeJSON(c, http.StatusServiceUnavailable, gin.H{errorKey: "user-service not configured"})
		return
	}

	user, err := s.deps.Users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, user)
}
