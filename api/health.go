package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *server) health(c *gin.Context) {
	if err := s.deps.Store.Ping(c.Request.Context()); err != nil {
		s.writeJSON(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	s.writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
