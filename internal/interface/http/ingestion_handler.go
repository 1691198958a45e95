package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleIngestionReload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), reloadTimeout)
	defer cancel()

	log.Printf("[Ingestion] reload triggered by user_id=%s", currentUserID(c))
	res, err := s.Reload(ctx)
	if err != nil {
		log.Printf("[Ingestion] reload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success":    false,
			"error":      err.Error(),
			"error_code": errCodeInternal,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}

func (s *Server) handleIngestionStatus(c *gin.Context) {
	s.lastMu.RLock()
	last := s.lastIngest
	s.lastMu.RUnlock()

	if last == nil {
		writeError(c, http.StatusNotFound, errCodeNotFound, "no ingestion run yet")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "last_run": last})
}
