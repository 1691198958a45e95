package httpapi

import (
	"net/http"
	"time"

	"utility-kpi/internal/infrastructure/db"

	"github.com/gin-gonic/gin"
)

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"status":    "alive",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"success":        true,
		"health":         "ok",
		"db":             db.Status(c.Request.Context(), s.db),
		"source":         s.cfg.Ingestion.Source,
		"snapshot_ready": false,
		"cache_enabled":  s.cfg.Cache.Enabled,
	}
	if snap, err := s.store.Current(c.Request.Context()); err == nil {
		body["snapshot_ready"] = true
		body["snapshot_id"] = snap.ID
		body["records"] = snap.Size()
		body["loaded_at"] = snap.LoadedAt
	}
	c.JSON(http.StatusOK, body)
}
