package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"utility-kpi/internal/application/reports"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleExportCSV(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	body, count, err := s.reportsUC.ExportCSV(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[Export] user_id=%s records=%d filter=%s", currentUserID(c), count, q.Filter.CacheKey())

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reports.ExportFilename(q)))
	c.Header("X-Record-Count", strconv.Itoa(count))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}
