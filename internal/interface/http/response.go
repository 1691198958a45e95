package httpapi

import (
	"errors"
	"log"
	"net/http"

	"utility-kpi/internal/application/reports"
	"utility-kpi/internal/domain/kpi"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg, "error_code": code})
}

// respondError 將用例錯誤對應到 HTTP 狀態碼。
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, kpi.ErrInvalidPeriod), errors.Is(err, kpi.ErrInvalidWindow):
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
	case errors.Is(err, reports.ErrSnapshotNotReady):
		writeError(c, http.StatusServiceUnavailable, errCodeSnapshotNotReady, "data not loaded yet")
	case errors.Is(err, reports.ErrNoDataToExport):
		writeError(c, http.StatusNotFound, errCodeNotFound, "No data to export.")
	default:
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
