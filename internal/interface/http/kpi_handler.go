package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleFilters(c *gin.Context) {
	opts, err := s.reportsUC.FilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filters": opts})
}

func (s *Server) handleSummary(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	out, err := s.reportsUC.Summary(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	formatted, err := s.formatMoney(c, map[string]float64{
		"revenue":             out.KPI.Revenue.Total.Actual,
		"revenue_budget":      out.KPI.Revenue.Total.Budget,
		"consumption_revenue": out.KPI.Revenue.Consumption.Actual,
		"weighted_arpu":       out.Derived.WeightedARPU.Actual,
	})
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	body := gin.H{"success": true, "summary": out}
	if formatted != nil {
		body["formatted"] = formatted
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleComparison(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	out, err := s.reportsUC.Comparison(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comparison": out})
}

func (s *Server) handleTrend(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	out, err := s.reportsUC.Trend(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trend": out})
}

func (s *Server) handleGroups(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	out, err := s.reportsUC.Groups(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "groups": out})
}
