package httpapi

import (
	"context"
	"net/http"

	"utility-kpi/internal/application/reports"
	reportsDomain "utility-kpi/internal/domain/reports"

	"github.com/gin-gonic/gin"
)

type reportFunc func(ctx context.Context, q reports.Query) (any, error)

func adapt[T any](fn func(context.Context, reports.Query) (T, error)) reportFunc {
	return func(ctx context.Context, q reports.Query) (any, error) {
		return fn(ctx, q)
	}
}

func (s *Server) reportHandlers() map[string]reportFunc {
	return map[string]reportFunc{
		"executive":   adapt(s.reportsUC.Executive),
		"consumption": adapt(s.reportsUC.Consumption),
		"customers":   adapt(s.reportsUC.Customers),
		"sites":       adapt(s.reportsUC.Sites),
		"advanced":    adapt(s.reportsUC.Advanced),
		"pipeline":    adapt(s.reportsUC.Pipeline),
		"commercial":  adapt(s.reportsUC.Commercial),
	}
}

func (s *Server) handleReport(c *gin.Context) {
	name := c.Param("name")
	fn, ok := s.reportHandlers()[name]
	if !ok {
		writeError(c, http.StatusNotFound, errCodeNotFound, "unknown report "+name)
		return
	}
	q, err := s.parseQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	out, err := fn(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"success": true, "report": name, "data": out}
	if exec, ok := out.(reportsDomain.ExecutiveSummary); ok {
		h := exec.Headline
		formatted, err := s.formatMoney(c, map[string]float64{
			"revenue":        h.Revenue.Actual,
			"revenue_budget": h.Revenue.Budget,
			"weighted_arpu":  h.WeightedARPU.Actual,
		})
		if err != nil {
			writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
			return
		}
		if formatted != nil {
			body["formatted"] = formatted
		}
	}
	c.JSON(http.StatusOK, body)
}
