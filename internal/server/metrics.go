package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/profitable/internal/report"
)

func (s *Server) GetReport(c *gin.Context) {
	period, err := report.ParsePeriod(c.Query("period"), s.reports.DefaultPeriod())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out, err := s.reports.Build(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) GetMetric(c *gin.Context) {
	name, err := report.ParseMetric(c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period, err := report.ParsePeriod(c.Query("period"), s.reports.DefaultPeriod())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.reports.Metric(c.Request.Context(), name, period, parseOptionalMultiplier(c.Query("multiplier")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
