package server

import (
	"net/http"
	"strings"

	reportdomain "github.com/bukusaha/bukusaha/internal/report/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetReportSummary(c *gin.Context) {
	var query struct {
		From          string `form:"from"`
		To            string `form:"to"`
		PaymentMethod string `form:"payment_method"`
		Destination   string `form:"destination"`
		Tag           string `form:"tag"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.reportSvc.Summary(c.Request.Context(), reportdomain.ReportRequest{
		From:          from,
		To:            to,
		PaymentMethod: strings.TrimSpace(query.PaymentMethod),
		Destination:   strings.TrimSpace(query.Destination),
		Tag:           strings.TrimSpace(query.Tag),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
