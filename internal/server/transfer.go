package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	transferdomain "github.com/bukusaha/bukusaha/internal/transfer/domain"
	"github.com/gin-gonic/gin"
)

// ImportTransactions ingests a CSV or JSON payload. The payload comes
// either as a multipart "file" part or as the raw request body, with the
// format taken from the "format" query parameter, defaulting to csv.
func (s *Server) ImportTransactions(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = transferdomain.FormatCSV
	}

	var reader io.Reader
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		defer f.Close()
		reader = f
	} else {
		reader = c.Request.Body
	}

	result, err := s.transferSvc.Import(c.Request.Context(), format, reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "transfer.import",
		TargetType: "transfer",
		Metadata: map[string]any{
			"format":   format,
			"imported": result.Imported,
			"skipped":  result.Skipped,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ExportTransactions(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = transferdomain.FormatCSV
	}

	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	filter := transactiondomain.ListTransactionFilter{
		From:          from,
		To:            to,
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		Destination:   strings.TrimSpace(c.Query("destination")),
		Tag:           strings.TrimSpace(c.Query("tag")),
	}

	filename := "transactions-" + time.Now().UTC().Format("20060102-150405")

	switch format {
	case transferdomain.FormatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		if err := s.transferSvc.ExportCSV(c.Request.Context(), filter, c.Writer); err != nil {
			AbortWithError(c, err)
			return
		}
	case transferdomain.FormatJSON:
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.json"`)
		if err := s.transferSvc.ExportJSON(c.Request.Context(), filter, c.Writer); err != nil {
			AbortWithError(c, err)
			return
		}
	default:
		AbortWithError(c, transferdomain.ErrUnsupportedFormat)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "transfer.export",
		TargetType: "transfer",
		Metadata: map[string]any{
			"format": format,
		},
	})
}
