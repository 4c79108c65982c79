package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	invoicedomain "github.com/bukusaha/bukusaha/internal/invoice/domain"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createInvoiceRequest struct {
	CustomerID     string     `json:"customer_id"`
	TransactionIDs []string   `json:"transaction_ids"`
	DueDate        *time.Time `json:"due_date"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		TransactionIDs: req.TransactionIDs,
		DueDate:        req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "invoice.create",
		TargetType: "invoice",
		TargetID:   resp.ID.String(),
		Metadata: map[string]any{
			"number": resp.Number,
			"total":  resp.Total,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Void(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "invoice.void",
		TargetType: "invoice",
		TargetID:   resp.ID.String(),
		Metadata: map[string]any{
			"number": resp.Number,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	reader, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="invoice-`+id+`.pdf"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		s.log.Warn("invoice pdf stream interrupted")
	}
}
