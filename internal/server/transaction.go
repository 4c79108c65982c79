package server

import (
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createTransactionRequest struct {
	OccurredAt    time.Time `json:"occurred_at"`
	CustomerID    string    `json:"customer_id"`
	Product       string    `json:"product"`
	CostPrice     float64   `json:"cost_price"`
	SalePrice     float64   `json:"sale_price"`
	PaymentMethod string    `json:"payment_method"`
	Destination   string    `json:"destination"`
	Tag           string    `json:"tag"`
	Note          string    `json:"note"`
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.Create(c.Request.Context(), transactiondomain.CreateTransactionRequest{
		OccurredAt:    req.OccurredAt,
		CustomerID:    strings.TrimSpace(req.CustomerID),
		Product:       strings.TrimSpace(req.Product),
		CostPrice:     req.CostPrice,
		SalePrice:     req.SalePrice,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Destination:   strings.TrimSpace(req.Destination),
		Tag:           strings.TrimSpace(req.Tag),
		Note:          strings.TrimSpace(req.Note),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "transaction.create",
		TargetType: "transaction",
		TargetID:   resp.ID.String(),
		Metadata: map[string]any{
			"product":    resp.Product,
			"sale_price": resp.SalePrice,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateTransactionRequest struct {
	OccurredAt    *time.Time `json:"occurred_at"`
	CustomerID    *string    `json:"customer_id"`
	Product       *string    `json:"product"`
	CostPrice     *float64   `json:"cost_price"`
	SalePrice     *float64   `json:"sale_price"`
	PaymentMethod *string    `json:"payment_method"`
	Destination   *string    `json:"destination"`
	Tag           *string    `json:"tag"`
	Note          *string    `json:"note"`
}

func (s *Server) UpdateTransaction(c *gin.Context) {
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.Update(c.Request.Context(), transactiondomain.UpdateTransactionRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		OccurredAt:    req.OccurredAt,
		CustomerID:    req.CustomerID,
		Product:       req.Product,
		CostPrice:     req.CostPrice,
		SalePrice:     req.SalePrice,
		PaymentMethod: req.PaymentMethod,
		Destination:   req.Destination,
		Tag:           req.Tag,
		Note:          req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "transaction.update",
		TargetType: "transaction",
		TargetID:   resp.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTransaction(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.transactionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "transaction.delete",
		TargetType: "transaction",
		TargetID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	resp, err := s.transactionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type listTransactionQuery struct {
	pagination.Pagination
	From          string `form:"from"`
	To            string `form:"to"`
	CustomerID    string `form:"customer_id"`
	Product       string `form:"product"`
	PaymentMethod string `form:"payment_method"`
	Destination   string `form:"destination"`
	Tag           string `form:"tag"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionQuery
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

	resp, err := s.transactionSvc.List(c.Request.Context(), transactiondomain.ListTransactionRequest{
		PageToken:     query.PageToken,
		PageSize:      int32(query.PageSize),
		From:          from,
		To:            to,
		CustomerID:    strings.TrimSpace(query.CustomerID),
		Product:       strings.TrimSpace(query.Product),
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
