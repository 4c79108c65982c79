package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
)

type CreateTransactionRequest struct {
	OccurredAt    time.Time
	CustomerID    string
	Product       string
	CostPrice     float64
	SalePrice     float64
	PaymentMethod string
	Destination   string
	Tag           string
	Note          string
}

type UpdateTransactionRequest struct {
	ID            string
	OccurredAt    *time.Time
	CustomerID    *string
	Product       *string
	CostPrice     *float64
	SalePrice     *float64
	PaymentMethod *string
	Destination   *string
	Tag           *string
	Note          *string
}

type ListTransactionRequest struct {
	PageToken     string
	PageSize      int32
	From          *time.Time
	To            *time.Time
	CustomerID    string
	Product       string
	PaymentMethod string
	Destination   string
	Tag           string
}

type ListTransactionFilter struct {
	From          *time.Time
	To            *time.Time
	CustomerID    string
	Product       string
	PaymentMethod string
	Destination   string
	Tag           string
}

type ListTransactionResponse struct {
	pagination.PageInfo
	Transactions []TransactionWithCustomer `json:"transactions"`
}

type Service interface {
	Create(context.Context, CreateTransactionRequest) (Transaction, error)
	Update(context.Context, UpdateTransactionRequest) (Transaction, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Transaction, error)
	List(context.Context, ListTransactionRequest) (ListTransactionResponse, error)

	// ListAll streams every matching record without pagination. Report
	// aggregation and export run over the full filtered set.
	ListAll(context.Context, ListTransactionFilter) ([]TransactionWithCustomer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidOccurredAt   = errors.New("invalid_occurred_at")
	ErrNotFound            = errors.New("not_found")
)
