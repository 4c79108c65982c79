package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	CustomerID     string
	TransactionIDs []string
	DueDate        *time.Time
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	CustomerID string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	// Create issues an invoice covering the given transactions, numbered
	// from the organization's sequence.
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Void(ctx context.Context, id string) (Invoice, error)
	RenderPDF(ctx context.Context, id string) (io.Reader, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrNoItems             = errors.New("invoice_has_no_items")
	ErrNotFound            = errors.New("not_found")
	ErrAlreadyVoid         = errors.New("invoice_already_void")
	ErrDuplicateNumber     = errors.New("duplicate_invoice_number")
)
