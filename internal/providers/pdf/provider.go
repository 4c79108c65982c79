package pdf

import (
	"context"
	"io"
)

// InvoiceDocument carries everything the renderer needs, already
// formatted for display. Amount formatting happens upstream so the
// layout stays currency-agnostic.
type InvoiceDocument struct {
	OrgName       string
	InvoiceNumber string
	Status        string
	IssueDate     string
	DueDate       string

	BillToName    string
	BillToAddress string
	BillToEmail   string

	Items []InvoiceLine

	Subtotal string
	Total    string
}

type InvoiceLine struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error)
}
