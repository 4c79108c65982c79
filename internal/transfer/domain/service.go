package domain

import (
	"context"
	"errors"
	"io"

	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// RowError reports one rejected import row. Row numbering is 1-based and
// counts the CSV header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// ImportRow is the external record shape shared by both formats. Amount
// fields arrive as strings in CSV and as arbitrary JSON scalars, so both
// paths coerce before the row reaches the transaction service.
type ImportRow struct {
	Date          string  `json:"date"`
	CustomerName  string  `json:"customer_name"`
	Product       string  `json:"product"`
	CostPrice     float64 `json:"cost_price"`
	SalePrice     float64 `json:"sale_price"`
	PaymentMethod string  `json:"payment_method"`
	Destination   string  `json:"destination"`
	Tag           string  `json:"tag"`
	Note          string  `json:"note"`
}

type Service interface {
	Import(ctx context.Context, format string, r io.Reader) (ImportResult, error)
	ExportCSV(ctx context.Context, filter transactiondomain.ListTransactionFilter, w io.Writer) error
	ExportJSON(ctx context.Context, filter transactiondomain.ListTransactionFilter, w io.Writer) error
}

var (
	ErrUnsupportedFormat = errors.New("unsupported_format")
	ErrMalformedPayload  = errors.New("malformed_payload")
)
