package aggregate

import (
	"math"
	"strings"
	"time"
)

// UnknownLabel replaces empty categorical labels so malformed rows stay
// countable instead of vanishing from a breakdown.
const UnknownLabel = "Unknown"

// Record is one normalized sale. Build it through NewRecord so every
// downstream sum can assume finite, non-negative amounts and non-empty
// labels.
type Record struct {
	ID            string
	Date          time.Time
	CustomerID    string
	CustomerName  string
	Product       string
	CostPrice     float64
	SalePrice     float64
	PaymentMethod string
	Destination   string
	Tag           string
}

type RecordInput struct {
	ID            string
	Date          time.Time
	CustomerID    string
	CustomerName  string
	Product       string
	CostPrice     float64
	SalePrice     float64
	PaymentMethod string
	Destination   string
	Tag           string
}

// NewRecord normalizes a raw row: NaN, infinite, and negative amounts
// collapse to zero, and empty categorical labels become UnknownLabel.
func NewRecord(in RecordInput) Record {
	return Record{
		ID:            strings.TrimSpace(in.ID),
		Date:          in.Date.UTC(),
		CustomerID:    strings.TrimSpace(in.CustomerID),
		CustomerName:  labelOrUnknown(in.CustomerName),
		Product:       labelOrUnknown(in.Product),
		CostPrice:     coerceAmount(in.CostPrice),
		SalePrice:     coerceAmount(in.SalePrice),
		PaymentMethod: labelOrUnknown(in.PaymentMethod),
		Destination:   labelOrUnknown(in.Destination),
		Tag:           strings.TrimSpace(in.Tag),
	}
}

// Profit is the record margin.
func (r Record) Profit() float64 { return r.SalePrice - r.CostPrice }

func coerceAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func labelOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownLabel
	}
	return s
}
