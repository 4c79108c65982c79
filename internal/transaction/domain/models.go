package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Transaction struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID  `gorm:"column:org_id;not null;index" json:"organization_id"`
	OccurredAt    time.Time     `gorm:"not null;index" json:"occurred_at"`
	CustomerID    *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	Product       string        `gorm:"not null;default:''" json:"product"`
	CostPrice     float64       `gorm:"not null;default:0" json:"cost_price"`
	SalePrice     float64       `gorm:"not null;default:0" json:"sale_price"`
	PaymentMethod string        `gorm:"not null;default:''" json:"payment_method"`
	Destination   string        `gorm:"not null;default:''" json:"destination"`
	Tag           string        `gorm:"not null;default:''" json:"tag"`
	Note          string        `gorm:"not null;default:''" json:"note,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Profit is the margin of a single sale.
func (t Transaction) Profit() float64 { return t.SalePrice - t.CostPrice }

// TransactionWithCustomer joins the optional customer name for listings
// and report input.
type TransactionWithCustomer struct {
	Transaction
	CustomerName string `json:"customer_name,omitempty"`
}
