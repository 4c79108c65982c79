package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusVoid   = "void"
)

type Invoice struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID  `gorm:"column:org_id;not null;index" json:"organization_id"`
	CustomerID snowflake.ID  `gorm:"not null" json:"customer_id"`
	Number     string        `gorm:"not null;uniqueIndex:idx_invoices_org_number,composite:org_id" json:"number"`
	Status     string        `gorm:"not null;default:'draft'" json:"status"`
	Currency   string        `gorm:"not null;default:'IDR'" json:"currency"`
	IssueDate  time.Time     `gorm:"not null" json:"issue_date"`
	DueDate    time.Time     `gorm:"not null" json:"due_date"`
	Subtotal   float64       `gorm:"not null;default:0" json:"subtotal"`
	Total      float64       `gorm:"not null;default:0" json:"total"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Items      []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	InvoiceID     snowflake.ID  `gorm:"not null;index" json:"invoice_id"`
	TransactionID *snowflake.ID `json:"transaction_id,omitempty"`
	Description   string        `gorm:"not null" json:"description"`
	Quantity      int           `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     float64       `gorm:"not null;default:0" json:"unit_price"`
	Amount        float64       `gorm:"not null;default:0" json:"amount"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
