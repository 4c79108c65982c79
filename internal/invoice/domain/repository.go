package domain

import (
	"context"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceRequest, page pagination.Pagination) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
