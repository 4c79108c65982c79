package domain

import (
	"context"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tr *Transaction) error
	Update(ctx context.Context, db *gorm.DB, tr *Transaction) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListTransactionFilter, page pagination.Pagination) ([]*TransactionWithCustomer, error)
	ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListTransactionFilter) ([]*TransactionWithCustomer, error)
}
