package repository

import (
	"context"

	"github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/pkg/db/option"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tr *domain.Transaction) error {
	return db.WithContext(ctx).Create(tr).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tr *domain.Transaction) error {
	return db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("org_id = ? AND id = ?", tr.OrgID, tr.ID).
		Updates(map[string]any{
			"occurred_at":    tr.OccurredAt,
			"customer_id":    tr.CustomerID,
			"product":        tr.Product,
			"cost_price":     tr.CostPrice,
			"sale_price":     tr.SalePrice,
			"payment_method": tr.PaymentMethod,
			"destination":    tr.Destination,
			"tag":            tr.Tag,
			"note":           tr.Note,
			"updated_at":     tr.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Transaction{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Transaction, error) {
	var tr domain.Transaction
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&tr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tr, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListTransactionFilter) *gorm.DB {
	if filter.From != nil {
		stmt = stmt.Where("transactions.occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("transactions.occurred_at < ?", *filter.To)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("transactions.customer_id = ?", filter.CustomerID)
	}
	if filter.Product != "" {
		stmt = stmt.Where("transactions.product = ?", filter.Product)
	}
	if filter.PaymentMethod != "" {
		stmt = stmt.Where("transactions.payment_method = ?", filter.PaymentMethod)
	}
	if filter.Destination != "" {
		stmt = stmt.Where("transactions.destination = ?", filter.Destination)
	}
	if filter.Tag != "" {
		stmt = stmt.Where("transactions.tag = ?", filter.Tag)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListTransactionFilter, page pagination.Pagination) ([]*domain.TransactionWithCustomer, error) {
	var rows []*domain.TransactionWithCustomer
	stmt := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("transactions.*, (SELECT name FROM customers WHERE customers.id = transactions.customer_id) AS customer_name").
		Where("transactions.org_id = ?", orgID)
	stmt = applyFilter(stmt, filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListTransactionFilter) ([]*domain.TransactionWithCustomer, error) {
	var rows []*domain.TransactionWithCustomer
	stmt := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("transactions.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = transactions.customer_id").
		Where("transactions.org_id = ?", orgID)
	stmt = applyFilter(stmt, filter)
	err := stmt.
		Order("transactions.occurred_at asc, transactions.id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
