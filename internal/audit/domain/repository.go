package domain

import (
	"context"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListAuditLogRequest, page pagination.Pagination) ([]*AuditLog, error)
}
