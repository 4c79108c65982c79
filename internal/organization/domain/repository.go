package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	Update(ctx context.Context, db *gorm.DB, org *Organization) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Organization, error)
	InsertMember(ctx context.Context, db *gorm.DB, member *OrganizationMember) error
	FindMember(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*OrganizationMember, error)
}
