package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Currency  string       `gorm:"column:currency;not null;default:'IDR'" json:"currency"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

type OrganizationMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;index" json:"organization_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	Role      string       `gorm:"not null;default:'staff'" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

// ValidRole reports whether the role is one of the known member roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}
